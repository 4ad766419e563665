/*
Package escrow implements the fund-custody and state-transition engine
for habit commitment bets.

A user locks funds from their ledger account into a bet record; the
configured admin later resolves the bet as won (escrow returns to the
user) or lost (escrow moves to the treasury). Resolution and record
closure are one atomic step: a bet never sits in a terminal state while
still occupying storage.

Every operation runs inside a single database transaction via
LedgerRepository.ExecuteInTransaction. All authorization and state checks
happen inside that scope, before any mutation, so a failed check or an
arithmetic overflow leaves no observable partial effect.

Usage:

	svc := escrow.NewService(repo, cache, nil)

	cfg, err := svc.Initialize(ctx, adminID, treasuryAddr)

	bet, err := svc.CreateBet(ctx, userID, escrow.CreateBetInput{
	    BetID:        betID,
	    Amount:       1000,
	    HabitID:      "run",
	    StartDate:    100,
	    EndDate:      200,
	    TargetStreak: 5,
	})

	res, err := svc.CompleteBet(ctx, adminID, bet.Address, bet.User)

Error Handling:

Operations return classified errors from internal/errors so callers can
tell input problems (INVALID_AMOUNT, INVALID_DATES, HABIT_ID_TOO_LONG,
INVALID_TARGET_STREAK), authorization problems (UNAUTHORIZED,
INVALID_USER, INVALID_TREASURY), state problems (BET_NOT_ACTIVE,
ALREADY_INITIALIZED) and arithmetic problems (OVERFLOW) apart.
*/
package escrow
