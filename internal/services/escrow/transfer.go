package escrow

import (
	"math"
	"time"

	domain "habitstake/internal/errors"
	"habitstake/internal/models"
	"habitstake/internal/repositories"

	"github.com/google/uuid"
)

// checkedAdd adds two non-negative balances, failing instead of wrapping.
func checkedAdd(a, b int64) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, domain.ErrOverflow
	}
	return a + b, nil
}

// transferAll moves the bet record's entire escrow balance to dest and
// releases the record's storage. Must run inside the caller's transaction
// scope: on any error the surrounding transaction rolls back, so no
// partial debit or credit survives.
func transferAll(repo repositories.LedgerRepository, bet *models.Bet, dest *models.Account, entryType string) error {
	balance := bet.Amount

	sum, err := checkedAdd(dest.Balance, balance)
	if err != nil {
		return err
	}

	bet.Amount = 0
	dest.Balance = sum

	if err := repo.UpdateAccount(dest); err != nil {
		return err
	}

	// Closure and resolution are the same step: the zeroed record is
	// reclaimed here, never left behind in a terminal state.
	if err := repo.DeleteBet(bet.Address); err != nil {
		return err
	}

	return repo.CreateEntry(&models.Transaction{
		Reference:   uuid.NewString(),
		Type:        entryType,
		FromAddress: bet.Address,
		ToAddress:   dest.Address,
		Amount:      balance,
		Description: "escrow resolution",
		Metadata: models.NewJSON(map[string]interface{}{
			"habit_id":    bet.HabitID,
			"bet_id":      bet.BetID,
			"resolved_at": time.Now().Unix(),
		}),
	})
}
