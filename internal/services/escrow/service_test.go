package escrow

import (
	"context"
	"encoding/hex"
	"math"
	"strings"
	"testing"

	domain "habitstake/internal/errors"
	"habitstake/internal/ledger"
	"habitstake/internal/models"
	"habitstake/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory LedgerRepository. ExecuteInTransaction
// snapshots the whole state and restores it on error, mirroring the
// all-or-nothing guarantee of the real store.
type fakeLedger struct {
	config   *models.EscrowConfig
	accounts map[string]*models.Account
	bets     map[string]*models.Bet
	entries  []models.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts: make(map[string]*models.Account),
		bets:     make(map[string]*models.Bet),
	}
}

func (f *fakeLedger) GetConfig() (*models.EscrowConfig, error) {
	if f.config == nil {
		return nil, repositories.ErrConfigNotFound
	}
	cfg := *f.config
	return &cfg, nil
}

func (f *fakeLedger) CreateConfig(cfg *models.EscrowConfig) error {
	if f.config != nil && f.config.Address == cfg.Address {
		return repositories.ErrDuplicateAddress
	}
	c := *cfg
	f.config = &c
	return nil
}

func (f *fakeLedger) UpdateConfig(cfg *models.EscrowConfig) error {
	c := *cfg
	f.config = &c
	return nil
}

func (f *fakeLedger) GetAccount(address string) (*models.Account, error) {
	account, ok := f.accounts[address]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	a := *account
	return &a, nil
}

func (f *fakeLedger) GetAccountByOwner(ownerID uint) (*models.Account, error) {
	for _, account := range f.accounts {
		if account.OwnerID != nil && *account.OwnerID == ownerID {
			a := *account
			return &a, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (f *fakeLedger) CreateAccount(account *models.Account) error {
	if _, ok := f.accounts[account.Address]; ok {
		return repositories.ErrDuplicateAddress
	}
	a := *account
	f.accounts[account.Address] = &a
	return nil
}

func (f *fakeLedger) UpdateAccount(account *models.Account) error {
	a := *account
	f.accounts[account.Address] = &a
	return nil
}

func (f *fakeLedger) GetBet(address string) (*models.Bet, error) {
	bet, ok := f.bets[address]
	if !ok {
		return nil, repositories.ErrBetNotFound
	}
	b := *bet
	return &b, nil
}

func (f *fakeLedger) GetBetsByUser(userAddress string, limit, offset int) ([]models.Bet, error) {
	var bets []models.Bet
	for _, bet := range f.bets {
		if bet.User == userAddress {
			bets = append(bets, *bet)
		}
	}
	return bets, nil
}

func (f *fakeLedger) CreateBet(bet *models.Bet) error {
	if _, ok := f.bets[bet.Address]; ok {
		return repositories.ErrDuplicateAddress
	}
	b := *bet
	f.bets[bet.Address] = &b
	return nil
}

func (f *fakeLedger) DeleteBet(address string) error {
	if _, ok := f.bets[address]; !ok {
		return repositories.ErrBetNotFound
	}
	delete(f.bets, address)
	return nil
}

func (f *fakeLedger) CreateEntry(entry *models.Transaction) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLedger) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	snapshot := f.clone()
	if err := fn(f); err != nil {
		*f = *snapshot
		return err
	}
	return nil
}

func (f *fakeLedger) clone() *fakeLedger {
	c := newFakeLedger()
	if f.config != nil {
		cfg := *f.config
		c.config = &cfg
	}
	for k, v := range f.accounts {
		a := *v
		c.accounts[k] = &a
	}
	for k, v := range f.bets {
		b := *v
		c.bets[k] = &b
	}
	c.entries = append(c.entries, f.entries...)
	return c
}

// noopCache satisfies Cache without caching anything, so reads always hit
// the fake store.
type noopCache struct{}

func (noopCache) GetBet(context.Context, string) (*models.Bet, error) {
	return nil, repositories.ErrBetNotFound
}
func (noopCache) SetBet(context.Context, *models.Bet) error   { return nil }
func (noopCache) InvalidateBet(context.Context, string) error { return nil }
func (noopCache) GetAccount(context.Context, string) (*models.Account, error) {
	return nil, repositories.ErrAccountNotFound
}
func (noopCache) SetAccount(context.Context, *models.Account) error { return nil }
func (noopCache) InvalidateAccount(context.Context, string) error   { return nil }

// memCache is an in-memory Cache for asserting read-through and
// invalidation behavior.
type memCache struct {
	accounts map[string]*models.Account
	bets     map[string]*models.Bet
}

func newMemCache() *memCache {
	return &memCache{
		accounts: make(map[string]*models.Account),
		bets:     make(map[string]*models.Bet),
	}
}

func (c *memCache) GetBet(_ context.Context, address string) (*models.Bet, error) {
	if bet, ok := c.bets[address]; ok {
		b := *bet
		return &b, nil
	}
	return nil, repositories.ErrBetNotFound
}

func (c *memCache) SetBet(_ context.Context, bet *models.Bet) error {
	b := *bet
	c.bets[bet.Address] = &b
	return nil
}

func (c *memCache) InvalidateBet(_ context.Context, address string) error {
	delete(c.bets, address)
	return nil
}

func (c *memCache) GetAccount(_ context.Context, address string) (*models.Account, error) {
	if account, ok := c.accounts[address]; ok {
		a := *account
		return &a, nil
	}
	return nil, repositories.ErrAccountNotFound
}

func (c *memCache) SetAccount(_ context.Context, account *models.Account) error {
	a := *account
	c.accounts[account.Address] = &a
	return nil
}

func (c *memCache) InvalidateAccount(_ context.Context, address string) error {
	delete(c.accounts, address)
	return nil
}

const (
	adminID  uint = 1
	userID   uint = 2
	otherID  uint = 3
	betID         = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	habitRun      = "run"
)

func addUserAccount(f *fakeLedger, ownerID uint, balance int64) string {
	addr := ledger.DeriveAccount(ledger.UserSeed(ownerID)...).String()
	owner := ownerID
	f.accounts[addr] = &models.Account{
		Address: addr,
		OwnerID: &owner,
		Balance: balance,
		Status:  "active",
		Kind:    models.AccountKindUser,
	}
	return addr
}

func addTreasuryAccount(f *fakeLedger, balance int64) string {
	addr := ledger.DeriveAccount(ledger.TreasurySeed()...).String()
	f.accounts[addr] = &models.Account{
		Address: addr,
		Balance: balance,
		Status:  "active",
		Kind:    models.AccountKindTreasury,
	}
	return addr
}

// newInitializedService seeds admin, funded user, treasury, and config.
func newInitializedService(t *testing.T, userBalance int64) (Service, *fakeLedger, string, string) {
	t.Helper()
	f := newFakeLedger()
	userAddr := addUserAccount(f, userID, userBalance)
	treasuryAddr := addTreasuryAccount(f, 0)

	svc := NewService(f, noopCache{}, nil)
	_, err := svc.Initialize(context.Background(), adminID, treasuryAddr)
	require.NoError(t, err)

	return svc, f, userAddr, treasuryAddr
}

func validInput() CreateBetInput {
	return CreateBetInput{
		BetID:        betID,
		Amount:       1000,
		HabitID:      habitRun,
		StartDate:    100,
		EndDate:      200,
		TargetStreak: 5,
	}
}

func TestInitialize(t *testing.T) {
	f := newFakeLedger()
	treasuryAddr := addTreasuryAccount(f, 0)
	svc := NewService(f, noopCache{}, nil)

	cfg, err := svc.Initialize(context.Background(), adminID, treasuryAddr)
	require.NoError(t, err)
	assert.Equal(t, adminID, cfg.AdminID)
	assert.Equal(t, treasuryAddr, cfg.Treasury)
	assert.Equal(t, ledger.CanonicalBump, cfg.Bump)

	// The config address is fixed, so a second initialize collides.
	_, err = svc.Initialize(context.Background(), otherID, treasuryAddr)
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
	assert.Equal(t, adminID, f.config.AdminID, "first config must be untouched")
}

func TestInitializeRejectsMalformedTreasury(t *testing.T) {
	svc := NewService(newFakeLedger(), noopCache{}, nil)

	_, err := svc.Initialize(context.Background(), adminID, "not-an-address")
	assert.ErrorIs(t, err, domain.ErrInvalidTreasury)
}

func TestInitializeRejectsNonTreasuryAccount(t *testing.T) {
	f := newFakeLedger()
	userAddr := addUserAccount(f, userID, 0)
	svc := NewService(f, noopCache{}, nil)

	_, err := svc.Initialize(context.Background(), adminID, userAddr)
	assert.ErrorIs(t, err, domain.ErrInvalidTreasury)
}

func TestCreateBet(t *testing.T) {
	svc, f, userAddr, _ := newInitializedService(t, 5000)

	bet, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.BetStatusActive, bet.Status)
	assert.Equal(t, int64(1000), bet.Amount)
	assert.Equal(t, userAddr, bet.User)
	assert.Equal(t, int64(4000), f.accounts[userAddr].Balance, "user account must be debited")

	// Address is recomputable from the stable fields.
	user, _ := ledger.ParseAddress(userAddr)
	rawID, _ := hex.DecodeString(betID)
	addr, bump := ledger.Derive([]byte(BetSeed), user.Bytes(), rawID)
	assert.Equal(t, addr.String(), bet.Address)
	assert.Equal(t, bump, bet.Bump)

	require.Len(t, f.entries, 1)
	assert.Equal(t, models.EntryTypeEscrowLock, f.entries[0].Type)
	assert.Equal(t, int64(1000), f.entries[0].Amount)
}

func TestCreateBetValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateBetInput)
		wantErr *domain.DomainError
	}{
		{
			name:    "zero amount",
			mutate:  func(in *CreateBetInput) { in.Amount = 0 },
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(in *CreateBetInput) { in.Amount = -5 },
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "end before start",
			mutate:  func(in *CreateBetInput) { in.StartDate = 200; in.EndDate = 100 },
			wantErr: domain.ErrInvalidDates,
		},
		{
			name:    "end equals start",
			mutate:  func(in *CreateBetInput) { in.StartDate = 100; in.EndDate = 100 },
			wantErr: domain.ErrInvalidDates,
		},
		{
			name:    "habit id too long",
			mutate:  func(in *CreateBetInput) { in.HabitID = strings.Repeat("x", 65) },
			wantErr: domain.ErrHabitIDTooLong,
		},
		{
			name:    "zero target streak",
			mutate:  func(in *CreateBetInput) { in.TargetStreak = 0 },
			wantErr: domain.ErrInvalidTargetStreak,
		},
		{
			name:    "malformed bet id",
			mutate:  func(in *CreateBetInput) { in.BetID = "zzzz" },
			wantErr: domain.ErrInvalidBetID,
		},
		{
			name:    "truncated bet id",
			mutate:  func(in *CreateBetInput) { in.BetID = strings.Repeat("ab", 30) },
			wantErr: domain.ErrInvalidBetID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, userAddr, _ := newInitializedService(t, 5000)

			input := validInput()
			tt.mutate(&input)

			_, err := svc.CreateBet(context.Background(), userID, input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int64(5000), f.accounts[userAddr].Balance, "no balance change on rejection")
			assert.Empty(t, f.bets, "no record created on rejection")
		})
	}
}

func TestCreateBetInsufficientBalance(t *testing.T) {
	svc, f, userAddr, _ := newInitializedService(t, 500)

	_, err := svc.CreateBet(context.Background(), userID, validInput())
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, int64(500), f.accounts[userAddr].Balance)
}

func TestCreateBetDuplicateAddress(t *testing.T) {
	svc, f, _, _ := newInitializedService(t, 5000)

	first, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)

	_, err = svc.CreateBet(context.Background(), userID, validInput())
	assert.ErrorIs(t, err, domain.ErrBetExists)

	stored := f.bets[first.Address]
	require.NotNil(t, stored, "first record must survive the duplicate attempt")
	assert.Equal(t, int64(1000), stored.Amount)
	assert.Equal(t, int64(4000), f.accounts[first.User].Balance, "only the first debit applies")
}

func TestCompleteBet(t *testing.T) {
	svc, f, userAddr, _ := newInitializedService(t, 5000)

	bet, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)
	require.Equal(t, int64(4000), f.accounts[userAddr].Balance)

	res, err := svc.CompleteBet(context.Background(), adminID, bet.Address, userAddr)
	require.NoError(t, err)

	assert.Equal(t, models.BetStatusWon, res.Status)
	assert.Equal(t, int64(1000), res.Amount)
	assert.Equal(t, int64(5000), f.accounts[userAddr].Balance, "escrow returns to the user")
	assert.NotContains(t, f.bets, bet.Address, "record must cease to exist")

	// Re-resolution of the closed address fails either way.
	_, err = svc.CompleteBet(context.Background(), adminID, bet.Address, userAddr)
	assert.ErrorIs(t, err, domain.ErrBetNotActive)
	_, err = svc.ForfeitBet(context.Background(), adminID, bet.Address, f.config.Treasury)
	assert.ErrorIs(t, err, domain.ErrBetNotActive)
}

func TestCompleteBetGuards(t *testing.T) {
	svc, f, userAddr, _ := newInitializedService(t, 5000)
	bet, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)

	t.Run("non-admin caller", func(t *testing.T) {
		_, err := svc.CompleteBet(context.Background(), otherID, bet.Address, userAddr)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Contains(t, f.bets, bet.Address)
	})

	t.Run("wrong user target", func(t *testing.T) {
		wrongAddr := addUserAccount(f, otherID, 0)
		_, err := svc.CompleteBet(context.Background(), adminID, bet.Address, wrongAddr)
		assert.ErrorIs(t, err, domain.ErrInvalidUser)
		assert.Contains(t, f.bets, bet.Address)
		assert.Equal(t, int64(4000), f.accounts[userAddr].Balance)
	})
}

func TestForfeitBet(t *testing.T) {
	svc, f, userAddr, treasuryAddr := newInitializedService(t, 5000)

	bet, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)

	res, err := svc.ForfeitBet(context.Background(), adminID, bet.Address, treasuryAddr)
	require.NoError(t, err)

	assert.Equal(t, models.BetStatusLost, res.Status)
	assert.Equal(t, int64(1000), f.accounts[treasuryAddr].Balance, "escrow moves to treasury")
	assert.Equal(t, int64(4000), f.accounts[userAddr].Balance, "user stays at post-creation balance")
	assert.NotContains(t, f.bets, bet.Address)
}

func TestForfeitBetGuards(t *testing.T) {
	svc, f, userAddr, treasuryAddr := newInitializedService(t, 5000)
	bet, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)

	t.Run("non-admin caller", func(t *testing.T) {
		_, err := svc.ForfeitBet(context.Background(), userID, bet.Address, treasuryAddr)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Contains(t, f.bets, bet.Address, "record unchanged")
		assert.Equal(t, int64(0), f.accounts[treasuryAddr].Balance)
	})

	t.Run("wrong treasury target", func(t *testing.T) {
		_, err := svc.ForfeitBet(context.Background(), adminID, bet.Address, userAddr)
		assert.ErrorIs(t, err, domain.ErrInvalidTreasury)
		assert.Contains(t, f.bets, bet.Address)
	})
}

func TestResolutionOverflowLeavesEverythingIntact(t *testing.T) {
	svc, f, userAddr, _ := newInitializedService(t, 5000)

	bet, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)

	// Saturate the destination so the credit cannot fit.
	f.accounts[userAddr].Balance = math.MaxInt64

	_, err = svc.CompleteBet(context.Background(), adminID, bet.Address, userAddr)
	assert.ErrorIs(t, err, domain.ErrOverflow)

	stored := f.bets[bet.Address]
	require.NotNil(t, stored, "overflow must not close the record")
	assert.Equal(t, int64(1000), stored.Amount, "escrow balance must survive the aborted transfer")
	assert.Equal(t, int64(math.MaxInt64), f.accounts[userAddr].Balance)
}

func TestUpdateConfig(t *testing.T) {
	svc, f, userAddr, treasuryAddr := newInitializedService(t, 5000)

	t.Run("non-admin rejected", func(t *testing.T) {
		newAdmin := otherID
		_, err := svc.UpdateConfig(context.Background(), userID, ConfigUpdate{NewAdminID: &newAdmin})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Equal(t, adminID, f.config.AdminID, "config unchanged")
	})

	t.Run("treasury must be a treasury account", func(t *testing.T) {
		_, err := svc.UpdateConfig(context.Background(), adminID, ConfigUpdate{NewTreasury: &userAddr})
		assert.ErrorIs(t, err, domain.ErrInvalidTreasury)
		assert.Equal(t, treasuryAddr, f.config.Treasury)
	})

	t.Run("malformed treasury rejected", func(t *testing.T) {
		bad := "not-an-address"
		_, err := svc.UpdateConfig(context.Background(), adminID, ConfigUpdate{NewTreasury: &bad})
		assert.ErrorIs(t, err, domain.ErrInvalidTreasury)
		assert.Equal(t, treasuryAddr, f.config.Treasury)
	})

	t.Run("admin handover", func(t *testing.T) {
		newAdmin := otherID
		cfg, err := svc.UpdateConfig(context.Background(), adminID, ConfigUpdate{NewAdminID: &newAdmin})
		require.NoError(t, err)
		assert.Equal(t, otherID, cfg.AdminID)
		assert.Equal(t, treasuryAddr, cfg.Treasury, "omitted field untouched")

		// Admin-gated operations now require the new admin.
		bet, err := svc.CreateBet(context.Background(), userID, validInput())
		require.NoError(t, err)

		_, err = svc.CompleteBet(context.Background(), adminID, bet.Address, userAddr)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, err = svc.CompleteBet(context.Background(), otherID, bet.Address, userAddr)
		assert.NoError(t, err)
	})
}

func TestEndToEndWinAndLoss(t *testing.T) {
	svc, f, userAddr, treasuryAddr := newInitializedService(t, 1000)
	ctx := context.Background()

	bet, err := svc.CreateBet(ctx, userID, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.accounts[userAddr].Balance)

	got, err := svc.GetBet(ctx, bet.Address)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusActive, got.Status)
	assert.Equal(t, int64(1000), got.Amount)

	_, err = svc.CompleteBet(ctx, adminID, bet.Address, userAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), f.accounts[userAddr].Balance)

	_, err = svc.GetBet(ctx, bet.Address)
	assert.ErrorIs(t, err, domain.ErrBetNotFound, "record no longer exists")

	// Loss path with a fresh bet id.
	input := validInput()
	input.BetID = strings.Repeat("ee", 32)
	bet2, err := svc.CreateBet(ctx, userID, input)
	require.NoError(t, err)

	_, err = svc.ForfeitBet(ctx, adminID, bet2.Address, treasuryAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), f.accounts[treasuryAddr].Balance)
	assert.Equal(t, int64(0), f.accounts[userAddr].Balance)
}

func TestTamperedBumpIsRejected(t *testing.T) {
	svc, f, userAddr, _ := newInitializedService(t, 5000)

	bet, err := svc.CreateBet(context.Background(), userID, validInput())
	require.NoError(t, err)

	f.bets[bet.Address].Bump--

	_, err = svc.GetBet(context.Background(), bet.Address)
	assert.ErrorIs(t, err, domain.ErrAddressMismatch)

	_, err = svc.CompleteBet(context.Background(), adminID, bet.Address, userAddr)
	assert.ErrorIs(t, err, domain.ErrAddressMismatch)
}

func TestCreateBetRequiresInitializedConfig(t *testing.T) {
	f := newFakeLedger()
	addUserAccount(f, userID, 5000)
	svc := NewService(f, noopCache{}, nil)

	_, err := svc.CreateBet(context.Background(), userID, validInput())
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestGetUserAccountReadThrough(t *testing.T) {
	f := newFakeLedger()
	userAddr := addUserAccount(f, userID, 5000)
	treasuryAddr := addTreasuryAccount(f, 0)
	cache := newMemCache()
	svc := NewService(f, cache, nil)

	ctx := context.Background()
	_, err := svc.Initialize(ctx, adminID, treasuryAddr)
	require.NoError(t, err)

	account, err := svc.GetUserAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), account.Balance)
	assert.Contains(t, cache.accounts, userAddr, "miss must populate the cache")

	// A cached read does not see an out-of-band store change.
	f.accounts[userAddr].Balance = 1
	account, err = svc.GetUserAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), account.Balance)

	// Mutations invalidate, so the next read is fresh.
	f.accounts[userAddr].Balance = 5000
	_, err = svc.CreateBet(ctx, userID, validInput())
	require.NoError(t, err)
	assert.NotContains(t, cache.accounts, userAddr, "debit must evict the cached balance")

	account, err = svc.GetUserAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), account.Balance)
}
