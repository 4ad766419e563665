package escrow

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	domain "habitstake/internal/errors"
	"habitstake/internal/ledger"
	"habitstake/internal/models"
	"habitstake/internal/repositories"

	"github.com/google/uuid"
)

type service struct {
	repo    repositories.LedgerRepository
	cache   Cache
	metrics MetricsCollector
}

// NewService creates the escrow engine. Metrics is optional; repo and
// cache are not.
func NewService(repo repositories.LedgerRepository, cache Cache, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
	}
}

// Initialize creates the config singleton. The caller becomes the admin.
// The derived config address is unique, so a second call collides and
// fails with ALREADY_INITIALIZED.
func (s *service) Initialize(ctx context.Context, callerID uint, treasury string) (*models.EscrowConfig, error) {
	if _, err := ledger.ParseAddress(treasury); err != nil {
		return nil, domain.ErrInvalidTreasury
	}

	addr, bump := ledger.Derive([]byte(ConfigSeed))
	cfg := &models.EscrowConfig{
		Address:  addr.String(),
		AdminID:  callerID,
		Treasury: treasury,
		Bump:     bump,
	}

	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		account, err := tx.GetAccount(treasury)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return domain.ErrAccountNotFound
			}
			return err
		}
		if account.Kind != models.AccountKindTreasury {
			return domain.ErrInvalidTreasury
		}
		if err := tx.CreateConfig(cfg); err != nil {
			if errors.Is(err, repositories.ErrDuplicateAddress) {
				return domain.ErrAlreadyInitialized
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("initialize", err)
	}

	return cfg, nil
}

// UpdateConfig applies an admin-only partial update. Unset fields keep
// their current values.
func (s *service) UpdateConfig(ctx context.Context, callerID uint, update ConfigUpdate) (*models.EscrowConfig, error) {
	var cfg *models.EscrowConfig

	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		current, err := s.requireConfig(tx)
		if err != nil {
			return err
		}
		if current.AdminID != callerID {
			return domain.ErrUnauthorized
		}

		if update.NewAdminID != nil {
			current.AdminID = *update.NewAdminID
		}
		if update.NewTreasury != nil {
			treasury := *update.NewTreasury
			if _, err := ledger.ParseAddress(treasury); err != nil {
				return domain.ErrInvalidTreasury
			}
			account, err := tx.GetAccount(treasury)
			if err != nil {
				if errors.Is(err, repositories.ErrAccountNotFound) {
					return domain.ErrAccountNotFound
				}
				return err
			}
			if account.Kind != models.AccountKindTreasury {
				return domain.ErrInvalidTreasury
			}
			current.Treasury = treasury
		}

		if err := tx.UpdateConfig(current); err != nil {
			return err
		}
		cfg = current
		return nil
	})
	if err != nil {
		return nil, s.fail("update_config", err)
	}

	return cfg, nil
}

func (s *service) GetConfig(ctx context.Context) (*models.EscrowConfig, error) {
	cfg, err := s.repo.GetConfig()
	if err != nil {
		if errors.Is(err, repositories.ErrConfigNotFound) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	return cfg, nil
}

// CreateBet validates the input, debits the caller's account, and creates
// an Active bet at the address derived from (caller account, bet id) --
// all in one transaction.
func (s *service) CreateBet(ctx context.Context, callerID uint, input CreateBetInput) (*models.Bet, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.EndDate <= input.StartDate {
		return nil, domain.ErrInvalidDates
	}
	if len(input.HabitID) > MaxHabitIDLen {
		return nil, domain.ErrHabitIDTooLong
	}
	if input.TargetStreak == 0 {
		return nil, domain.ErrInvalidTargetStreak
	}

	if len(input.BetID) != BetIDHexLen {
		return nil, domain.ErrInvalidBetID
	}
	betID, err := hex.DecodeString(input.BetID)
	if err != nil {
		return nil, domain.ErrInvalidBetID
	}

	var bet *models.Bet
	var userAddress string

	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if _, err := s.requireConfig(tx); err != nil {
			return err
		}

		account, err := tx.GetAccountByOwner(callerID)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return domain.ErrAccountNotFound
			}
			return err
		}
		if account.Status != "active" {
			return domain.ErrAccountLocked
		}
		if account.Balance < input.Amount {
			return domain.ErrInsufficientBalance
		}
		userAddress = account.Address

		userAddr, err := ledger.ParseAddress(account.Address)
		if err != nil {
			return err
		}
		addr, bump := ledger.Derive([]byte(BetSeed), userAddr.Bytes(), betID)

		bet = &models.Bet{
			Address:      addr.String(),
			User:         account.Address,
			BetID:        input.BetID,
			Amount:       input.Amount,
			HabitID:      input.HabitID,
			StartDate:    input.StartDate,
			EndDate:      input.EndDate,
			TargetStreak: input.TargetStreak,
			Status:       models.BetStatusActive,
			Bump:         bump,
			CreatedAt:    time.Now(),
		}

		// Occupied address means a bet with this (user, bet_id) pair
		// already exists; the existing record stays untouched.
		if err := tx.CreateBet(bet); err != nil {
			if errors.Is(err, repositories.ErrDuplicateAddress) {
				return domain.ErrBetExists
			}
			return err
		}

		account.Balance -= input.Amount
		if err := tx.UpdateAccount(account); err != nil {
			return err
		}

		return tx.CreateEntry(&models.Transaction{
			Reference:   uuid.NewString(),
			Type:        models.EntryTypeEscrowLock,
			FromAddress: account.Address,
			ToAddress:   bet.Address,
			Amount:      input.Amount,
			Description: "escrow lock",
			Metadata: models.NewJSON(map[string]interface{}{
				"habit_id":      input.HabitID,
				"target_streak": input.TargetStreak,
			}),
		})
	})
	if err != nil {
		return nil, s.fail("create_bet", err)
	}

	s.cache.InvalidateAccount(ctx, userAddress)
	s.cache.SetBet(ctx, bet)
	s.metrics.RecordOperation("create_bet", input.Amount)

	return bet, nil
}

// CompleteBet resolves an active bet as won: the full escrow balance
// returns to the bet's user and the record is closed. Admin only.
func (s *service) CompleteBet(ctx context.Context, callerID uint, betAddress, userAddress string) (*Resolution, error) {
	res, err := s.resolve(callerID, betAddress, func(cfg *models.EscrowConfig, bet *models.Bet) (string, string, error) {
		if userAddress != bet.User {
			return "", "", domain.ErrInvalidUser
		}
		return bet.User, models.EntryTypeEscrowRelease, nil
	})
	if err != nil {
		return nil, s.fail("complete_bet", err)
	}
	res.Status = models.BetStatusWon

	s.invalidateResolved(ctx, res)
	s.metrics.RecordOperation("complete_bet", res.Amount)
	return res, nil
}

// ForfeitBet resolves an active bet as lost: the full escrow balance
// moves to the config treasury and the record is closed. Admin only.
func (s *service) ForfeitBet(ctx context.Context, callerID uint, betAddress, treasuryAddress string) (*Resolution, error) {
	res, err := s.resolve(callerID, betAddress, func(cfg *models.EscrowConfig, bet *models.Bet) (string, string, error) {
		if treasuryAddress != cfg.Treasury {
			return "", "", domain.ErrInvalidTreasury
		}
		return cfg.Treasury, models.EntryTypeEscrowForfeit, nil
	})
	if err != nil {
		return nil, s.fail("forfeit_bet", err)
	}
	res.Status = models.BetStatusLost

	s.invalidateResolved(ctx, res)
	s.metrics.RecordOperation("forfeit_bet", res.Amount)
	return res, nil
}

// resolve runs the shared validate-then-transfer shape of both terminal
// transitions. pickDest returns the destination account address and the
// audit entry type after verifying the operation-specific target.
func (s *service) resolve(callerID uint, betAddress string, pickDest func(*models.EscrowConfig, *models.Bet) (string, string, error)) (*Resolution, error) {
	var res *Resolution

	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		cfg, err := s.requireConfig(tx)
		if err != nil {
			return err
		}
		if cfg.AdminID != callerID {
			return domain.ErrUnauthorized
		}

		bet, err := tx.GetBet(betAddress)
		if err != nil {
			if errors.Is(err, repositories.ErrBetNotFound) {
				// Resolved bets are deleted, so a missing record is a
				// non-Active record as far as resolution is concerned.
				return domain.ErrBetNotActive
			}
			return err
		}
		if bet.Status != models.BetStatusActive {
			return domain.ErrBetNotActive
		}
		if err := s.verifyBetAddress(bet); err != nil {
			return err
		}

		destAddress, entryType, err := pickDest(cfg, bet)
		if err != nil {
			return err
		}

		dest, err := tx.GetAccount(destAddress)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return domain.ErrAccountNotFound
			}
			return err
		}

		amount := bet.Amount
		if err := transferAll(tx, bet, dest, entryType); err != nil {
			return err
		}

		res = &Resolution{
			BetAddress:  betAddress,
			Destination: destAddress,
			Amount:      amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetBet(ctx context.Context, address string) (*models.Bet, error) {
	if bet, err := s.cache.GetBet(ctx, address); err == nil {
		return bet, nil
	}

	bet, err := s.repo.GetBet(address)
	if err != nil {
		if errors.Is(err, repositories.ErrBetNotFound) {
			return nil, domain.ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if err := s.verifyBetAddress(bet); err != nil {
		return nil, err
	}

	s.cache.SetBet(ctx, bet)
	return bet, nil
}

func (s *service) ListBets(ctx context.Context, callerID uint, limit, offset int) ([]models.Bet, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	account, err := s.GetUserAccount(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBetsByUser(account.Address, limit, offset)
}

// GetUserAccount returns the caller's funding account, read through the
// cache. The address is recomputable from the caller id alone, so the
// cache key exists before any store round trip.
func (s *service) GetUserAccount(ctx context.Context, callerID uint) (*models.Account, error) {
	address := ledger.DeriveAccount(ledger.UserSeed(callerID)...).String()
	if account, err := s.cache.GetAccount(ctx, address); err == nil {
		return account, nil
	}

	account, err := s.repo.GetAccountByOwner(callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	s.cache.SetAccount(ctx, account)
	return account, nil
}

// verifyBetAddress re-checks the stored derivation proof, rejecting
// records that do not occupy their canonical address.
func (s *service) verifyBetAddress(bet *models.Bet) error {
	addr, err := ledger.ParseAddress(bet.Address)
	if err != nil {
		return domain.ErrAddressMismatch
	}
	userAddr, err := ledger.ParseAddress(bet.User)
	if err != nil {
		return domain.ErrAddressMismatch
	}
	betID, err := hex.DecodeString(bet.BetID)
	if err != nil {
		return domain.ErrAddressMismatch
	}
	if !ledger.Verify(addr, bet.Bump, []byte(BetSeed), userAddr.Bytes(), betID) {
		return domain.ErrAddressMismatch
	}
	return nil
}

func (s *service) requireConfig(tx repositories.LedgerRepository) (*models.EscrowConfig, error) {
	cfg, err := tx.GetConfig()
	if err != nil {
		if errors.Is(err, repositories.ErrConfigNotFound) {
			return nil, domain.ErrNotInitialized
		}
		return nil, err
	}
	return cfg, nil
}

// fail records the error and passes classified conditions through
// unchanged; infrastructure failures are wrapped.
func (s *service) fail(operation string, err error) error {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		s.metrics.RecordError(operation, derr.Code)
		return err
	}
	s.metrics.RecordError(operation, "internal")
	return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
}

func (s *service) invalidateResolved(ctx context.Context, res *Resolution) {
	s.cache.InvalidateBet(ctx, res.BetAddress)
	s.cache.InvalidateAccount(ctx, res.Destination)
}
