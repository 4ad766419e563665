package repositories

import (
	"errors"
	"fmt"

	"habitstake/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db   *gorm.DB
	inTx bool
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// locked applies a row lock of the given strength to reads inside a
// transaction scope. Balance mutations are read-compute-write, so the
// read must hold the row until commit; at READ COMMITTED two concurrent
// operations would otherwise both pass the balance check against the
// same snapshot and the second write would overwrite the first.
func (r *ledgerRepository) locked(strength string) *gorm.DB {
	if r.inTx {
		return r.db.Clauses(clause.Locking{Strength: strength})
	}
	return r.db
}

func (r *ledgerRepository) GetConfig() (*models.EscrowConfig, error) {
	var cfg models.EscrowConfig
	// Every escrow operation reads the config; SHARE keeps them
	// concurrent with each other while serializing against an admin
	// update in flight.
	if err := r.locked(clause.LockingStrengthShare).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	return &cfg, nil
}

func (r *ledgerRepository) CreateConfig(cfg *models.EscrowConfig) error {
	if err := r.db.Create(cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAddress
		}
		return fmt.Errorf("failed to create config: %w", err)
	}
	return nil
}

func (r *ledgerRepository) UpdateConfig(cfg *models.EscrowConfig) error {
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetAccount(address string) (*models.Account, error) {
	var account models.Account
	if err := r.locked(clause.LockingStrengthUpdate).First(&account, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetAccountByOwner(ownerID uint) (*models.Account, error) {
	var account models.Account
	if err := r.locked(clause.LockingStrengthUpdate).First(&account, "owner_id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) CreateAccount(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAddress
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) UpdateAccount(account *models.Account) error {
	if err := r.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetBet(address string) (*models.Bet, error) {
	var bet models.Bet
	if err := r.locked(clause.LockingStrengthUpdate).First(&bet, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return &bet, nil
}

func (r *ledgerRepository) GetBetsByUser(userAddress string, limit, offset int) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.
		Where("\"user\" = ?", userAddress).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

func (r *ledgerRepository) CreateBet(bet *models.Bet) error {
	if err := r.db.Create(bet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAddress
		}
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

func (r *ledgerRepository) DeleteBet(address string) error {
	result := r.db.Delete(&models.Bet{}, "address = ?", address)
	if result.Error != nil {
		return fmt.Errorf("failed to delete bet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBetNotFound
	}
	return nil
}

func (r *ledgerRepository) CreateEntry(entry *models.Transaction) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx, inTx: true})
	})
}
