package repositories

import "habitstake/internal/models"

// LedgerRepository is the persistence seam for the escrow engine. Every
// escrow operation runs against a single repository inside one database
// transaction, so a failed check or overflow leaves no partial effect.
type LedgerRepository interface {
	// Config singleton
	GetConfig() (*models.EscrowConfig, error)
	CreateConfig(cfg *models.EscrowConfig) error
	UpdateConfig(cfg *models.EscrowConfig) error

	// Accounts
	GetAccount(address string) (*models.Account, error)
	GetAccountByOwner(ownerID uint) (*models.Account, error)
	CreateAccount(account *models.Account) error
	UpdateAccount(account *models.Account) error

	// Bets
	GetBet(address string) (*models.Bet, error)
	GetBetsByUser(userAddress string, limit, offset int) ([]models.Bet, error)
	CreateBet(bet *models.Bet) error
	DeleteBet(address string) error

	// Audit ledger
	CreateEntry(entry *models.Transaction) error

	// ExecuteInTransaction runs fn against a repository bound to a single
	// database transaction. fn returning an error rolls everything back.
	ExecuteInTransaction(fn func(LedgerRepository) error) error
}
