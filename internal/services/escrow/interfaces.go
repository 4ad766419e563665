package escrow

import (
	"context"

	"habitstake/internal/models"
)

// Service is the escrow engine's public surface.
type Service interface {
	// Config singleton
	Initialize(ctx context.Context, callerID uint, treasury string) (*models.EscrowConfig, error)
	UpdateConfig(ctx context.Context, callerID uint, update ConfigUpdate) (*models.EscrowConfig, error)
	GetConfig(ctx context.Context) (*models.EscrowConfig, error)

	// Bet lifecycle
	CreateBet(ctx context.Context, callerID uint, input CreateBetInput) (*models.Bet, error)
	CompleteBet(ctx context.Context, callerID uint, betAddress, userAddress string) (*Resolution, error)
	ForfeitBet(ctx context.Context, callerID uint, betAddress, treasuryAddress string) (*Resolution, error)

	// Reads
	GetBet(ctx context.Context, address string) (*models.Bet, error)
	ListBets(ctx context.Context, callerID uint, limit, offset int) ([]models.Bet, error)
	GetUserAccount(ctx context.Context, callerID uint) (*models.Account, error)
}

// Cache is the read-cache seam the service invalidates after mutations.
type Cache interface {
	GetBet(ctx context.Context, address string) (*models.Bet, error)
	SetBet(ctx context.Context, bet *models.Bet) error
	InvalidateBet(ctx context.Context, address string) error
	GetAccount(ctx context.Context, address string) (*models.Account, error)
	SetAccount(ctx context.Context, account *models.Account) error
	InvalidateAccount(ctx context.Context, address string) error
}

// MetricsCollector records operational metrics for escrow operations.
type MetricsCollector interface {
	RecordOperation(operation string, amount int64)
	RecordError(operation, errType string)
}
