package models

import (
	"time"

	"gorm.io/gorm"
)

// Account is a funding identity on the ledger. User accounts are owned by
// a registered user; the treasury account has no owner and only ever
// receives forfeited escrow.
type Account struct {
	Address   string `gorm:"primarykey;size:64"`
	OwnerID   *uint  `gorm:"uniqueIndex;default:null"`
	Balance   int64  `gorm:"not null;default:0"`
	Status    string `gorm:"default:'active'"`
	Kind      string `gorm:"not null;default:'user'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account kinds
const (
	AccountKindUser     = "user"
	AccountKindTreasury = "treasury"
)

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	// Balances never start non-zero; funding is a separate ledger entry.
	a.Balance = 0
	return nil
}
