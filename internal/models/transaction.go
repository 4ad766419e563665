package models

import "time"

// Ledger entry types
const (
	EntryTypeEscrowLock    = "escrow_lock"
	EntryTypeEscrowRelease = "escrow_release"
	EntryTypeEscrowForfeit = "escrow_forfeit"
	EntryTypeTopUp         = "top_up"
)

// Transaction is an append-only audit entry written in the same database
// transaction as the balance movement it describes. Entries are advisory:
// nothing in the engine reads them back.
type Transaction struct {
	ID          uint   `gorm:"primarykey"`
	Reference   string `gorm:"uniqueIndex;not null"`
	Type        string `gorm:"not null"`
	FromAddress string `gorm:"size:64"`
	ToAddress   string `gorm:"size:64"`
	Amount      int64  `gorm:"not null"`
	Description string
	Metadata    JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
}
