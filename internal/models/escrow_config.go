package models

import "time"

// EscrowConfig is the authority record for the ledger. Exactly one row
// exists for the system's lifetime; its address is derived from the fixed
// "config" seed, so a second initialize attempt collides and fails.
type EscrowConfig struct {
	Address   string `gorm:"primarykey;size:64"`
	AdminID   uint   `gorm:"not null"`
	Treasury  string `gorm:"size:64;not null"`
	Bump      uint8  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
