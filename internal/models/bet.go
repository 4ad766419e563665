package models

import "time"

// Bet statuses. Won and Lost are terminal: a bet reaching either state is
// deleted in the same transaction that releases its escrow, so only
// Active rows are ever persisted.
const (
	BetStatusActive = "active"
	BetStatusWon    = "won"
	BetStatusLost   = "lost"
)

// Bet is an escrow record: the row itself holds the locked balance. Its
// address is derived from (user account, bet id), which makes creation
// idempotent per pair and collision-safe without an id allocator.
type Bet struct {
	Address      string `gorm:"primarykey;size:64"`
	User         string `gorm:"size:64;not null;index"`
	BetID        string `gorm:"size:64;not null"`
	Amount       int64  `gorm:"not null"`
	HabitID      string `gorm:"size:64;not null"`
	StartDate    int64  `gorm:"not null"`
	EndDate      int64  `gorm:"not null"`
	TargetStreak uint32 `gorm:"not null"`
	Status       string `gorm:"not null;default:'active'"`
	Bump         uint8  `gorm:"not null"`
	CreatedAt    time.Time
}
