package escrow

// CreateBetInput carries the caller-supplied fields of a new bet.
// BetID is a caller-chosen 32-byte nonce, hex encoded; together with the
// caller's account it determines the bet's address.
type CreateBetInput struct {
	BetID        string `json:"bet_id"`
	Amount       int64  `json:"amount"`
	HabitID      string `json:"habit_id"`
	StartDate    int64  `json:"start_date"`
	EndDate      int64  `json:"end_date"`
	TargetStreak uint32 `json:"target_streak"`
}

// ConfigUpdate is a partial update of the authority record. Nil fields
// are left unchanged.
type ConfigUpdate struct {
	NewAdminID  *uint   `json:"new_admin_id"`
	NewTreasury *string `json:"new_treasury"`
}

// Resolution reports the outcome of a terminal bet transition.
type Resolution struct {
	BetAddress  string `json:"bet_address"`
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
}
