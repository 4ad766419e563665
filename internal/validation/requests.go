package validation

import (
	"habitstake/internal/models"
	"habitstake/internal/services/escrow"
)

// CreateBet validates a bet creation request's shape. The escrow engine
// re-checks every rule inside its transaction; this front-line pass lets
// handlers reject malformed requests with field-level messages.
func (v *Validator) CreateBet(input *escrow.CreateBetInput) {
	v.HexBytes("bet_id", input.BetID, escrow.BetIDHexLen/2)
	v.Positive("amount", input.Amount)
	v.Required("habit_id", input.HabitID)
	v.MaxLength("habit_id", input.HabitID, escrow.MaxHabitIDLen)
	v.Check(input.EndDate > input.StartDate, "end_date", "must be after start date")
	v.Check(input.TargetStreak > 0, "target_streak", "must be greater than 0")
}

// RegisterInput validates a registration request.
func (v *Validator) RegisterInput(input *models.CreateUserInput) {
	v.Required("name", input.Name)
	v.Email("email", input.Email)
	v.MinLength("password", input.Password, 8)
}
