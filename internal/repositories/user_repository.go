package repositories

import "habitstake/internal/models"

// UserRepository handles auth identity persistence.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	IncrementTokenVersion(userID uint) error
	GetTokenVersion(userID uint) (int, error)
}
