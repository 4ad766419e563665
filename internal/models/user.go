package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email               string `gorm:"uniqueIndex;not null"`
	Password            string `gorm:"not null"`
	Name                string `gorm:"not null"`
	Role                string `gorm:"default:'user'"`
	Status              string `gorm:"default:'active'"`
	FailedLoginAttempts int    `gorm:"default:0"`
	TokenVersion        int    `gorm:"default:1"`
	// AccountAddress is the ledger identity derived from the user ID,
	// set when the funding account is created at registration.
	AccountAddress string `gorm:"uniqueIndex;default:null"`
}

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
