package repositories

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrBetNotFound      = errors.New("bet not found")
	ErrConfigNotFound   = errors.New("config not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateAddress = errors.New("address already occupied")
)
