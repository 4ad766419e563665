package errors

var (
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "only the admin can perform this action",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be greater than 0",
	}
	ErrInvalidDates = &DomainError{
		Code:    "INVALID_DATES",
		Message: "end date must be after start date",
	}
	ErrHabitIDTooLong = &DomainError{
		Code:    "HABIT_ID_TOO_LONG",
		Message: "habit id must be at most 64 characters",
	}
	ErrInvalidTargetStreak = &DomainError{
		Code:    "INVALID_TARGET_STREAK",
		Message: "target streak must be greater than 0",
	}
	ErrBetNotActive = &DomainError{
		Code:    "BET_NOT_ACTIVE",
		Message: "bet is not active",
	}
	ErrInvalidUser = &DomainError{
		Code:    "INVALID_USER",
		Message: "account does not match bet user",
	}
	ErrInvalidTreasury = &DomainError{
		Code:    "INVALID_TREASURY",
		Message: "account does not match config treasury",
	}
	ErrOverflow = &DomainError{
		Code:    "OVERFLOW",
		Message: "arithmetic overflow",
	}
	ErrAlreadyInitialized = &DomainError{
		Code:    "ALREADY_INITIALIZED",
		Message: "config already initialized",
	}
	ErrNotInitialized = &DomainError{
		Code:    "NOT_INITIALIZED",
		Message: "config not initialized",
	}
	ErrBetExists = &DomainError{
		Code:    "BET_EXISTS",
		Message: "a bet already exists at this address",
	}
	ErrBetNotFound = &DomainError{
		Code:    "BET_NOT_FOUND",
		Message: "bet not found",
	}
	ErrInvalidBetID = &DomainError{
		Code:    "INVALID_BET_ID",
		Message: "bet id must be 32 bytes, hex encoded",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient account balance",
	}
	ErrAddressMismatch = &DomainError{
		Code:    "ADDRESS_MISMATCH",
		Message: "record does not occupy its canonical address",
	}
)
