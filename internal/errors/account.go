package errors

var (
	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "account not found",
	}
	ErrAccountLocked = &DomainError{
		Code:    "ACCOUNT_LOCKED",
		Message: "account is locked",
	}
)
