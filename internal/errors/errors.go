// Package errors defines the domain error values returned across service
// boundaries. Each error carries a stable code so clients can tell input
// problems from authorization problems from state problems.
package errors

// DomainError is a classified, user-visible error.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
