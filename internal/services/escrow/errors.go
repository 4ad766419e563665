package escrow

import "errors"

// Service-internal errors. Classified, caller-facing conditions live in
// internal/errors; these cover infrastructure failures only.
var (
	ErrTransactionFailed = errors.New("escrow transaction failed")
)
