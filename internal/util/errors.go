// internal/util/errors.go
package util

import "errors"

// Business-rule errors. All of them are recoverable and returned to the
// immediate caller; none is fatal to the process.
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrWithdrawalLimit     = errors.New("amount exceeds the per-withdrawal ceiling")
	ErrDailyLimitReached   = errors.New("daily withdrawal limit reached")
	ErrSameAccount         = errors.New("source and destination accounts are the same")
	ErrAccountNotFound     = errors.New("account not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	ErrInvalidIdentifier   = errors.New("invalid national identifier")
	ErrInvalidDate         = errors.New("invalid calendar date")

	// ErrPersistence wraps failures reported by the snapshot store so callers
	// can tell a storage problem apart from a business rejection.
	ErrPersistence = errors.New("persistence failure")
)
