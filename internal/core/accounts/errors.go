package accounts

import (
	"errors"
)

// Sentinel errors for account lookups
var (
	// ErrAccountNotFound is returned when an account lookup finds no matching record
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInactive is returned when a manually selected account is disabled
	ErrAccountInactive = errors.New("account is inactive")
)

// IsNotFound checks if error indicates a missing account
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}
