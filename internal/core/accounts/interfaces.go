package accounts

import (
	"context"
	"time"
)

// Repository defines the data access interface for accounts
type Repository interface {
	// GetByID retrieves an account by its id (active or not)
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByUsername retrieves an account by its display username
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// ListActiveByKinds returns all active accounts of the given kinds
	ListActiveByKinds(ctx context.Context, kinds []Kind) ([]*Account, error)

	// UpdateLastPosted sets the account-level last-posted timestamp
	UpdateLastPosted(ctx context.Context, id string, postedAt time.Time) error
}
