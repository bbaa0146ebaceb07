package quotes

import (
	"context"
)

// Repository defines the data access interface for quotes and post records
type Repository interface {
	// GetAuthor retrieves an author by id. Returns ErrAuthorNotFound.
	GetAuthor(ctx context.Context, id string) (*Author, error)

	// ListByAuthor returns all of an author's quotes
	ListByAuthor(ctx context.Context, authorID string) ([]*Quote, error)

	// ListPostedForAccount returns the post records linking the account to
	// the author's quotes, keyed by quote id
	ListPostedForAccount(ctx context.Context, accountID, authorID string) (map[string]*QuotePost, error)

	// InsertPost records a quote as posted through an account
	InsertPost(ctx context.Context, post *QuotePost) error

	// DeletePostsForAccount removes all of the account's post records for
	// the author's quotes, making every quote eligible again
	DeletePostsForAccount(ctx context.Context, accountID, authorID string) error
}
