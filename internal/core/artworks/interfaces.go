package artworks

import (
	"context"
	"time"

	"Aviary/internal/core/rotation"
)

// Repository defines the data access interface for artwork groups.
// ListByIDs and ClearPostedByIDs run in fixed-size batches internally; a
// failed batch is logged and skipped, so results may be partial.
type Repository interface {
	// GetArtist retrieves an artist by id. Returns ErrArtistNotFound.
	GetArtist(ctx context.Context, id string) (*Artist, error)

	// GetTag retrieves a tag by id. Returns ErrTagNotFound.
	GetTag(ctx context.Context, id string) (*Tag, error)

	// ListByArtist returns the artist's artworks ordered by creation time ascending
	ListByArtist(ctx context.Context, artistID string) ([]*Artwork, error)

	// ListTagArtworkIDs returns the ids of every artwork carrying the tag
	ListTagArtworkIDs(ctx context.Context, tagID string) ([]string, error)

	// ListByIDs returns the artworks with the given ids, ordered by creation
	// time ascending
	ListByIDs(ctx context.Context, ids []string) ([]*Artwork, error)

	// MarkPosted sets the artwork-level last-posted timestamp
	MarkPosted(ctx context.Context, artworkID string, postedAt time.Time) error

	// ClearPostedByArtist nulls last-posted for all of the artist's artworks
	ClearPostedByArtist(ctx context.Context, artistID string) error

	// ClearPostedByIDs nulls last-posted for the given artworks
	ClearPostedByIDs(ctx context.Context, ids []string) error

	// InsertMissing inserts artworks for storage paths not yet tracked,
	// returning how many rows were created
	InsertMissing(ctx context.Context, artistID string, paths []string) (int, error)
}

// Service exposes the artwork content provider plus admin operations
type Service interface {
	rotation.Provider

	// SyncArtist reconciles the artworks table with the objects under the
	// artist's storage prefix, inserting rows for new files
	SyncArtist(ctx context.Context, artistID string) (*SyncResult, error)
}
