package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"Aviary/internal/core/artworks"
)

type postgresArtworkRepo struct {
	db *sql.DB
}

// NewArtworkRepository creates a new PostgreSQL artwork repository
func NewArtworkRepository(db *sql.DB) artworks.Repository {
	return &postgresArtworkRepo{db: db}
}

const artworkColumns = `id, artist_id, storage_path, title, last_posted_at, created_at`

// GetArtist retrieves an artist by id
func (r *postgresArtworkRepo) GetArtist(ctx context.Context, id string) (*artworks.Artist, error) {
	artist := &artworks.Artist{}
	query := `SELECT id, name, hashtag, storage_prefix, created_at FROM artists WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&artist.ID, &artist.Name, &artist.Hashtag, &artist.StoragePrefix, &artist.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, artworks.ErrArtistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}

	return artist, nil
}

// GetTag retrieves a tag by id
func (r *postgresArtworkRepo) GetTag(ctx context.Context, id string) (*artworks.Tag, error) {
	tag := &artworks.Tag{}
	query := `SELECT id, name, hashtag, created_at FROM tags WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&tag.ID, &tag.Name, &tag.Hashtag, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, artworks.ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return tag, nil
}

// ListByArtist returns the artist's artworks ordered by creation time ascending
func (r *postgresArtworkRepo) ListByArtist(ctx context.Context, artistID string) ([]*artworks.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE artist_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artworks: %w", err)
	}
	defer rows.Close()

	return collectArtworks(rows)
}

// ListTagArtworkIDs returns the ids of every artwork carrying the tag
func (r *postgresArtworkRepo) ListTagArtworkIDs(ctx context.Context, tagID string) ([]string, error) {
	query := `SELECT artwork_id FROM artwork_tags WHERE tag_id = $1`

	rows, err := r.db.QueryContext(ctx, query, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag artworks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan artwork id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag artworks: %w", err)
	}

	return ids, nil
}

// ListByIDs returns the artworks with the given ids, fetched in batches.
// A failed batch is skipped, so the result may be partial; only total
// failure surfaces as an error.
func (r *postgresArtworkRepo) ListByIDs(ctx context.Context, ids []string) ([]*artworks.Artwork, error) {
	var result []*artworks.Artwork

	err := forEachBatch(ids, func(batch []string) error {
		query := `SELECT ` + artworkColumns + ` FROM artworks WHERE id = ANY($1)`
		rows, err := r.db.QueryContext(ctx, query, pq.Array(batch))
		if err != nil {
			return err
		}
		defer rows.Close()

		items, err := collectArtworks(rows)
		if err != nil {
			return err
		}
		result = append(result, items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load artworks by ids: %w", err)
	}

	// Batches come back per-query, so restore global creation order
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// MarkPosted sets the artwork-level last-posted timestamp
func (r *postgresArtworkRepo) MarkPosted(ctx context.Context, artworkID string, postedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE artworks SET last_posted_at = $2 WHERE id = $1`, artworkID, postedAt)
	if err != nil {
		return fmt.Errorf("failed to mark artwork %s posted: %w", artworkID, err)
	}
	return nil
}

// ClearPostedByArtist nulls last-posted for all of the artist's artworks
func (r *postgresArtworkRepo) ClearPostedByArtist(ctx context.Context, artistID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE artworks SET last_posted_at = NULL WHERE artist_id = $1`, artistID)
	if err != nil {
		return fmt.Errorf("failed to reset artworks for artist %s: %w", artistID, err)
	}
	return nil
}

// ClearPostedByIDs nulls last-posted for the given artworks, in batches
func (r *postgresArtworkRepo) ClearPostedByIDs(ctx context.Context, ids []string) error {
	return forEachBatch(ids, func(batch []string) error {
		_, err := r.db.ExecContext(ctx,
			`UPDATE artworks SET last_posted_at = NULL WHERE id = ANY($1)`, pq.Array(batch))
		return err
	})
}

// InsertMissing inserts artworks for storage paths not yet tracked.
// Existing paths are left untouched (including their posting state).
func (r *postgresArtworkRepo) InsertMissing(ctx context.Context, artistID string, paths []string) (int, error) {
	added := 0
	err := forEachBatch(paths, func(batch []string) error {
		result, err := r.db.ExecContext(ctx, `
			INSERT INTO artworks (artist_id, storage_path)
			SELECT $1, p FROM unnest($2::text[]) AS p
			ON CONFLICT (storage_path) DO NOTHING`,
			artistID, pq.Array(batch))
		if err != nil {
			return err
		}
		if n, err := result.RowsAffected(); err == nil {
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func collectArtworks(rows *sql.Rows) ([]*artworks.Artwork, error) {
	var result []*artworks.Artwork
	for rows.Next() {
		a := &artworks.Artwork{}
		var title sql.NullString
		var lastPostedAt sql.NullTime

		if err := rows.Scan(&a.ID, &a.ArtistID, &a.StoragePath, &title, &lastPostedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artwork: %w", err)
		}

		if title.Valid {
			t := title.String
			a.Title = &t
		}
		if lastPostedAt.Valid {
			t := lastPostedAt.Time
			a.LastPostedAt = &t
		}

		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate artworks: %w", err)
	}
	return result, nil
}
