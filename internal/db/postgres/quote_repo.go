package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Aviary/internal/core/quotes"
)

type postgresQuoteRepo struct {
	db *sql.DB
}

// NewQuoteRepository creates a new PostgreSQL quote repository
func NewQuoteRepository(db *sql.DB) quotes.Repository {
	return &postgresQuoteRepo{db: db}
}

// GetAuthor retrieves an author by id
func (r *postgresQuoteRepo) GetAuthor(ctx context.Context, id string) (*quotes.Author, error) {
	author := &quotes.Author{}
	query := `SELECT id, name, hashtag, created_at FROM quote_authors WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&author.ID, &author.Name, &author.Hashtag, &author.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, quotes.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	return author, nil
}

// ListByAuthor returns all of an author's quotes
func (r *postgresQuoteRepo) ListByAuthor(ctx context.Context, authorID string) ([]*quotes.Quote, error) {
	query := `SELECT id, author_id, text, category, created_at FROM quotes WHERE author_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var result []*quotes.Quote
	for rows.Next() {
		q := &quotes.Quote{}
		var category sql.NullString

		if err := rows.Scan(&q.ID, &q.AuthorID, &q.Text, &category, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		if category.Valid {
			c := category.String
			q.Category = &c
		}

		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return result, nil
}

// ListPostedForAccount returns the account's post records for the author's
// quotes, keyed by quote id
func (r *postgresQuoteRepo) ListPostedForAccount(ctx context.Context, accountID, authorID string) (map[string]*quotes.QuotePost, error) {
	query := `
		SELECT qp.id, qp.quote_id, qp.account_id, qp.status_id, qp.posted_at
		FROM quote_posts qp
		JOIN quotes q ON q.id = qp.quote_id
		WHERE qp.account_id = $1 AND q.author_id = $2`

	rows, err := r.db.QueryContext(ctx, query, accountID, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list post records: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*quotes.QuotePost)
	for rows.Next() {
		p := &quotes.QuotePost{}
		var statusID sql.NullString

		if err := rows.Scan(&p.ID, &p.QuoteID, &p.AccountID, &statusID, &p.PostedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post record: %w", err)
		}
		if statusID.Valid {
			s := statusID.String
			p.StatusID = &s
		}

		result[p.QuoteID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post records: %w", err)
	}

	return result, nil
}

// InsertPost records a quote as posted through an account.
// Re-inserting the same (quote, account) pair refreshes the timestamp so a
// consumed-then-reposted quote keeps a single record.
func (r *postgresQuoteRepo) InsertPost(ctx context.Context, post *quotes.QuotePost) error {
	var statusID sql.NullString
	if post.StatusID != nil {
		statusID = sql.NullString{String: *post.StatusID, Valid: true}
	}

	query := `
		INSERT INTO quote_posts (quote_id, account_id, status_id, posted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (quote_id, account_id)
		DO UPDATE SET status_id = EXCLUDED.status_id, posted_at = EXCLUDED.posted_at
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, post.QuoteID, post.AccountID, statusID, post.PostedAt).
		Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to insert post record: %w", err)
	}

	return nil
}

// DeletePostsForAccount removes the account's post records for the author's
// quotes. Idempotent; used for exhaustion reset.
func (r *postgresQuoteRepo) DeletePostsForAccount(ctx context.Context, accountID, authorID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM quote_posts
		WHERE account_id = $1
		  AND quote_id IN (SELECT id FROM quotes WHERE author_id = $2)`,
		accountID, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete post records: %w", err)
	}
	return nil
}
