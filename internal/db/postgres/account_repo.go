package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"Aviary/internal/core/accounts"
)

type postgresAccountRepo struct {
	db *sql.DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *sql.DB) accounts.Repository {
	return &postgresAccountRepo{db: db}
}

const accountColumns = `id, username, instance_url, access_token, kind, group_id, active, last_posted_at, created_at, card_set_code, card_frame, card_max_rank`

// GetByID retrieves an account by its id
func (r *postgresAccountRepo) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername retrieves an account by its display username
func (r *postgresAccountRepo) GetByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// ListActiveByKinds returns all active accounts of the given kinds
func (r *postgresAccountRepo) ListActiveByKinds(ctx context.Context, kinds []accounts.Kind) ([]*accounts.Account, error) {
	kindStrs := make([]string, len(kinds))
	for i, k := range kinds {
		kindStrs[i] = string(k)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE active = TRUE AND kind = ANY($1) ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(kindStrs))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var result []*accounts.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return result, nil
}

// UpdateLastPosted sets the account-level last-posted timestamp
func (r *postgresAccountRepo) UpdateLastPosted(ctx context.Context, id string, postedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET last_posted_at = $2 WHERE id = $1`, id, postedAt)
	if err != nil {
		return fmt.Errorf("failed to update last-posted for account %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return accounts.ErrAccountNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresAccountRepo) scanOne(row *sql.Row) (*accounts.Account, error) {
	acct, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, accounts.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

func scanAccount(row rowScanner) (*accounts.Account, error) {
	acct := &accounts.Account{}
	var groupID, cardSetCode, cardFrame sql.NullString
	var cardMaxRank sql.NullInt64
	var lastPostedAt sql.NullTime

	err := row.Scan(&acct.ID, &acct.Username, &acct.InstanceURL, &acct.AccessToken,
		&acct.Kind, &groupID, &acct.Active, &lastPostedAt, &acct.CreatedAt,
		&cardSetCode, &cardFrame, &cardMaxRank)
	if err != nil {
		return nil, err
	}

	acct.GroupID = groupID.String
	acct.CardSetCode = cardSetCode.String
	acct.CardFrame = cardFrame.String
	acct.CardMaxRank = int(cardMaxRank.Int64)
	if lastPostedAt.Valid {
		t := lastPostedAt.Time
		acct.LastPostedAt = &t
	}

	return acct, nil
}
