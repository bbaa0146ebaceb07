package quotes

import (
	"time"
)

// Author is a quote content group
type Author struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Hashtag   string    `json:"hashtag" db:"hashtag"` // without leading '#'
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Quote is one postable quote. Posting state lives in QuotePost records,
// one per destination account, because a single timestamp column cannot
// express "never repeat to the same account" across many accounts.
type Quote struct {
	ID        string    `json:"id" db:"id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	Text      string    `json:"text" db:"text"`
	Category  *string   `json:"category,omitempty" db:"category"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// QuotePost links a quote to an account it was posted through.
// StatusID is nil when the quote was consumed without a publish
// (oversize text, instance rejection).
type QuotePost struct {
	ID        string    `json:"id" db:"id"`
	QuoteID   string    `json:"quoteId" db:"quote_id"`
	AccountID string    `json:"accountId" db:"account_id"`
	StatusID  *string   `json:"statusId,omitempty" db:"status_id"`
	PostedAt  time.Time `json:"postedAt" db:"posted_at"`
}
