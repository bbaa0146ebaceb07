package accounts

import (
	"time"
)

// Kind selects the content domain an account posts from.
// Dispatch on Kind replaces ad hoc string branching: every pipeline
// component switches exhaustively on it.
type Kind string

const (
	// KindArtist posts artworks belonging to a single artist
	KindArtist Kind = "artist"

	// KindTag posts artworks carrying a curated tag, across artists
	KindTag Kind = "tag"

	// KindQuoteAuthor posts text quotes from a single author
	KindQuoteAuthor Kind = "quote_author"

	// KindDeck posts trading cards fetched live from the card API
	KindDeck Kind = "deck"
)

// ArtKinds are the kinds serviced by the artwork job
var ArtKinds = []Kind{KindArtist, KindTag}

// Account is a destination profile on a Mastodon-compatible instance.
// Credentials are provisioned out of band; this pipeline only ever
// mutates LastPostedAt.
type Account struct {
	ID           string     `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	InstanceURL  string     `json:"instanceUrl" db:"instance_url"`
	AccessToken  string     `json:"-" db:"access_token"`
	Kind         Kind       `json:"kind" db:"kind"`
	GroupID      string     `json:"groupId,omitempty" db:"group_id"` // artist/tag/author id; empty for decks
	Active       bool       `json:"active" db:"active"`
	LastPostedAt *time.Time `json:"lastPostedAt,omitempty" db:"last_posted_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`

	// Card filters (deck accounts only). Applied client-side against the
	// card API's embedded attributes.
	CardSetCode string `json:"cardSetCode,omitempty" db:"card_set_code"`
	CardFrame   string `json:"cardFrame,omitempty" db:"card_frame"`
	CardMaxRank int    `json:"cardMaxRank,omitempty" db:"card_max_rank"`
}

// GetInstanceURL returns the base URL of the account's instance.
// Implements publish.Target.
func (a *Account) GetInstanceURL() string {
	return a.InstanceURL
}

// GetAccessToken returns the bearer token for the account's instance.
// Implements publish.Target.
func (a *Account) GetAccessToken() string {
	return a.AccessToken
}

// ReferenceTime is the instant used for due-ness and fairness ordering:
// the last successful post, or account creation for accounts that have
// never posted (which makes them sort first at steady state).
func (a *Account) ReferenceTime() time.Time {
	if a.LastPostedAt != nil {
		return *a.LastPostedAt
	}
	return a.CreatedAt
}
