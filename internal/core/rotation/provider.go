package rotation

import (
	"context"
	"errors"

	"Aviary/internal/core/accounts"
)

// Sentinel errors shared by all content providers
var (
	// ErrNoCandidate is returned when a group has no items at all.
	// Distinct from exhaustion: the caller skips the account and never
	// resets the group.
	ErrNoCandidate = errors.New("no content candidate available")

	// ErrGroupNotFound is returned when the account references a content
	// group that does not exist
	ErrGroupNotFound = errors.New("content group not found")

	// ErrMediaNotFound is returned by Fetch when the selected candidate's
	// asset is missing from the blob store. The caller marks the candidate
	// posted so it is not retried forever, then tries one more selection.
	ErrMediaNotFound = errors.New("candidate media not found")
)

// Candidate is one selected content item, ready to post
type Candidate struct {
	// ItemID is the row id used for bookkeeping; empty for external
	// candidates with no local record
	ItemID string

	// Ref identifies the item: a storage key, a quote id, or a remote image URL
	Ref string

	// Text is the fully formatted status text
	Text string

	// Oversize marks a candidate whose text exceeds the instance's status
	// limit. The runner records it as posted (null status id) and does not
	// publish, so the item never blocks rotation.
	Oversize bool
}

// Media is a fetched asset ready for upload
type Media struct {
	Data        []byte
	ContentType string
}

// Provider supplies candidates for one content domain (artworks, quotes,
// external cards). One concrete variant exists per accounts.Kind; the
// runner is generic over this interface.
type Provider interface {
	// SelectCandidate picks the next item to post for the account.
	// exhausted=true means every item in the account's group has been
	// posted at least once and the selection is a repost of the oldest.
	SelectCandidate(ctx context.Context, acct *accounts.Account) (cand *Candidate, exhausted bool, err error)

	// ResetGroup clears posting state for the account's group so every
	// item becomes eligible again. Idempotent; invoked at most once per
	// account per invocation, right after an exhausted selection.
	ResetGroup(ctx context.Context, acct *accounts.Account) error

	// Fetch resolves the candidate into raw bytes + content type.
	// Returns (nil, nil) for text-only domains, ErrMediaNotFound when the
	// asset is missing from the blob store.
	Fetch(ctx context.Context, acct *accounts.Account, cand *Candidate) (*Media, error)

	// MarkPosted records the candidate as posted. statusID is nil when the
	// candidate was consumed without a successful publish (missing asset,
	// rejected upload, oversize text).
	MarkPosted(ctx context.Context, acct *accounts.Account, cand *Candidate, statusID *string) error
}
