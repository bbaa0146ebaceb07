package quotes

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"Aviary/internal/core/accounts"
	"Aviary/internal/core/rotation"
)

// maxStatusChars is the default Mastodon status limit. Quotes that exceed
// it (with attribution) are consumed with a null status id instead of
// looping forever against the instance's 422.
const maxStatusChars = 500

type quoteService struct {
	repo Repository
	now  func() time.Time
	pick func(n int) int
}

// NewQuoteService creates the quote content provider
func NewQuoteService(repo Repository, now func() time.Time) rotation.Provider {
	if now == nil {
		now = time.Now
	}
	return &quoteService{
		repo: repo,
		now:  now,
		pick: rand.Intn,
	}
}

// SelectCandidate picks the next quote for the account.
// A uniformly random never-posted quote wins; once every quote has a post
// record for this account, the one posted longest ago is reposted and the
// group is reported exhausted.
func (s *quoteService) SelectCandidate(ctx context.Context, acct *accounts.Account) (*rotation.Candidate, bool, error) {
	author, err := s.repo.GetAuthor(ctx, acct.GroupID)
	if err != nil {
		if IsNotFound(err) {
			return nil, false, fmt.Errorf("%w: author %s", rotation.ErrGroupNotFound, acct.GroupID)
		}
		return nil, false, err
	}

	all, err := s.repo.ListByAuthor(ctx, author.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list quotes: %w", err)
	}
	if len(all) == 0 {
		return nil, false, rotation.ErrNoCandidate
	}

	posted, err := s.repo.ListPostedForAccount(ctx, acct.ID, author.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load post records: %w", err)
	}

	var never []*Quote
	for _, q := range all {
		if _, done := posted[q.ID]; !done {
			never = append(never, q)
		}
	}

	var selected *Quote
	exhausted := false
	if len(never) > 0 {
		selected = never[s.pick(len(never))]
	} else {
		exhausted = true
		selected = all[0]
		oldest := posted[selected.ID].PostedAt
		for _, q := range all[1:] {
			if rec := posted[q.ID]; rec.PostedAt.Before(oldest) {
				selected = q
				oldest = rec.PostedAt
			}
		}
	}

	text := formatQuoteText(selected, author)
	return &rotation.Candidate{
		ItemID:   selected.ID,
		Ref:      selected.ID,
		Text:     text,
		Oversize: len([]rune(text)) > maxStatusChars,
	}, exhausted, nil
}

// ResetGroup deletes the account's post records for the author, making
// every quote immediately eligible again. Idempotent.
func (s *quoteService) ResetGroup(ctx context.Context, acct *accounts.Account) error {
	return s.repo.DeletePostsForAccount(ctx, acct.ID, acct.GroupID)
}

// Fetch is a no-op: quotes post as text-only statuses
func (s *quoteService) Fetch(ctx context.Context, acct *accounts.Account, cand *rotation.Candidate) (*rotation.Media, error) {
	return nil, nil
}

// MarkPosted inserts the (quote, account) post record
func (s *quoteService) MarkPosted(ctx context.Context, acct *accounts.Account, cand *rotation.Candidate, statusID *string) error {
	return s.repo.InsertPost(ctx, &QuotePost{
		QuoteID:   cand.ItemID,
		AccountID: acct.ID,
		StatusID:  statusID,
		PostedAt:  s.now().UTC(),
	})
}

// formatQuoteText builds the status: the quote, attribution, hashtags
func formatQuoteText(q *Quote, author *Author) string {
	var b strings.Builder
	b.WriteString("“")
	b.WriteString(q.Text)
	b.WriteString("”")
	b.WriteString("\n\n— ")
	b.WriteString(author.Name)
	if author.Hashtag != "" {
		b.WriteString("\n\n#")
		b.WriteString(strings.TrimPrefix(author.Hashtag, "#"))
		b.WriteString(" #quotes")
	}
	return b.String()
}
