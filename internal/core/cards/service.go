package cards

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"Aviary/internal/core/accounts"
	"Aviary/internal/core/rotation"
)

type cardService struct {
	source Source
	pick   func(n int) int
}

// NewCardService creates the trading-card content provider.
// Cards live in the external API, not the database, so there is no local
// posting state: selection is random among filter matches and the group is
// never exhausted.
func NewCardService(source Source) rotation.Provider {
	return &cardService{
		source: source,
		pick:   rand.Intn,
	}
}

// SelectCandidate fetches the account's set and picks a random card
// passing the account's attribute filters
func (s *cardService) SelectCandidate(ctx context.Context, acct *accounts.Account) (*rotation.Candidate, bool, error) {
	filter := Filter{
		SetCode: acct.CardSetCode,
		Frame:   acct.CardFrame,
		MaxRank: acct.CardMaxRank,
	}
	if filter.SetCode == "" {
		return nil, false, fmt.Errorf("%w: deck account %s has no set code", rotation.ErrGroupNotFound, acct.Username)
	}

	all, err := s.source.ListSet(ctx, filter.SetCode)
	if err != nil {
		return nil, false, err
	}

	matches := make([]*Card, 0, len(all))
	for _, c := range all {
		if filter.Matches(c) && c.ImageURL() != "" {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, false, rotation.ErrNoCandidate
	}

	card := matches[s.pick(len(matches))]
	return &rotation.Candidate{
		Ref:  card.ImageURL(),
		Text: formatCardText(card),
	}, false, nil
}

// ResetGroup is a no-op: cards carry no local posting state
func (s *cardService) ResetGroup(ctx context.Context, acct *accounts.Account) error {
	return nil
}

// Fetch downloads the card image from the API's CDN
func (s *cardService) Fetch(ctx context.Context, acct *accounts.Account, cand *rotation.Candidate) (*rotation.Media, error) {
	data, contentType, err := s.source.FetchImage(ctx, cand.Ref)
	if err != nil {
		return nil, err
	}
	return &rotation.Media{Data: data, ContentType: contentType}, nil
}

// MarkPosted is a no-op: there is no local record to stamp
func (s *cardService) MarkPosted(ctx context.Context, acct *accounts.Account, cand *rotation.Candidate, statusID *string) error {
	return nil
}

// formatCardText builds the status text for a card
func formatCardText(c *Card) string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.SetName != "" {
		b.WriteString("\n")
		b.WriteString(c.SetName)
		if c.Number != "" {
			b.WriteString(" #")
			b.WriteString(c.Number)
		}
	}
	if c.Rarity != "" {
		b.WriteString("\n")
		b.WriteString(c.Rarity)
	}
	b.WriteString("\n\n#tcg #")
	b.WriteString(strings.ToLower(c.SetCode))
	return b.String()
}
