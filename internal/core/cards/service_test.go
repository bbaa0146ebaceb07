package cards

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Aviary/internal/core/accounts"
	"Aviary/internal/core/rotation"
)

type mockSource struct {
	cards    []*Card
	listErr  error
	imageErr error
}

func (m *mockSource) ListSet(ctx context.Context, setCode string) ([]*Card, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.cards, nil
}

func (m *mockSource) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	if m.imageErr != nil {
		return nil, "", m.imageErr
	}
	return []byte("img"), "image/png", nil
}

func deckAccount(set, frame string, maxRank int) *accounts.Account {
	return &accounts.Account{
		ID:          "acct-d",
		Username:    "deckbot",
		Kind:        accounts.KindDeck,
		Active:      true,
		CardSetCode: set,
		CardFrame:   frame,
		CardMaxRank: maxRank,
	}
}

func TestSelectCandidate_AppliesAccountFilters(t *testing.T) {
	source := &mockSource{cards: []*Card{
		{ID: "1", Name: "Keep", SetCode: "BS1", Rank: 10, Frame: "full_art", Images: CardImages{Large: "https://img/1.png"}},
		{ID: "2", Name: "WrongFrame", SetCode: "BS1", Rank: 5, Frame: "classic", Images: CardImages{Large: "https://img/2.png"}},
		{ID: "3", Name: "TooObscure", SetCode: "BS1", Rank: 900, Frame: "full_art", Images: CardImages{Large: "https://img/3.png"}},
		{ID: "4", Name: "NoImage", SetCode: "BS1", Rank: 10, Frame: "full_art"},
	}}

	svc := NewCardService(source)

	cand, exhausted, err := svc.SelectCandidate(context.Background(), deckAccount("BS1", "full_art", 100))
	require.NoError(t, err)
	assert.False(t, exhausted)
	assert.Equal(t, "https://img/1.png", cand.Ref)
	assert.Contains(t, cand.Text, "Keep")
}

func TestSelectCandidate_NoMatches(t *testing.T) {
	source := &mockSource{cards: []*Card{
		{ID: "1", Name: "X", SetCode: "BS1", Rank: 900, Frame: "classic", Images: CardImages{Large: "u"}},
	}}

	svc := NewCardService(source)

	_, _, err := svc.SelectCandidate(context.Background(), deckAccount("BS1", "full_art", 0))
	assert.ErrorIs(t, err, rotation.ErrNoCandidate)
}

func TestSelectCandidate_MissingSetCode(t *testing.T) {
	svc := NewCardService(&mockSource{})

	_, _, err := svc.SelectCandidate(context.Background(), deckAccount("", "", 0))
	assert.ErrorIs(t, err, rotation.ErrGroupNotFound)
}

func TestFetch_PropagatesRemoteErrors(t *testing.T) {
	svc := NewCardService(&mockSource{imageErr: errors.New("image fetch returned 404")})

	_, err := svc.Fetch(context.Background(), deckAccount("BS1", "", 0), &rotation.Candidate{Ref: "u"})
	require.Error(t, err)
	// Not a blob-store miss: there is no local record to consume
	assert.False(t, errors.Is(err, rotation.ErrMediaNotFound))
}

func TestMarkPostedAndReset_NoOps(t *testing.T) {
	svc := NewCardService(&mockSource{})
	acct := deckAccount("BS1", "", 0)

	assert.NoError(t, svc.MarkPosted(context.Background(), acct, &rotation.Candidate{}, nil))
	assert.NoError(t, svc.ResetGroup(context.Background(), acct))
}

func TestFormatCardText(t *testing.T) {
	text := formatCardText(&Card{
		Name:    "Azure Drake",
		SetCode: "BS1",
		SetName: "Base Set",
		Number:  "42",
		Rarity:  "rare",
	})

	assert.Contains(t, text, "Azure Drake")
	assert.Contains(t, text, "Base Set #42")
	assert.Contains(t, text, "#tcg")
	assert.Contains(t, text, "#bs1")
}
