package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Aviary/internal/core/accounts"
	"Aviary/internal/core/artworks"
	"Aviary/internal/core/rotation"
)

type stubRunner struct {
	lastReq rotation.RunRequest
	summary *rotation.RunSummary
	err     error
}

func (s *stubRunner) Run(ctx context.Context, req rotation.RunRequest) (*rotation.RunSummary, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	if s.summary != nil {
		return s.summary, nil
	}
	return &rotation.RunSummary{RunID: "run-1", OK: true}, nil
}

type stubArtworkService struct {
	artworks.Service
	result *artworks.SyncResult
	err    error
}

func (s *stubArtworkService) SyncArtist(ctx context.Context, artistID string) (*artworks.SyncResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestHandler(art, quote, card *stubRunner, svc artworks.Service) *Handler {
	return NewHandler(art, quote, card, svc)
}

func TestHandleArt_Defaults(t *testing.T) {
	art := &stubRunner{}
	h := newTestHandler(art, &stubRunner{}, &stubRunner{}, nil)

	rec := httptest.NewRecorder()
	h.HandleArt(rec, httptest.NewRequest("POST", "/jobs/art", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, accounts.ArtKinds, art.lastReq.Kinds)
	assert.Equal(t, "", art.lastReq.AccountID)
	assert.Equal(t, 24*time.Hour, art.lastReq.Interval)
	assert.Equal(t, defaultMaxAccounts, art.lastReq.MaxAccounts)
}

func TestHandleQuotes_DefaultInterval(t *testing.T) {
	quote := &stubRunner{}
	h := newTestHandler(&stubRunner{}, quote, &stubRunner{}, nil)

	rec := httptest.NewRecorder()
	h.HandleQuotes(rec, httptest.NewRequest("POST", "/jobs/quotes", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []accounts.Kind{accounts.KindQuoteAuthor}, quote.lastReq.Kinds)
	assert.Equal(t, 6*time.Hour, quote.lastReq.Interval)
}

func TestRunJob_QueryOverrides(t *testing.T) {
	card := &stubRunner{}
	h := newTestHandler(&stubRunner{}, &stubRunner{}, card, nil)

	rec := httptest.NewRecorder()
	h.HandleCards(rec, httptest.NewRequest("POST", "/jobs/cards?account=acct-9&interval_hours=0.5&max_accounts=2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acct-9", card.lastReq.AccountID)
	assert.Equal(t, 30*time.Minute, card.lastReq.Interval)
	assert.Equal(t, 2, card.lastReq.MaxAccounts)
}

func TestRunJob_InvalidParams(t *testing.T) {
	art := &stubRunner{}
	h := newTestHandler(art, &stubRunner{}, &stubRunner{}, nil)

	for _, query := range []string{
		"interval_hours=abc",
		"interval_hours=-1",
		"max_accounts=0",
		"max_accounts=lots",
	} {
		rec := httptest.NewRecorder()
		h.HandleArt(rec, httptest.NewRequest("POST", "/jobs/art?"+query, nil))
		// failed precondition of the run, not a client-side 4xx
		assert.Equal(t, http.StatusInternalServerError, rec.Code, query)
	}
	assert.Equal(t, rotation.RunRequest{}, art.lastReq, "runner must not be invoked")
}

func TestRunJob_UnknownAccountIs404(t *testing.T) {
	art := &stubRunner{err: accounts.ErrAccountNotFound}
	h := newTestHandler(art, &stubRunner{}, &stubRunner{}, nil)

	rec := httptest.NewRecorder()
	h.HandleArt(rec, httptest.NewRequest("POST", "/jobs/art?account=ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunJob_TopLevelFailureIs500(t *testing.T) {
	art := &stubRunner{err: errors.New("listing accounts failed")}
	h := newTestHandler(art, &stubRunner{}, &stubRunner{}, nil)

	rec := httptest.NewRecorder()
	h.HandleArt(rec, httptest.NewRequest("POST", "/jobs/art", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunJob_ManualNoContentIs404WithSummary(t *testing.T) {
	art := &stubRunner{summary: &rotation.RunSummary{
		RunID:     "run-2",
		Processed: 1,
		Failed:    1,
		Results: []rotation.AccountResult{
			{AccountID: "acct-1", Error: rotation.NoContentMessage},
		},
	}}
	h := newTestHandler(art, &stubRunner{}, &stubRunner{}, nil)

	rec := httptest.NewRecorder()
	h.HandleArt(rec, httptest.NewRequest("POST", "/jobs/art?account=acct-1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var summary rotation.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "run-2", summary.RunID)
}

func TestRunJob_RotationNoContentIsStill200(t *testing.T) {
	// Same summary shape, but without ?account= it stays a 200 report
	art := &stubRunner{summary: &rotation.RunSummary{
		RunID:     "run-3",
		Processed: 1,
		Failed:    1,
		Results: []rotation.AccountResult{
			{AccountID: "acct-1", Error: rotation.NoContentMessage},
		},
	}}
	h := newTestHandler(art, &stubRunner{}, &stubRunner{}, nil)

	rec := httptest.NewRecorder()
	h.HandleArt(rec, httptest.NewRequest("POST", "/jobs/art", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSyncArtworks(t *testing.T) {
	svc := &stubArtworkService{result: &artworks.SyncResult{ArtistID: "artist-1", Listed: 4, Added: 2}}
	h := newTestHandler(&stubRunner{}, &stubRunner{}, &stubRunner{}, svc)

	rec := httptest.NewRecorder()
	h.HandleSyncArtworks(rec, httptest.NewRequest("POST", "/jobs/sync/artworks?artist=artist-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result artworks.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 4, result.Listed)
	assert.Equal(t, 2, result.Added)
}

func TestHandleSyncArtworks_MissingParam(t *testing.T) {
	h := newTestHandler(&stubRunner{}, &stubRunner{}, &stubRunner{}, &stubArtworkService{})

	rec := httptest.NewRecorder()
	h.HandleSyncArtworks(rec, httptest.NewRequest("POST", "/jobs/sync/artworks", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSyncArtworks_UnknownArtist(t *testing.T) {
	svc := &stubArtworkService{err: artworks.ErrArtistNotFound}
	h := newTestHandler(&stubRunner{}, &stubRunner{}, &stubRunner{}, svc)

	rec := httptest.NewRecorder()
	h.HandleSyncArtworks(rec, httptest.NewRequest("POST", "/jobs/sync/artworks?artist=ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
