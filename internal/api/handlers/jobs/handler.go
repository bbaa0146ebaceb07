package jobs

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"Aviary/internal/core/accounts"
	"Aviary/internal/core/artworks"
	"Aviary/internal/core/rotation"
)

// Defaults for the job tunables; every one is overridable per request
const (
	defaultMaxAccounts   = 5
	defaultArtInterval   = 24 * time.Hour
	defaultQuoteInterval = 6 * time.Hour
	defaultCardInterval  = 24 * time.Hour
)

// Runner executes one job invocation. Implemented by rotation.Runner;
// tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, req rotation.RunRequest) (*rotation.RunSummary, error)
}

// Handler serves the cron-invoked posting jobs
type Handler struct {
	artRunner   Runner
	quoteRunner Runner
	cardRunner  Runner
	artworkSvc  artworks.Service
}

// NewHandler creates the job handler
func NewHandler(artRunner, quoteRunner, cardRunner Runner, artworkSvc artworks.Service) *Handler {
	return &Handler{
		artRunner:   artRunner,
		quoteRunner: quoteRunner,
		cardRunner:  cardRunner,
		artworkSvc:  artworkSvc,
	}
}

// HandleArt handles POST /jobs/art
// Rotation mode services due artist and tag accounts; ?account= (id or
// username) switches to manual mode for a single account.
func (h *Handler) HandleArt(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, h.artRunner, accounts.ArtKinds, defaultArtInterval)
}

// HandleQuotes handles POST /jobs/quotes
func (h *Handler) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, h.quoteRunner, []accounts.Kind{accounts.KindQuoteAuthor}, defaultQuoteInterval)
}

// HandleCards handles POST /jobs/cards
func (h *Handler) HandleCards(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, h.cardRunner, []accounts.Kind{accounts.KindDeck}, defaultCardInterval)
}

// HandleSyncArtworks handles POST /jobs/sync/artworks?artist={id}
// Reconciles the artworks table with the artist's storage prefix.
func (h *Handler) HandleSyncArtworks(w http.ResponseWriter, r *http.Request) {
	artistID := r.URL.Query().Get("artist")
	if artistID == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "artist parameter is required")
		return
	}

	result, err := h.artworkSvc.SyncArtist(r.Context(), artistID)
	if err != nil {
		if artworks.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NotFound", "artist not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "InternalServerError", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) runJob(w http.ResponseWriter, r *http.Request, runner Runner, kinds []accounts.Kind, defaultInterval time.Duration) {
	// A malformed tunable is a failed precondition of the whole run, same
	// bucket as bad credentials or an unreachable database
	req, err := parseRunRequest(r, kinds, defaultInterval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "InternalServerError", err.Error())
		return
	}

	summary, err := runner.Run(r.Context(), req)
	if err != nil {
		if accounts.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NotFound", "account not found")
			return
		}
		// Top-level precondition failures (bad credentials, listing failed)
		writeError(w, http.StatusInternalServerError, "InternalServerError", err.Error())
		return
	}

	// A manual single-target request that found nothing to post is a 404;
	// everything else, including per-account failures, is a 200 summary.
	if req.AccountID != "" && manualNoContent(summary) {
		writeJSON(w, http.StatusNotFound, summary)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func manualNoContent(summary *rotation.RunSummary) bool {
	return len(summary.Results) == 1 && summary.Results[0].Error == rotation.NoContentMessage
}

// parseRunRequest reads the job tunables from the query string:
// account (manual mode), interval_hours, max_accounts
func parseRunRequest(r *http.Request, kinds []accounts.Kind, defaultInterval time.Duration) (rotation.RunRequest, error) {
	req := rotation.RunRequest{
		Kinds:       kinds,
		AccountID:   r.URL.Query().Get("account"),
		Interval:    defaultInterval,
		MaxAccounts: defaultMaxAccounts,
	}

	if raw := r.URL.Query().Get("interval_hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours <= 0 {
			return req, errInvalidParam("interval_hours", raw)
		}
		req.Interval = time.Duration(hours * float64(time.Hour))
	}

	if raw := r.URL.Query().Get("max_accounts"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return req, errInvalidParam("max_accounts", raw)
		}
		req.MaxAccounts = n
	}

	return req, nil
}

func errInvalidParam(name, value string) error {
	return fmt.Errorf("invalid %s: %q", name, value)
}
