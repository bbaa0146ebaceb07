package rotation

import (
	"time"

	"Aviary/internal/core/accounts"
)

// NoContentMessage is the per-account error recorded when the account's
// group has no items at all. Handlers match on it to turn a manual
// single-target request into a 404.
const NoContentMessage = "no content available in group"

// RunRequest selects which accounts a job invocation services
type RunRequest struct {
	// Kinds limits rotation mode to accounts of these kinds
	Kinds []accounts.Kind

	// AccountID switches to manual mode: the single account is always due,
	// ignoring the interval and the recently-posted guard
	AccountID string

	// Interval is the target spacing between posts per account
	Interval time.Duration

	// MaxAccounts caps how many accounts one invocation services
	MaxAccounts int
}

// AccountResult is the per-account detail record in a run summary
type AccountResult struct {
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
	Item      string `json:"item,omitempty"`
	StatusID  string `json:"statusId,omitempty"`
	StatusURL string `json:"statusUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RunSummary is the JSON body returned by every job invocation
type RunSummary struct {
	RunID     string          `json:"runId"`
	OK        bool            `json:"ok"`
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []AccountResult `json:"results"`
}
