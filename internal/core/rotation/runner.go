package rotation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"Aviary/internal/core/accounts"
	"Aviary/internal/core/publish"
)

// runBudget is the wall-clock budget for one invocation. The external
// runner enforces a hard execution limit; we stop starting new accounts
// before hitting it. Accounts not reached stay due for the next tick.
const runBudget = 50 * time.Second

// Runner drives the rotation pipeline for one content domain:
// pick due accounts, select a candidate each, fetch, publish, record.
type Runner struct {
	accountRepo accounts.Repository
	provider    Provider
	publisher   publish.Service
	sched       *accounts.Scheduler
	now         func() time.Time
	budget      time.Duration
}

// NewRunner creates a pipeline runner for the given content provider
func NewRunner(accountRepo accounts.Repository, provider Provider, publisher publish.Service, sched *accounts.Scheduler) *Runner {
	return &Runner{
		accountRepo: accountRepo,
		provider:    provider,
		publisher:   publisher,
		sched:       sched,
		now:         time.Now,
		budget:      runBudget,
	}
}

// Run executes one job invocation.
// Rotation mode services every due account up to the cap; manual mode
// (req.AccountID set, id or username) services exactly that account,
// bypassing the interval and the recently-posted guard.
// Returns an error only for top-level failures (account listing/lookup);
// per-account failures land in the summary.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:   uuid.NewString(),
		Results: []AccountResult{},
	}

	if req.AccountID != "" {
		acct, err := r.lookupAccount(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		if !acct.Active {
			return nil, accounts.ErrAccountInactive
		}

		log.Printf("[ROTATE] run=%s manual mode: account %s (%s)", summary.RunID, acct.Username, acct.ID)
		r.record(summary, r.processAccount(ctx, acct))
		summary.OK = summary.Failed == 0
		return summary, nil
	}

	all, err := r.accountRepo.ListActiveByKinds(ctx, req.Kinds)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	due := r.sched.Due(all, req.Interval, req.MaxAccounts)
	log.Printf("[ROTATE] run=%s %d/%d accounts due (interval=%s, cap=%d)",
		summary.RunID, len(due), len(all), req.Interval, req.MaxAccounts)

	start := r.now()
	for _, acct := range due {
		if r.now().Sub(start) > r.budget {
			log.Printf("[ROTATE] run=%s wall-clock budget exhausted, %d accounts deferred to next tick",
				summary.RunID, len(due)-summary.Processed)
			break
		}

		// Re-read the account so the guard sees timestamps written by a
		// concurrently running invocation after our list query.
		fresh, err := r.accountRepo.GetByID(ctx, acct.ID)
		if err != nil {
			log.Printf("[ROTATE] run=%s failed to refresh account %s: %v", summary.RunID, acct.ID, err)
			fresh = acct
		}
		if r.sched.RecentlyPosted(fresh) {
			log.Printf("[ROTATE] run=%s skipping %s: posted within the last %s", summary.RunID, fresh.Username, accounts.RecentPostGuard)
			continue
		}

		r.record(summary, r.processAccount(ctx, fresh))
	}

	summary.OK = summary.Failed == 0
	return summary, nil
}

// lookupAccount resolves a manual-mode target by id, falling back to the
// username so operators can trigger a bot without knowing its UUID
func (r *Runner) lookupAccount(ctx context.Context, ref string) (*accounts.Account, error) {
	acct, err := r.accountRepo.GetByID(ctx, ref)
	if accounts.IsNotFound(err) {
		return r.accountRepo.GetByUsername(ctx, ref)
	}
	return acct, err
}

func (r *Runner) record(summary *RunSummary, res AccountResult) {
	summary.Processed++
	if res.Error == "" {
		summary.Succeeded++
	} else {
		summary.Failed++
	}
	summary.Results = append(summary.Results, res)
}

// processAccount runs the pipeline for one account: select -> (reset on
// exhaustion) -> fetch -> publish -> bookkeeping. A missing asset consumes
// the candidate and earns exactly one extra selection attempt.
func (r *Runner) processAccount(ctx context.Context, acct *accounts.Account) AccountResult {
	res := AccountResult{AccountID: acct.ID, Username: acct.Username}

	resetDone := false
	for attempt := 0; attempt < 2; attempt++ {
		cand, exhausted, err := r.provider.SelectCandidate(ctx, acct)
		if err != nil {
			res.Error = selectionErrorMessage(err)
			return res
		}

		if exhausted && !resetDone {
			resetDone = true
			log.Printf("[ROTATE] group exhausted for %s, resetting posting state", acct.Username)
			if resetErr := r.provider.ResetGroup(ctx, acct); resetErr != nil {
				// A partial reset only leaves some items temporarily
				// ineligible; reposting the oldest is still correct.
				log.Printf("[ROTATE] Warning: reset failed for %s: %v", acct.Username, resetErr)
			} else if fresh, _, reselectErr := r.provider.SelectCandidate(ctx, acct); reselectErr == nil {
				cand = fresh
			} else {
				log.Printf("[ROTATE] Warning: re-selection after reset failed for %s: %v", acct.Username, reselectErr)
			}
		}

		res.Item = cand.Ref

		if cand.Oversize {
			r.consume(ctx, acct, cand, "oversize")
			res.Error = "candidate text exceeds the instance status limit"
			return res
		}

		media, err := r.provider.Fetch(ctx, acct, cand)
		if errors.Is(err, ErrMediaNotFound) {
			// Consume the broken candidate so it never blocks rotation,
			// then try one replacement.
			log.Printf("[ROTATE] asset missing for %s (%s), marking posted and reselecting", acct.Username, cand.Ref)
			r.consume(ctx, acct, cand, "missing asset")
			res.Error = fmt.Sprintf("asset not found: %s", cand.Ref)
			continue
		}
		if err != nil {
			res.Error = fmt.Sprintf("failed to fetch content: %v", err)
			return res
		}

		var data []byte
		var contentType string
		if media != nil {
			data = media.Data
			contentType = media.ContentType
		}

		status, err := r.publisher.Publish(ctx, acct, cand.Text, data, contentType)
		if err != nil {
			if publish.IsPublishError(err) {
				// The instance rejected this specific candidate; consume it
				// so the account can move on to a different item next tick.
				r.consume(ctx, acct, cand, "rejected by instance")
			}
			res.Error = fmt.Sprintf("failed to publish: %v", err)
			return res
		}

		r.recordSuccess(ctx, acct, cand, status)
		res.StatusID = status.ID
		res.StatusURL = status.URL
		res.Error = ""
		return res
	}

	return res
}

// consume marks a candidate posted without a status id. Failures are
// logged only: the worst case is reselecting the same broken item later.
func (r *Runner) consume(ctx context.Context, acct *accounts.Account, cand *Candidate, reason string) {
	if err := r.provider.MarkPosted(ctx, acct, cand, nil); err != nil {
		log.Printf("[ROTATE] Warning: failed to consume candidate %s (%s): %v", cand.Ref, reason, err)
	}
}

// recordSuccess persists item-level and account-level bookkeeping after a
// successful post. The post already happened, so failures here are logged
// and swallowed; the cost is a possible future duplicate.
func (r *Runner) recordSuccess(ctx context.Context, acct *accounts.Account, cand *Candidate, status *publish.Status) {
	postedAt := r.now().UTC()

	if err := r.provider.MarkPosted(ctx, acct, cand, &status.ID); err != nil {
		log.Printf("[ROTATE] Warning: failed to mark %s posted after status %s: %v", cand.Ref, status.ID, err)
	}
	if err := r.accountRepo.UpdateLastPosted(ctx, acct.ID, postedAt); err != nil {
		log.Printf("[ROTATE] Warning: failed to update last-posted for %s: %v", acct.Username, err)
	}

	log.Printf("[ROTATE] posted %s for %s: %s", cand.Ref, acct.Username, status.URL)
}

func selectionErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoCandidate):
		return NoContentMessage
	case errors.Is(err, ErrGroupNotFound):
		return "content group not found"
	default:
		return fmt.Sprintf("failed to select candidate: %v", err)
	}
}
