package accounts

import (
	"sort"
	"time"
)

// RecentPostGuard is the cooldown that keeps overlapping invocations of
// the same job from double-posting through one account. Invocations are
// not mutually exclusive, so any account that posted inside this window
// is skipped unconditionally in rotation mode.
const RecentPostGuard = 5 * time.Minute

// Scheduler decides which accounts are due this invocation.
// Stateless apart from the injected clock.
type Scheduler struct {
	now func() time.Time
}

// NewScheduler creates a scheduler using the given clock.
// Pass time.Now in production; tests inject a fixed clock.
func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

// Due returns the accounts whose reference time is at least interval old,
// sorted ascending by reference time (longest-waiting first) and truncated
// to maxAccounts. Never-posted accounts use their creation time, so at
// steady state they sort ahead of everything that has posted.
func (s *Scheduler) Due(accts []*Account, interval time.Duration, maxAccounts int) []*Account {
	now := s.now().UTC()

	due := make([]*Account, 0, len(accts))
	for _, a := range accts {
		if a.ReferenceTime().Add(interval).After(now) {
			continue
		}
		due = append(due, a)
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].ReferenceTime().Before(due[j].ReferenceTime())
	})

	if maxAccounts > 0 && len(due) > maxAccounts {
		due = due[:maxAccounts]
	}

	return due
}

// RecentlyPosted reports whether the account posted within the guard window
func (s *Scheduler) RecentlyPosted(a *Account) bool {
	if a.LastPostedAt == nil {
		return false
	}
	return s.now().UTC().Sub(a.LastPostedAt.UTC()) < RecentPostGuard
}
