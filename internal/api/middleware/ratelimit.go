package middleware

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a fixed-window in-memory limiter for the job endpoints.
// Callers are a handful of cron schedules, so windows are keyed by
// caller IP plus route: a runaway schedule hammering one job cannot
// starve the others.
type RateLimiter struct {
	windows  map[string]*callerWindow
	requests int
	window   time.Duration
	mu       sync.Mutex
}

type callerWindow struct {
	resetTime time.Time
	count     int
}

// NewRateLimiter creates a limiter allowing `requests` per `window`
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows:  make(map[string]*callerWindow),
		requests: requests,
		window:   window,
	}

	go rl.cleanup()

	return rl
}

// Middleware rejects over-limit requests with a 429 JSON envelope
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callerIP(r) + " " + r.URL.Path
		if !rl.allow(key) {
			log.Printf("[RATELIMIT] Rejecting %s: over %d requests in %s", key, rl.requests, rl.window)
			writeAuthError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow counts the request against the caller's current window
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UTC()

	win, exists := rl.windows[key]
	if !exists || now.After(win.resetTime) {
		rl.windows[key] = &callerWindow{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return true
	}

	if win.count < rl.requests {
		win.count++
		return true
	}

	return false
}

// cleanup drops expired windows so idle callers don't accumulate
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now().UTC()
		for key, win := range rl.windows {
			if now.After(win.resetTime) {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// callerIP identifies the caller. Only the first X-Forwarded-For hop is
// used; anything after it is caller-controlled.
func callerIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
