package clinic_api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound calls with a token bucket and pauses every
// caller once the clinic API answers 429.
type RateLimiter struct {
	mu          sync.Mutex
	bucket      *rate.Limiter
	pausedUntil time.Time
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, burst),
	}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	pausedUntil := r.pausedUntil
	r.mu.Unlock()

	if time.Now().Before(pausedUntil) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(pausedUntil)):
		}
	}
	return nil
}

// Backoff records a 429 response. It returns the delay asked for by
// Retry-After, or zero when the header is absent or unparsable. The shared
// pause never exceeds maxRetryDelay, whatever the header says.
func (r *RateLimiter) Backoff(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	delay := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	if delay <= 0 {
		return 0
	}

	pause := delay
	if pause > maxRetryDelay {
		pause = maxRetryDelay
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	until := time.Now().Add(pause)
	if until.After(r.pausedUntil) {
		r.pausedUntil = until
	}
	return delay
}

func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return at.Sub(now)
	}
	return 0
}
