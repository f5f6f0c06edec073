// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// HostThrottle paces browser actions per host with a token bucket so a
// long pagination run does not hammer the listing site.
type HostThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// NewHostThrottle allows perSecond actions per host with the given burst.
// A non-positive rate disables throttling.
func NewHostThrottle(perSecond float64, burst int) *HostThrottle {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &HostThrottle{
		limiters: make(map[string]*rate.Limiter),
		every:    limit,
		burst:    burst,
	}
}

// Wait blocks until an action against the host of rawURL may proceed.
// Keys that are not URLs are used as-is.
func (t *HostThrottle) Wait(ctx context.Context, rawURL string) error {
	lim := t.limiter(hostKey(rawURL))
	if lim.Limit() == rate.Inf {
		return nil
	}

	start := time.Now()
	if err := lim.Wait(ctx); err != nil {
		return err
	}
	if waited := time.Since(start); waited > 10*time.Millisecond {
		log.Debug().Str("key", hostKey(rawURL)).Dur("waited", waited).Msg("Throttled")
	}
	return nil
}

func (t *HostThrottle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	lim, ok := t.limiters[key]
	if !ok {
		lim = rate.NewLimiter(t.every, t.burst)
		t.limiters[key] = lim
	}
	return lim
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
