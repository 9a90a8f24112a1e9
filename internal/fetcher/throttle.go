package fetcher

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateSettings configures token-bucket rate limiting per host.
type RateSettings struct {
	Requests int
	Window   time.Duration
}

// Throttle spaces requests out with a uniformly random politeness jitter and
// an optional per-host token bucket. Each crawl phase owns its own instance.
type Throttle struct {
	delayMin time.Duration
	delayMax time.Duration

	rateCfg     RateSettings
	rateEnabled bool

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle creates a throttle sleeping a random duration in
// [delayMin, delayMax] before each request.
func NewThrottle(delayMin, delayMax time.Duration, rateCfg RateSettings) *Throttle {
	if delayMin < 0 {
		delayMin = 0
	}
	if delayMax < delayMin {
		delayMax = delayMin
	}
	t := &Throttle{delayMin: delayMin, delayMax: delayMax}
	if rateCfg.Requests > 0 && rateCfg.Window > 0 {
		t.rateEnabled = true
		t.rateCfg = rateCfg
		t.limiters = make(map[string]*rate.Limiter)
	}
	return t
}

// Wait blocks until the politeness constraints for the host are satisfied.
func (t *Throttle) Wait(ctx context.Context, host string) error {
	if t == nil {
		return nil
	}

	if sleep := t.jitter(); sleep > 0 {
		timer := time.NewTimer(sleep)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if t.rateEnabled {
		t.mu.Lock()
		limiter := t.ensureLimiterLocked(strings.ToLower(host))
		t.mu.Unlock()
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (t *Throttle) jitter() time.Duration {
	span := t.delayMax - t.delayMin
	if span <= 0 {
		return t.delayMin
	}
	return t.delayMin + time.Duration(rand.Int63n(int64(span)+1))
}

func (t *Throttle) ensureLimiterLocked(host string) *rate.Limiter {
	limiter, ok := t.limiters[host]
	if ok {
		return limiter
	}
	interval := t.rateCfg.Window / time.Duration(t.rateCfg.Requests)
	if interval <= 0 {
		interval = time.Millisecond
	}
	burst := t.rateCfg.Requests
	if burst <= 0 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Every(interval), burst)
	t.limiters[host] = limiter
	return limiter
}
