package engine

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// LoadPolicy controls how often a failed engine load is retried. The zero
// value makes a single attempt.
type LoadPolicy struct {
	// Attempts is the total number of loads, including the first.
	Attempts int
	// Backoff is the delay before the first retry; it doubles per retry up to
	// MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
	// Jitter randomizes each delay by up to ±Jitter of its length.
	Jitter float64
}

// DefaultLoadPolicy tries three times starting at 250ms.
func DefaultLoadPolicy() LoadPolicy {
	return LoadPolicy{
		Attempts:   3,
		Backoff:    250 * time.Millisecond,
		MaxBackoff: 2 * time.Second,
		Jitter:     0.2,
	}
}

// LoadWithRetry calls eng.Load until it succeeds, the attempts run out or ctx
// is done. It returns the last load error.
func LoadWithRetry(ctx context.Context, eng Engine, p LoadPolicy) error {
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = eng.Load(ctx); err == nil {
			return nil
		}
		if attempt >= attempts || ctx.Err() != nil {
			return err
		}

		delay := p.delay(attempt)
		zap.L().Warn("engine: load failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// delay returns the wait after the given failed attempt (1-based).
func (p LoadPolicy) delay(attempt int) time.Duration {
	d := float64(p.Backoff) * math.Pow(2, float64(attempt-1))
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	return time.Duration(max(d, 0))
}
