package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyEngine fails the first n loads.
type flakyEngine struct {
	*Memory
	failures int
	calls    int
}

func (f *flakyEngine) Load(ctx context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("script timeout")
	}
	return f.Memory.Load(ctx)
}

func fastPolicy(attempts int) LoadPolicy {
	return LoadPolicy{Attempts: attempts, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestLoadWithRetry_SucceedsAfterFailures(t *testing.T) {
	eng := &flakyEngine{Memory: NewMemory(), failures: 2}

	require.NoError(t, LoadWithRetry(context.Background(), eng, fastPolicy(3)))
	assert.Equal(t, 3, eng.calls)
	assert.True(t, eng.Loaded())
}

func TestLoadWithRetry_ExhaustsAttempts(t *testing.T) {
	eng := &flakyEngine{Memory: NewMemory(), failures: 5}

	err := LoadWithRetry(context.Background(), eng, fastPolicy(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script timeout")
	assert.Equal(t, 3, eng.calls)
	assert.False(t, eng.Loaded())
}

func TestLoadWithRetry_ZeroPolicyTriesOnce(t *testing.T) {
	eng := &flakyEngine{Memory: NewMemory(), failures: 1}

	assert.Error(t, LoadWithRetry(context.Background(), eng, LoadPolicy{}))
	assert.Equal(t, 1, eng.calls)
}

func TestLoadWithRetry_StopsOnCancel(t *testing.T) {
	eng := &flakyEngine{Memory: NewMemory(), failures: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, LoadWithRetry(ctx, eng, LoadPolicy{Attempts: 5, Backoff: time.Hour}))
	assert.Equal(t, 1, eng.calls)
}

func TestLoadPolicy_Delay(t *testing.T) {
	p := LoadPolicy{Backoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.delay(1))
	assert.Equal(t, 200*time.Millisecond, p.delay(2))
	assert.Equal(t, 300*time.Millisecond, p.delay(3))

	p.Jitter = 0.5
	for range 20 {
		d := p.delay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestDefaultLoadPolicy(t *testing.T) {
	p := DefaultLoadPolicy()
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, 250*time.Millisecond, p.Backoff)
}
