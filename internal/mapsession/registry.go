package mapsession

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/engine"
	"github.com/sells-group/district-map/internal/metrics"
)

// ErrTooManySessions is returned when the registry is full.
var ErrTooManySessions = eris.New("mapsession: too many sessions")

// EngineFactory returns a fresh engine for each session.
type EngineFactory func() engine.Engine

// Registry tracks open sessions by id. All sessions share one dataset.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ds        *area.Dataset
	newEngine EngineFactory
	opts      Options
	max       int
}

// NewRegistry creates a registry. max <= 0 means unlimited.
func NewRegistry(ds *area.Dataset, newEngine EngineFactory, opts Options, max int) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		ds:        ds,
		newEngine: newEngine,
		opts:      opts,
		max:       max,
	}
}

// Dataset returns the shared dataset.
func (r *Registry) Dataset() *area.Dataset { return r.ds }

// Create opens a session with a new id. A session whose engine failed to load
// is returned with the error but not registered.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	r.mu.RLock()
	full := r.max > 0 && len(r.sessions) >= r.max
	r.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	s, err := Open(ctx, uuid.New().String(), r.ds, r.newEngine(), r.opts)
	if err != nil {
		return s, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.sessions) >= r.max {
		s.Close()
		return nil, ErrTooManySessions
	}
	r.sessions[s.ID()] = s
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	return s, nil
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close tears down and forgets the session with id.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// CloseAll tears down every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	metrics.SessionsActive.Set(0)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
