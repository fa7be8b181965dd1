// Package mapsession wires the map subsystem together for one viewer: engine,
// viewport, layers, selection and query navigation.
//
// A Session serializes every event behind one mutex, so each click, zoom,
// query or compare toggle runs to completion before the next begins.
package mapsession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/engine"
	"github.com/sells-group/district-map/internal/layer"
	"github.com/sells-group/district-map/internal/metrics"
	"github.com/sells-group/district-map/internal/navigator"
	"github.com/sells-group/district-map/internal/selection"
	"github.com/sells-group/district-map/internal/viewport"
)

// Session errors.
var (
	ErrClosed       = eris.New("mapsession: session closed")
	ErrUnknownShape = eris.New("mapsession: unknown shape")
	ErrShapeHidden  = eris.New("mapsession: shape is not on screen")
	ErrNoGeoJSON    = eris.New("mapsession: engine cannot render geojson")
)

// Status is the lifecycle state of a session.
type Status string

// Session statuses.
const (
	StatusReady       Status = "ready"
	StatusUnavailable Status = "unavailable"
	StatusClosed      Status = "closed"
)

// Options configures new sessions.
type Options struct {
	View        viewport.Options
	Levels      navigator.Levels
	LoadTimeout time.Duration
	// Observer receives selection reports in addition to the session log.
	Observer selection.Observer
}

// DefaultOptions returns the stock camera and jump levels with a 10s load timeout.
func DefaultOptions() Options {
	return Options{
		View:        viewport.DefaultOptions(),
		Levels:      navigator.DefaultLevels(),
		LoadTimeout: 10 * time.Second,
	}
}

// Session is one viewer's map.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	status    Status
	loadErr   error

	eng    engine.Engine
	view   *viewport.Viewport
	layers *layer.Manager
	sel    *selection.Controller
	nav    *navigator.Navigator
}

// Open loads the engine, builds the layers and wires zoom notifications. If
// the engine fails to load, Open returns the session in StatusUnavailable
// together with an error wrapping viewport.ErrUnavailable.
func Open(ctx context.Context, id string, ds *area.Dataset, eng engine.Engine, opts Options) (*Session, error) {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultOptions().LoadTimeout
	}

	obs := selection.Observers{logObserver{id: id}}
	if opts.Observer != nil {
		obs = append(obs, opts.Observer)
	}

	s := &Session{
		id:        id,
		createdAt: time.Now(),
		eng:       eng,
		view:      viewport.New(eng, opts.View),
		layers:    layer.NewManager(eng),
		sel:       selection.NewController(obs),
	}
	s.nav = navigator.New(s.layers, s.view, s.sel, opts.Levels)

	loadCtx, cancel := context.WithTimeout(ctx, opts.LoadTimeout)
	defer cancel()
	if err := s.view.Init(loadCtx); err != nil {
		s.status = StatusUnavailable
		if !errors.Is(err, viewport.ErrUnavailable) {
			err = eris.Wrap(err, viewport.ErrUnavailable.Error())
		}
		s.loadErr = err
		metrics.EngineFailuresTotal.Inc()
		return s, err
	}

	if err := s.layers.Build(ds); err != nil {
		return nil, eris.Wrap(err, "mapsession: build layers")
	}
	s.layers.UpdateVisibility(s.view.Level())
	s.view.OnZoomChanged(func(level int) {
		s.layers.UpdateVisibility(level)
		metrics.ZoomChangesTotal.Inc()
	})

	s.status = StatusReady
	zap.L().Info("mapsession: opened",
		zap.String("session", id),
		zap.Int("level", s.view.Level()),
	)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// usable must be called with s.mu held.
func (s *Session) usable() error {
	switch s.status {
	case StatusReady:
		return nil
	case StatusUnavailable:
		return s.loadErr
	default:
		return ErrClosed
	}
}

// Click selects the shape a user clicked. Only on-screen shapes can be
// clicked.
func (s *Session) Click(g area.Granularity, code string) (selection.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return selection.Outcome{}, err
	}

	sh, ok := s.layers.Lookup(g, code)
	if !ok {
		return selection.Outcome{}, eris.Wrapf(ErrUnknownShape, "mapsession: %s %s", g, code)
	}
	if !sh.Attached() {
		return selection.Outcome{}, eris.Wrapf(ErrShapeHidden, "mapsession: %s %s", g, code)
	}

	// A click ends any query pin unless it lands on the pinned shape itself.
	if s.layers.Pinned() != sh {
		s.layers.Unpin()
	}

	out := s.sel.Select(sh)
	if out.Applied {
		metrics.SelectionsTotal.WithLabelValues("click", string(g)).Inc()
	}
	return out, nil
}

// Query runs a query-driven selection.
func (s *Session) Query(q navigator.Query) (navigator.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return navigator.Result{}, err
	}

	res, err := s.nav.Navigate(q)
	if err != nil {
		return res, err
	}
	switch {
	case !res.Found:
		metrics.QueryMissesTotal.WithLabelValues(string(q.Type)).Inc()
	case res.Selected:
		metrics.SelectionsTotal.WithLabelValues("query", string(res.Area.Granularity)).Inc()
	}
	return res, nil
}

// SetCompare turns compare mode on or off. Turning it on without a selection
// is a no-op. It reports whether the mode changed.
func (s *Session) SetCompare(on bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return false, err
	}

	k := s.sel.Coordinator()
	if on {
		if !k.Enter() {
			return false, nil
		}
		metrics.CompareTogglesTotal.WithLabelValues("on").Inc()
		return true, nil
	}

	out := k.Exit()
	if !out.Applied {
		return false, nil
	}
	// Selection goes idle, so nothing is left to keep on screen.
	s.layers.Unpin()
	for _, sh := range out.Touched {
		s.layers.Refresh(sh)
	}
	metrics.CompareTogglesTotal.WithLabelValues("off").Inc()
	return true, nil
}

// ClearSelection drops the single-select highlight and any query pin.
func (s *Session) ClearSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	out := s.sel.Clear()
	s.layers.Unpin()
	for _, sh := range out.Touched {
		s.layers.Refresh(sh)
	}
	return nil
}

// Zoom sets the zoom level, switching layers when it crosses the detail
// threshold.
func (s *Session) Zoom(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.view.SetZoom(level)
}

// Pan moves the map center.
func (s *Session) Pan(center area.LatLng) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.view.Pan(center)
}

// GeoJSON renders the on-screen shapes, when the engine supports it.
func (s *Session) GeoJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	r, ok := s.eng.(interface{ GeoJSON() ([]byte, error) })
	if !ok {
		return nil, ErrNoGeoJSON
	}
	return r.GeoJSON()
}

// Close detaches every shape and drops all references. Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusClosed {
		return
	}
	s.layers.Teardown()
	s.sel.Reset()
	s.status = StatusClosed
	zap.L().Info("mapsession: closed", zap.String("session", s.id))
}
