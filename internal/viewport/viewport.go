// Package viewport owns the map camera: center, zoom level and visible bounds.
//
// Zoom levels follow the engine convention where a larger level is further
// out. A Viewport is not safe for concurrent use; the owning session
// serializes calls.
package viewport

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/engine"
)

// ErrUnavailable is returned when the map engine failed to load.
var ErrUnavailable = eris.New("viewport: map engine unavailable")

// ErrNotReady is returned when the viewport is used before Start.
var ErrNotReady = eris.New("viewport: not started")

// Options configures the initial camera.
type Options struct {
	Center   area.LatLng
	Level    int
	MinLevel int
	MaxLevel int
	// Retry governs the engine load; the zero value loads once.
	Retry engine.LoadPolicy
}

// DefaultOptions centers on Seoul at level 6.
func DefaultOptions() Options {
	return Options{
		Center:   area.LatLng{Lat: 37.532527, Lng: 126.99049},
		Level:    6,
		MinLevel: 1,
		MaxLevel: 14,
	}
}

// ZoomListener is notified after the level changes.
type ZoomListener func(level int)

// Viewport is the Viewport Controller.
type Viewport struct {
	eng  engine.Engine
	opts Options

	startOnce sync.Once
	ready     chan struct{}
	loadErr   error

	center    area.LatLng
	level     int
	bounds    *area.Bounds
	listeners []ZoomListener
}

// New creates a viewport over eng. Out-of-range options fall back to
// DefaultOptions values.
func New(eng engine.Engine, opts Options) *Viewport {
	def := DefaultOptions()
	if opts.MinLevel <= 0 {
		opts.MinLevel = def.MinLevel
	}
	if opts.MaxLevel < opts.MinLevel {
		opts.MaxLevel = def.MaxLevel
	}
	if opts.Level < opts.MinLevel || opts.Level > opts.MaxLevel {
		opts.Level = def.Level
	}
	return &Viewport{
		eng:    eng,
		opts:   opts,
		ready:  make(chan struct{}),
		center: opts.Center,
		level:  opts.Level,
	}
}

// Start begins loading the engine in the background. Calling it again is a
// no-op; the engine is loaded at most once.
func (v *Viewport) Start(ctx context.Context) {
	v.startOnce.Do(func() {
		go func() {
			defer close(v.ready)
			if err := engine.LoadWithRetry(ctx, v.eng, v.opts.Retry); err != nil {
				// Both ErrUnavailable and the load cause stay matchable.
				v.loadErr = eris.Wrap(err, ErrUnavailable.Error())
				zap.L().Error("viewport: engine load failed", zap.Error(err))
				return
			}
			v.eng.SetView(engine.View{Center: v.center, Level: v.level})
			zap.L().Debug("viewport: engine loaded",
				zap.Float64("lat", v.center.Lat),
				zap.Float64("lng", v.center.Lng),
				zap.Int("level", v.level),
			)
		}()
	})
}

// Wait blocks until the engine load started by Start finishes. It returns an
// error wrapping ErrUnavailable if the load failed.
func (v *Viewport) Wait(ctx context.Context) error {
	select {
	case <-v.ready:
		return v.loadErr
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "viewport: wait for engine")
	}
}

// Init starts the engine load and waits for it.
func (v *Viewport) Init(ctx context.Context) error {
	v.Start(ctx)
	return v.Wait(ctx)
}

// Ready reports whether the engine loaded successfully.
func (v *Viewport) Ready() bool {
	select {
	case <-v.ready:
		return v.loadErr == nil
	default:
		return false
	}
}

// Level returns the current zoom level.
func (v *Viewport) Level() int { return v.level }

// Center returns the current map center.
func (v *Viewport) Center() area.LatLng { return v.center }

// Bounds returns the last fitted bounds, if any.
func (v *Viewport) Bounds() *area.Bounds { return v.bounds }

// Options returns the effective options.
func (v *Viewport) Options() Options { return v.opts }

// OnZoomChanged registers fn to run after every level change.
func (v *Viewport) OnZoomChanged(fn ZoomListener) {
	v.listeners = append(v.listeners, fn)
}

// SetZoom clamps level to the configured range and applies it. Listeners run
// only when the level actually changes.
func (v *Viewport) SetZoom(level int) error {
	if !v.Ready() {
		return ErrNotReady
	}
	level = min(max(level, v.opts.MinLevel), v.opts.MaxLevel)
	if level == v.level {
		return nil
	}
	v.level = level
	v.push()
	for _, fn := range v.listeners {
		fn(level)
	}
	return nil
}

// Pan moves the center without changing the level. Fitted bounds are cleared.
func (v *Viewport) Pan(center area.LatLng) error {
	if !v.Ready() {
		return ErrNotReady
	}
	v.center = center
	v.bounds = nil
	v.push()
	return nil
}

// FitBounds centers the camera on b and records it as the visible bounds.
func (v *Viewport) FitBounds(b area.Bounds) error {
	if !v.Ready() {
		return ErrNotReady
	}
	v.center = b.Center()
	v.bounds = &b
	v.push()
	return nil
}

func (v *Viewport) push() {
	v.eng.SetView(engine.View{Center: v.center, Level: v.level, Bounds: v.bounds})
}
