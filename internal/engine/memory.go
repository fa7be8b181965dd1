package engine

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/district-map/internal/area"
)

// OpKind identifies a recorded engine call.
type OpKind string

// Recorded engine calls.
const (
	OpAdd    OpKind = "add"
	OpRemove OpKind = "remove"
	OpUpdate OpKind = "update"
)

// Op is one overlay call recorded by Memory.
type Op struct {
	Kind OpKind
	ID   string
}

// MemoryOption configures a Memory engine.
type MemoryOption func(*Memory)

// WithLoadError makes Load fail with err.
func WithLoadError(err error) MemoryOption {
	return func(m *Memory) { m.loadErr = err }
}

// WithLoadDelay makes Load block for d (or until ctx is done).
func WithLoadDelay(d time.Duration) MemoryOption {
	return func(m *Memory) { m.loadDelay = d }
}

// Memory is an engine that keeps overlays in memory. It paints styles only when
// an overlay is added, so an Update to an on-screen overlay is recorded but not
// reflected in Painted until the overlay is removed and re-added.
type Memory struct {
	mu        sync.Mutex
	loaded    bool
	loadErr   error
	loadDelay time.Duration
	overlays  map[string]Overlay
	painted   map[string]Style
	view      View
	ops       []Op
}

// NewMemory creates an in-memory engine.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		overlays: make(map[string]Overlay),
		painted:  make(map[string]Style),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load marks the engine ready.
func (m *Memory) Load(ctx context.Context) error {
	if m.loadDelay > 0 {
		select {
		case <-time.After(m.loadDelay):
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "engine: load")
		}
	}
	if m.loadErr != nil {
		return eris.Wrap(m.loadErr, "engine: load")
	}

	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()
	return nil
}

// Loaded reports whether Load has succeeded.
func (m *Memory) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Add puts o on screen, painting its current style. Adding an overlay that is
// already on screen is recorded and otherwise ignored.
func (m *Memory) Add(o Overlay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := o.OverlayID()
	m.ops = append(m.ops, Op{Kind: OpAdd, ID: id})
	if _, ok := m.overlays[id]; ok {
		return
	}
	m.overlays[id] = o
	m.painted[id] = o.Style()
}

// Remove takes o off screen.
func (m *Memory) Remove(o Overlay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := o.OverlayID()
	m.ops = append(m.ops, Op{Kind: OpRemove, ID: id})
	delete(m.overlays, id)
	delete(m.painted, id)
}

// Update records a style change without repainting.
func (m *Memory) Update(o Overlay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, Op{Kind: OpUpdate, ID: o.OverlayID()})
}

// SetView stores the camera state.
func (m *Memory) SetView(v View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = v
}

// View returns the last camera state.
func (m *Memory) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// OnScreen reports whether the overlay with id is drawn.
func (m *Memory) OnScreen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.overlays[id]
	return ok
}

// Painted returns the style last painted for id.
func (m *Memory) Painted(id string) (Style, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.painted[id]
	return s, ok
}

// Count returns the number of overlays on screen.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.overlays)
}

// Ops returns a copy of the recorded calls.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// ResetOps clears the recorded calls.
func (m *Memory) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

// GeoJSON renders the on-screen overlays as a FeatureCollection ordered by
// z-index then id. Each feature carries its painted style as properties and
// is marked stale when the overlay's current style has not been painted yet.
func (m *Memory) GeoJSON() ([]byte, error) {
	m.mu.Lock()
	overlays := make([]Overlay, 0, len(m.overlays))
	for _, o := range m.overlays {
		overlays = append(overlays, o)
	}
	painted := make(map[string]Style, len(m.painted))
	for id, s := range m.painted {
		painted[id] = s
	}
	m.mu.Unlock()

	sort.Slice(overlays, func(i, j int) bool {
		if overlays[i].ZIndex() != overlays[j].ZIndex() {
			return overlays[i].ZIndex() < overlays[j].ZIndex()
		}
		return overlays[i].OverlayID() < overlays[j].OverlayID()
	})

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(overlays))}
	for _, o := range overlays {
		id := o.OverlayID()
		style := painted[id]
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       id,
			Geometry: polygon(o.Path()),
			Properties: map[string]any{
				"z_index":        o.ZIndex(),
				"fill_color":     style.FillColor,
				"fill_opacity":   style.FillOpacity,
				"stroke_color":   style.StrokeColor,
				"stroke_weight":  style.StrokeWeight,
				"stroke_opacity": style.StrokeOpacity,
				"stale":          style != o.Style(),
			},
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "engine: encode geojson")
	}
	return data, nil
}

// polygon closes path into a single-ring polygon in (lng, lat) order.
func polygon(path []area.LatLng) *geom.Polygon {
	flat := make([]float64, 0, (len(path)+1)*2)
	for _, p := range path {
		flat = append(flat, p.Lng, p.Lat)
	}
	if len(path) > 0 && path[0] != path[len(path)-1] {
		flat = append(flat, path[0].Lng, path[0].Lat)
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}
