package layer

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/engine"
)

// DetailMaxLevel is the most zoomed-out level at which the fine (dong) layer
// is shown. Above it the coarse (gu) layer takes over.
const DetailMaxLevel = 7

// FineVisible reports whether the fine layer is shown at level.
func FineVisible(level int) bool {
	return level <= DetailMaxLevel
}

// ErrAlreadyBuilt is returned by a second call to Build.
var ErrAlreadyBuilt = eris.New("layer: already built")

// Manager is the Layer Manager. It is not safe for concurrent use.
type Manager struct {
	eng engine.Engine

	fine       []*Shape
	coarse     []*Shape
	background []*Shape
	fineIdx    map[string]*Shape
	coarseIdx  map[string]*Shape

	level    int
	hasLevel bool
	pinned   *Shape
	pinLevel int
	built    bool
}

// NewManager creates a manager drawing on eng. The engine must be loaded.
func NewManager(eng engine.Engine) *Manager {
	return &Manager{eng: eng}
}

// Build creates one shape per dong, one per gu, and one background outline per
// gu. Background outlines are attached immediately; the fine and coarse layers
// wait for the first UpdateVisibility.
func (m *Manager) Build(ds *area.Dataset) error {
	if m.built {
		return ErrAlreadyBuilt
	}

	dong := ds.Features(area.Dong)
	gu := ds.Features(area.Gu)

	m.fineIdx = make(map[string]*Shape, len(dong))
	for _, f := range dong {
		s := m.newShape(f, KindFine, DefaultStyle)
		m.fine = append(m.fine, s)
		m.fineIdx[f.Code] = s
	}

	m.coarseIdx = make(map[string]*Shape, len(gu))
	for _, f := range gu {
		s := m.newShape(f, KindCoarse, DefaultStyle)
		m.coarse = append(m.coarse, s)
		m.coarseIdx[f.Code] = s
	}

	for _, f := range gu {
		s := m.newShape(f, KindBackground, BackgroundStyle)
		s.attach()
		m.background = append(m.background, s)
	}

	m.built = true
	zap.L().Debug("layer: built",
		zap.Int("fine", len(m.fine)),
		zap.Int("coarse", len(m.coarse)),
		zap.Int("background", len(m.background)),
	)
	return nil
}

func (m *Manager) newShape(f *area.Feature, k Kind, style engine.Style) *Shape {
	return &Shape{feature: f, kind: k, style: style, eng: m.eng}
}

// Layer returns the shapes of one layer in dataset order.
func (m *Manager) Layer(k Kind) []*Shape {
	switch k {
	case KindFine:
		return m.fine
	case KindCoarse:
		return m.coarse
	case KindBackground:
		return m.background
	default:
		return nil
	}
}

// Lookup resolves a code in the layer matching g: fine for dong, coarse for gu.
func (m *Manager) Lookup(g area.Granularity, code string) (*Shape, bool) {
	var s *Shape
	var ok bool
	switch g {
	case area.Dong:
		s, ok = m.fineIdx[code]
	case area.Gu:
		s, ok = m.coarseIdx[code]
	}
	return s, ok
}

// UpdateVisibility attaches the fine layer and detaches the coarse layer when
// level <= DetailMaxLevel, and the inverse otherwise. The background layer is
// always attached. A pin survives only a pass at its own level; any other
// level releases it. It never touches styles and is idempotent.
func (m *Manager) UpdateVisibility(level int) {
	m.level = level
	m.hasLevel = true
	if m.pinned != nil && level != m.pinLevel {
		zap.L().Debug("layer: pin released by zoom",
			zap.String("shape", m.pinned.OverlayID()),
			zap.Int("level", level),
		)
		m.pinned = nil
	}

	for _, s := range m.fine {
		m.apply(s)
	}
	for _, s := range m.coarse {
		m.apply(s)
	}
	for _, s := range m.background {
		s.attach()
	}
}

// Level returns the level of the last UpdateVisibility call.
func (m *Manager) Level() (int, bool) {
	return m.level, m.hasLevel
}

// Visible reports whether s should be on screen at the current level.
func (m *Manager) Visible(s *Shape) bool {
	switch {
	case s == nil:
		return false
	case s.kind == KindBackground, s == m.pinned:
		return true
	case !m.hasLevel:
		return false
	default:
		return shownAt(s.kind, m.level)
	}
}

// shownAt reports whether layer k is on screen at level.
func shownAt(k Kind, level int) bool {
	switch k {
	case KindBackground:
		return true
	case KindFine:
		return FineVisible(level)
	default:
		return !FineVisible(level)
	}
}

func (m *Manager) apply(s *Shape) {
	if m.Visible(s) {
		s.attach()
	} else {
		s.detach()
	}
}

// Pin keeps s attached at level even though its layer is hidden there, and
// releases any previous pin. When s's layer is shown at level anyway nothing
// is pinned. The pin lasts until the next UpdateVisibility at another level or
// an Unpin. It reports whether s was pinned.
func (m *Manager) Pin(s *Shape, level int) bool {
	m.Unpin()
	if s == nil || shownAt(s.kind, level) {
		return false
	}
	m.pinned = s
	m.pinLevel = level
	s.attach()
	return true
}

// Unpin releases the pinned shape, which falls back to the layer rule.
func (m *Manager) Unpin() {
	old := m.pinned
	if old == nil {
		return
	}
	m.pinned = nil
	m.apply(old)
}

// Pinned returns the pinned shape, if any.
func (m *Manager) Pinned() *Shape { return m.pinned }

// Refresh forces the engine to repaint s by detaching and reattaching it.
// Engines are not required to repaint on a style change alone, so callers
// that restyle a shape and must see the result on screen refresh it. A shape
// that is off screen is left alone; it is painted with its current style when
// it is next attached.
func (m *Manager) Refresh(s *Shape) {
	if s == nil || !s.attached {
		return
	}
	s.detach()
	s.attach()
}

// Teardown detaches every shape and drops all references. The manager cannot
// be used afterwards.
func (m *Manager) Teardown() {
	for _, layer := range [][]*Shape{m.fine, m.coarse, m.background} {
		for _, s := range layer {
			s.detach()
		}
	}
	m.fine, m.coarse, m.background = nil, nil, nil
	m.fineIdx, m.coarseIdx = nil, nil
	m.pinned = nil
	m.hasLevel = false
}
