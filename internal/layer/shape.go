// Package layer builds the polygon shapes for both area granularities and
// decides which of them are on screen at a given zoom level.
package layer

import (
	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/engine"
)

// Kind is the layer a shape belongs to.
type Kind int

const (
	// KindFine holds one shape per dong.
	KindFine Kind = iota
	// KindCoarse holds one shape per gu.
	KindCoarse
	// KindBackground holds the static gu outlines drawn beneath both layers.
	KindBackground
)

func (k Kind) String() string {
	switch k {
	case KindFine:
		return "fine"
	case KindCoarse:
		return "coarse"
	case KindBackground:
		return "background"
	default:
		return "unknown"
	}
}

// Z-order of each layer.
const (
	zFine       = 10
	zCoarse     = 5
	zBackground = 1
)

// Shape is a rendered instance of an area feature. Shapes are created once by
// Manager.Build and only restyled or attached/detached afterwards.
type Shape struct {
	feature  *area.Feature
	kind     Kind
	style    engine.Style
	attached bool
	eng      engine.Engine
}

// OverlayID is unique across all layers: "dong:<code>", "gu:<code>" or "bg:<code>".
func (s *Shape) OverlayID() string {
	switch s.kind {
	case KindFine:
		return "dong:" + s.feature.Code
	case KindCoarse:
		return "gu:" + s.feature.Code
	default:
		return "bg:" + s.feature.Code
	}
}

// Path returns the feature boundary.
func (s *Shape) Path() []area.LatLng { return s.feature.Path }

// Style returns the current style.
func (s *Shape) Style() engine.Style { return s.style }

// ZIndex returns the layer z-order.
func (s *Shape) ZIndex() int {
	switch s.kind {
	case KindFine:
		return zFine
	case KindCoarse:
		return zCoarse
	default:
		return zBackground
	}
}

// Feature returns the area this shape renders.
func (s *Shape) Feature() *area.Feature { return s.feature }

// Kind returns the owning layer.
func (s *Shape) Kind() Kind { return s.kind }

// Attached reports whether the shape is on screen.
func (s *Shape) Attached() bool { return s.attached }

// SetStyle changes the shape's paint. Only the selection controllers call it.
func (s *Shape) SetStyle(style engine.Style) {
	if s.style == style {
		return
	}
	s.style = style
	if s.attached {
		s.eng.Update(s)
	}
}

func (s *Shape) attach() {
	if s.attached {
		return
	}
	s.attached = true
	s.eng.Add(s)
}

func (s *Shape) detach() {
	if !s.attached {
		return
	}
	s.attached = false
	s.eng.Remove(s)
}
