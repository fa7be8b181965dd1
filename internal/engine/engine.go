// Package engine defines the boundary to the map rendering engine and ships an
// in-memory engine used by the server and tests.
package engine

import (
	"context"

	"github.com/sells-group/district-map/internal/area"
)

// Style is the paint applied to a polygon overlay.
type Style struct {
	FillColor     string  `json:"fill_color"`
	FillOpacity   float64 `json:"fill_opacity"`
	StrokeColor   string  `json:"stroke_color"`
	StrokeWeight  int     `json:"stroke_weight"`
	StrokeOpacity float64 `json:"stroke_opacity"`
}

// Overlay is a polygon the engine can draw.
type Overlay interface {
	OverlayID() string
	Path() []area.LatLng
	Style() Style
	ZIndex() int
}

// View is the camera state pushed to the engine.
type View struct {
	Center area.LatLng  `json:"center"`
	Level  int          `json:"level"`
	Bounds *area.Bounds `json:"bounds,omitempty"`
}

// Engine is the rendering engine. Load must succeed before any other method
// is called.
//
// Engines may ignore Update for overlays already on screen; callers that need
// a guaranteed repaint remove and re-add the overlay.
type Engine interface {
	Load(ctx context.Context) error
	Add(o Overlay)
	Remove(o Overlay)
	Update(o Overlay)
	SetView(v View)
}
