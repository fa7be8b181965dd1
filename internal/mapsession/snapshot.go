package mapsession

import (
	"time"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/layer"
	"github.com/sells-group/district-map/internal/selection"
)

// Snapshot is a read-only view of a session for API responses. Pinned names
// the one shape on screen outside the visible layer, a query target kept at
// its jump level.
type Snapshot struct {
	ID         string                  `json:"id"`
	Status     Status                  `json:"status"`
	CreatedAt  time.Time               `json:"created_at"`
	Level      int                     `json:"level"`
	Center     area.LatLng             `json:"center"`
	Bounds     *area.Bounds            `json:"bounds,omitempty"`
	Visible    string                  `json:"visible_layer"`
	Mode       string                  `json:"mode"`
	Selected   *selection.SelectedArea `json:"selected,omitempty"`
	Comparison *selection.Comparison   `json:"comparison,omitempty"`
	Pinned     string                  `json:"pinned,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		Status:    s.status,
		CreatedAt: s.createdAt,
	}
	if s.status == StatusUnavailable {
		snap.Error = s.loadErr.Error()
		return snap
	}

	snap.Level = s.view.Level()
	snap.Center = s.view.Center()
	snap.Bounds = s.view.Bounds()
	if s.status == StatusClosed {
		return snap
	}

	// Report the level the layers were last laid out for, not the camera.
	level, ok := s.layers.Level()
	if !ok {
		level = snap.Level
	}
	snap.Visible = layer.KindCoarse.String()
	if layer.FineVisible(level) {
		snap.Visible = layer.KindFine.String()
	}

	st := s.sel.State()
	snap.Mode = st.Mode().String()
	if h := st.Highlighted(); h != nil {
		d := selection.Describe(h)
		snap.Selected = &d
	}
	if b := st.Base(); b != nil {
		c := &selection.Comparison{Base: selection.Describe(b)}
		if cmp := st.Compare(); cmp != nil {
			d := selection.Describe(cmp)
			c.Compare = &d
		}
		snap.Comparison = c
	}
	if p := s.layers.Pinned(); p != nil && p.Attached() {
		snap.Pinned = p.OverlayID()
	}
	return snap
}
