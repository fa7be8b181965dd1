// Package selection tracks which shapes are highlighted, in single-select
// mode or in two-slot compare mode, and reports selected areas to observers.
package selection

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/district-map/internal/engine"
	"github.com/sells-group/district-map/internal/layer"
)

// Mode says which controller holds highlight authority.
type Mode int

const (
	// ModeSingle gives authority to the Controller.
	ModeSingle Mode = iota
	// ModeCompare gives authority to the Coordinator.
	ModeCompare
)

func (m Mode) String() string {
	if m == ModeCompare {
		return "compare"
	}
	return "single"
}

// Restyle is one pending style change.
type Restyle struct {
	Shape *layer.Shape
	Style engine.Style
}

// State is the selection state. In single mode only the highlighted slot may
// be set; in compare mode only base and compare. Transitions return the next
// state together with every restyle needed to reach it, so a caller can apply
// the whole change at once.
type State struct {
	mode        Mode
	highlighted *layer.Shape
	base        *layer.Shape
	compare     *layer.Shape
}

// Mode returns the current mode.
func (s State) Mode() Mode { return s.mode }

// Highlighted returns the single-select shape.
func (s State) Highlighted() *layer.Shape { return s.highlighted }

// Base returns the compare base shape.
func (s State) Base() *layer.Shape { return s.base }

// Compare returns the compare target shape.
func (s State) Compare() *layer.Shape { return s.compare }

// selectSingle highlights sh and resets the previous highlight.
func (s State) selectSingle(sh *layer.Shape) (State, []Restyle) {
	var rs []Restyle
	if s.highlighted != nil && s.highlighted != sh {
		rs = append(rs, Restyle{Shape: s.highlighted, Style: layer.DefaultStyle})
	}
	rs = append(rs, Restyle{Shape: sh, Style: layer.HighlightStyle})
	return State{mode: ModeSingle, highlighted: sh}, rs
}

// clearSingle drops the single highlight.
func (s State) clearSingle() (State, []Restyle) {
	if s.mode != ModeSingle || s.highlighted == nil {
		return s, nil
	}
	return State{}, []Restyle{{Shape: s.highlighted, Style: layer.DefaultStyle}}
}

// enterCompare moves the highlighted shape into the base slot. The base keeps
// its current style, which already marks it.
func (s State) enterCompare() (State, bool) {
	if s.mode == ModeCompare || s.highlighted == nil {
		return s, false
	}
	return State{mode: ModeCompare, base: s.highlighted}, true
}

// selectCompare assigns sh to the compare slot. Selecting the base is refused.
func (s State) selectCompare(sh *layer.Shape) (State, []Restyle, bool) {
	if s.mode != ModeCompare || sh == s.base {
		return s, nil, false
	}
	var rs []Restyle
	if s.compare != nil && s.compare != sh {
		rs = append(rs, Restyle{Shape: s.compare, Style: layer.DefaultStyle})
	}
	rs = append(rs, Restyle{Shape: sh, Style: layer.CompareStyle})
	return State{mode: ModeCompare, base: s.base, compare: sh}, rs, true
}

// exitCompare resets both slots and returns to an idle single mode.
func (s State) exitCompare() (State, []Restyle, bool) {
	if s.mode != ModeCompare {
		return s, nil, false
	}
	var rs []Restyle
	if s.base != nil {
		rs = append(rs, Restyle{Shape: s.base, Style: layer.DefaultStyle})
	}
	if s.compare != nil {
		rs = append(rs, Restyle{Shape: s.compare, Style: layer.DefaultStyle})
	}
	return State{}, rs, true
}

// Check verifies the slot invariants.
func (s State) Check() error {
	switch s.mode {
	case ModeSingle:
		if s.base != nil || s.compare != nil {
			return eris.New("selection: compare slots set in single mode")
		}
	case ModeCompare:
		if s.highlighted != nil {
			return eris.New("selection: single highlight set in compare mode")
		}
		if s.base == nil {
			return eris.New("selection: compare mode without base")
		}
		if s.compare != nil && s.compare == s.base {
			return eris.New("selection: base and compare are the same shape")
		}
	default:
		return eris.Errorf("selection: unknown mode %d", s.mode)
	}
	return nil
}

// apply performs a computed restyle set.
func apply(rs []Restyle) {
	for _, r := range rs {
		r.Shape.SetStyle(r.Style)
	}
}
