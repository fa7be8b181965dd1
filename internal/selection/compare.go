package selection

import (
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/layer"
)

// Coordinator is the Compare Coordinator: a two-state machine (inactive,
// active) holding the base and compare slots while active.
type Coordinator struct {
	state    *State
	observer Observer
}

// Active reports whether compare mode is on.
func (k *Coordinator) Active() bool { return k.state.mode == ModeCompare }

// Enter turns compare mode on, making the current selection the base. It
// returns false, changing nothing, when nothing is selected or compare mode is
// already on.
func (k *Coordinator) Enter() bool {
	next, ok := k.state.enterCompare()
	if !ok {
		return false
	}
	*k.state = next

	base := Describe(next.base)
	zap.L().Debug("selection: compare entered", zap.String("base", base.Code))
	k.observer.ComparisonChanged(Comparison{Base: base})
	return true
}

// Exit turns compare mode off. Both slots are reset to the default style and
// the selection goes idle; no descriptor is emitted.
func (k *Coordinator) Exit() Outcome {
	next, rs, ok := k.state.exitCompare()
	if !ok {
		return Outcome{}
	}
	apply(rs)
	*k.state = next

	zap.L().Debug("selection: compare exited", zap.Int("reset", len(rs)))
	return Outcome{Applied: true, Touched: touched(rs)}
}

// Toggle enters or exits compare mode. It reports whether the mode changed.
func (k *Coordinator) Toggle(on bool) bool {
	if on {
		return k.Enter()
	}
	return k.Exit().Applied
}

// offer assigns sh to the compare slot unless it is the base.
func (k *Coordinator) offer(sh *layer.Shape) Outcome {
	next, rs, ok := k.state.selectCompare(sh)
	if !ok {
		zap.L().Debug("selection: ignored self-compare", zap.String("shape", sh.OverlayID()))
		return Outcome{}
	}
	apply(rs)
	*k.state = next

	cmp := Describe(next.compare)
	k.observer.ComparisonChanged(Comparison{Base: Describe(next.base), Compare: &cmp})
	return Outcome{Applied: true, Touched: touched(rs)}
}
