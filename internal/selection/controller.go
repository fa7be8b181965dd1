package selection

import (
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/layer"
)

// Outcome reports what a selection request did. Touched lists every shape
// whose style was set, in the order the styles were applied.
type Outcome struct {
	Applied bool
	Touched []*layer.Shape
}

// Controller is the Selection Controller. It owns the selection state and
// hands selections to its Coordinator while compare mode is active. It is not
// safe for concurrent use.
type Controller struct {
	state    *State
	observer Observer
	compare  *Coordinator
}

// NewController creates a controller reporting to obs. A nil obs discards
// reports.
func NewController(obs Observer) *Controller {
	if obs == nil {
		obs = Observers(nil)
	}
	st := &State{}
	return &Controller{
		state:    st,
		observer: obs,
		compare:  &Coordinator{state: st, observer: obs},
	}
}

// Coordinator returns the compare-mode coordinator sharing this state.
func (c *Controller) Coordinator() *Coordinator { return c.compare }

// State returns a copy of the current state.
func (c *Controller) State() State { return *c.state }

// Select handles a selection of sh from a click or a query. Background shapes
// are not selectable.
func (c *Controller) Select(sh *layer.Shape) Outcome {
	if sh == nil || sh.Kind() == layer.KindBackground {
		return Outcome{}
	}
	if c.state.mode == ModeCompare {
		return c.compare.offer(sh)
	}

	next, rs := c.state.selectSingle(sh)
	apply(rs)
	*c.state = next

	a := Describe(sh)
	zap.L().Debug("selection: area selected",
		zap.String("code", a.Code),
		zap.String("granularity", string(a.Granularity)),
		zap.Int64("computed_area", a.ComputedArea),
	)
	c.observer.AreaSelected(a)
	return Outcome{Applied: true, Touched: touched(rs)}
}

// Clear removes the single highlight. It does nothing in compare mode.
func (c *Controller) Clear() Outcome {
	next, rs := c.state.clearSingle()
	if len(rs) == 0 {
		return Outcome{}
	}
	apply(rs)
	*c.state = next
	return Outcome{Applied: true, Touched: touched(rs)}
}

// Reset forgets every shape reference without restyling. Used on teardown,
// after the shapes have left the engine.
func (c *Controller) Reset() {
	*c.state = State{}
}

func touched(rs []Restyle) []*layer.Shape {
	out := make([]*layer.Shape, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Shape)
	}
	return out
}
