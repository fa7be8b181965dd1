// Package navigator handles query-driven selection: a search or link asks for
// an area by type and code, and the map jumps to it and selects it.
package navigator

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/layer"
	"github.com/sells-group/district-map/internal/selection"
	"github.com/sells-group/district-map/internal/viewport"
)

// QueryType is the wire name of a query's area type.
type QueryType string

// Query types accepted on the wire.
const (
	QueryDong QueryType = "dongCode"
	QueryGu   QueryType = "guCode"
)

// ErrUnknownQueryType is returned for a query type other than dongCode or guCode.
var ErrUnknownQueryType = eris.New("navigator: unknown query type")

// Query is an externally issued selection request.
type Query struct {
	Type QueryType `json:"type"`
	Data string    `json:"data"`
}

// Granularity maps the query type onto an area granularity.
func (q Query) Granularity() (area.Granularity, error) {
	switch q.Type {
	case QueryDong:
		return area.Dong, nil
	case QueryGu:
		return area.Gu, nil
	default:
		return "", eris.Wrapf(ErrUnknownQueryType, "navigator: type %q", q.Type)
	}
}

// Levels are the zoom levels a query jumps to.
type Levels struct {
	Dong int
	Gu   int
}

// DefaultLevels jumps to level 5 for dong queries and 7 for gu queries.
func DefaultLevels() Levels {
	return Levels{Dong: 5, Gu: 7}
}

func (l Levels) forGranularity(g area.Granularity) int {
	if g == area.Gu {
		return l.Gu
	}
	return l.Dong
}

// Result reports what Navigate did.
type Result struct {
	// Found is false when the code matched no shape.
	Found bool
	// Selected is false when the selection was refused (self-compare).
	Selected bool
	// Area describes the target when found.
	Area *selection.SelectedArea
}

// Navigator is the Query Navigator. It is not safe for concurrent use.
type Navigator struct {
	layers *layer.Manager
	view   *viewport.Viewport
	sel    *selection.Controller
	levels Levels
}

// New creates a navigator over the session's components.
func New(layers *layer.Manager, view *viewport.Viewport, sel *selection.Controller, levels Levels) *Navigator {
	return &Navigator{layers: layers, view: view, sel: sel, levels: levels}
}

// Navigate resolves q in the matching layer, selects the shape and fits the
// viewport to it.
//
// A code that matches nothing is not an error: boundary datasets may be
// incomplete, so the request is dropped and the selection is left unchanged.
// The only errors are a malformed query type and an unavailable viewport.
//
// After restyling, the previous and target shapes are detached and
// reattached. This is how the repaint is forced on engines that do not redraw
// on a style change alone; it is required, not incidental.
func (n *Navigator) Navigate(q Query) (Result, error) {
	g, err := q.Granularity()
	if err != nil {
		return Result{}, err
	}

	target, ok := n.layers.Lookup(g, q.Data)
	if !ok {
		zap.L().Debug("navigator: query matched no shape",
			zap.String("type", string(q.Type)),
			zap.String("code", q.Data),
		)
		return Result{}, nil
	}

	desc := selection.Describe(target)
	res := Result{Found: true, Area: &desc}

	out := n.sel.Select(target)
	if !out.Applied {
		return res, nil
	}
	res.Selected = true

	// A gu target at the gu jump level sits in the hidden coarse layer; keep it
	// on screen until the user zooms away.
	level := n.levels.forGranularity(g)
	n.layers.Pin(target, level)

	for _, s := range out.Touched {
		n.layers.Refresh(s)
	}

	if err := n.view.FitBounds(target.Feature().Bounds()); err != nil {
		return res, eris.Wrap(err, "navigator: fit bounds")
	}
	if err := n.view.SetZoom(level); err != nil {
		return res, eris.Wrap(err, "navigator: set zoom")
	}
	// SetZoom notifies only on change; make sure the layers match either way.
	n.layers.UpdateVisibility(n.view.Level())

	zap.L().Debug("navigator: navigated",
		zap.String("type", string(q.Type)),
		zap.String("code", q.Data),
		zap.Int("level", n.view.Level()),
	)
	return res, nil
}
