package navigator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/area/areatest"
	"github.com/sells-group/district-map/internal/engine"
	"github.com/sells-group/district-map/internal/layer"
	"github.com/sells-group/district-map/internal/selection"
	"github.com/sells-group/district-map/internal/viewport"
)

type fixture struct {
	eng    *engine.Memory
	view   *viewport.Viewport
	layers *layer.Manager
	sel    *selection.Controller
	nav    *Navigator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	eng := engine.NewMemory()
	view := viewport.New(eng, viewport.DefaultOptions())
	require.NoError(t, view.Init(context.Background()))

	layers := layer.NewManager(eng)
	require.NoError(t, layers.Build(areatest.Dataset()))
	layers.UpdateVisibility(view.Level())
	view.OnZoomChanged(layers.UpdateVisibility)

	sel := selection.NewController(nil)
	return &fixture{
		eng:    eng,
		view:   view,
		layers: layers,
		sel:    sel,
		nav:    New(layers, view, sel, DefaultLevels()),
	}
}

func (f *fixture) shape(t *testing.T, g area.Granularity, code string) *layer.Shape {
	t.Helper()
	s, ok := f.layers.Lookup(g, code)
	require.True(t, ok)
	return s
}

func TestQueryGranularity(t *testing.T) {
	g, err := Query{Type: QueryDong}.Granularity()
	require.NoError(t, err)
	assert.Equal(t, area.Dong, g)

	g, err = Query{Type: QueryGu}.Granularity()
	require.NoError(t, err)
	assert.Equal(t, area.Gu, g)

	_, err = Query{Type: "siCode"}.Granularity()
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestNavigate_Dong(t *testing.T) {
	f := newFixture(t)

	res, err := f.nav.Navigate(Query{Type: QueryDong, Data: areatest.Sogong})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.True(t, res.Selected)
	require.NotNil(t, res.Area)
	assert.Equal(t, areatest.Sogong, res.Area.Code)

	target := f.shape(t, area.Dong, areatest.Sogong)
	assert.Same(t, target, f.sel.State().Highlighted())
	assert.Equal(t, layer.HighlightStyle, target.Style())
	assert.Equal(t, 5, f.view.Level())

	bounds := f.view.Bounds()
	require.NotNil(t, bounds)
	for _, p := range target.Path() {
		assert.True(t, bounds.Contains(p), "bounds must contain %v", p)
	}
	assert.True(t, target.Attached())

	painted, ok := f.eng.Painted(target.OverlayID())
	require.True(t, ok)
	assert.Equal(t, layer.HighlightStyle, painted, "target must be repainted")
}

func TestNavigate_RefreshesPreviousAndTarget(t *testing.T) {
	f := newFixture(t)
	prev := f.shape(t, area.Dong, areatest.Cheongun)
	f.sel.Select(prev)
	f.layers.Refresh(prev)

	f.eng.ResetOps()
	_, err := f.nav.Navigate(Query{Type: QueryDong, Data: areatest.Sajik})
	require.NoError(t, err)

	target := f.shape(t, area.Dong, areatest.Sajik)
	ops := f.eng.Ops()
	assert.Contains(t, ops, engine.Op{Kind: engine.OpRemove, ID: prev.OverlayID()})
	assert.Contains(t, ops, engine.Op{Kind: engine.OpRemove, ID: target.OverlayID()})

	painted, _ := f.eng.Painted(prev.OverlayID())
	assert.Equal(t, layer.DefaultStyle, painted)
	painted, _ = f.eng.Painted(target.OverlayID())
	assert.Equal(t, layer.HighlightStyle, painted)
}

func TestNavigate_GuStaysVisible(t *testing.T) {
	f := newFixture(t)

	res, err := f.nav.Navigate(Query{Type: QueryGu, Data: areatest.Jongno})
	require.NoError(t, err)
	require.True(t, res.Selected)

	target := f.shape(t, area.Gu, areatest.Jongno)
	assert.Equal(t, 7, f.view.Level())
	assert.True(t, target.Attached(), "gu target stays on screen at the jump level")
	assert.True(t, f.eng.OnScreen(target.OverlayID()))
	assert.Equal(t, area.Gu, res.Area.Granularity)

	// Other gu shapes follow the layer rule.
	assert.False(t, f.shape(t, area.Gu, areatest.Junggu).Attached())
	assert.True(t, f.shape(t, area.Dong, areatest.Sajik).Attached())
}

func TestNavigate_DongIsNotPinned(t *testing.T) {
	f := newFixture(t)

	_, err := f.nav.Navigate(Query{Type: QueryDong, Data: areatest.Sajik})
	require.NoError(t, err)
	assert.Nil(t, f.layers.Pinned(), "the fine layer is already shown at the dong jump level")

	require.NoError(t, f.view.SetZoom(10))
	assert.False(t, f.shape(t, area.Dong, areatest.Sajik).Attached())
	assert.True(t, f.shape(t, area.Gu, areatest.Jongno).Attached())
}

func TestNavigate_GuPinReleasedOnZoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.nav.Navigate(Query{Type: QueryGu, Data: areatest.Jongno})
	require.NoError(t, err)
	target := f.shape(t, area.Gu, areatest.Jongno)
	require.Same(t, target, f.layers.Pinned())

	require.NoError(t, f.view.SetZoom(5))
	assert.Nil(t, f.layers.Pinned())
	assert.False(t, target.Attached())
	assert.False(t, f.eng.OnScreen(target.OverlayID()))
	assert.Same(t, target, f.sel.State().Highlighted(), "zooming away keeps the selection")
}

func TestNavigate_NextQueryReplacesPin(t *testing.T) {
	f := newFixture(t)

	_, err := f.nav.Navigate(Query{Type: QueryGu, Data: areatest.Jongno})
	require.NoError(t, err)
	_, err = f.nav.Navigate(Query{Type: QueryDong, Data: areatest.Sogong})
	require.NoError(t, err)

	assert.Nil(t, f.layers.Pinned())
	assert.False(t, f.shape(t, area.Gu, areatest.Jongno).Attached())
	assert.Equal(t, 5, f.view.Level())
}

func TestNavigate_UnknownCode(t *testing.T) {
	f := newFixture(t)
	s := f.shape(t, area.Dong, areatest.Sajik)
	f.sel.Select(s)
	before := f.sel.State()
	level := f.view.Level()

	res, err := f.nav.Navigate(Query{Type: QueryDong, Data: "9999999999"})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, before, f.sel.State())
	assert.Equal(t, level, f.view.Level())
	assert.Nil(t, f.view.Bounds())
}

func TestNavigate_WrongLayer(t *testing.T) {
	f := newFixture(t)

	res, err := f.nav.Navigate(Query{Type: QueryGu, Data: areatest.Sajik})
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestNavigate_BadType(t *testing.T) {
	f := newFixture(t)

	_, err := f.nav.Navigate(Query{Type: "bogus", Data: areatest.Sajik})
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestNavigate_CompareMode(t *testing.T) {
	f := newFixture(t)
	base := f.shape(t, area.Dong, areatest.Sajik)
	f.sel.Select(base)
	require.True(t, f.sel.Coordinator().Enter())

	res, err := f.nav.Navigate(Query{Type: QueryDong, Data: areatest.Sogong})
	require.NoError(t, err)
	assert.True(t, res.Selected)

	target := f.shape(t, area.Dong, areatest.Sogong)
	st := f.sel.State()
	assert.Same(t, base, st.Base())
	assert.Same(t, target, st.Compare())
	assert.Equal(t, layer.CompareStyle, target.Style())
	assert.Equal(t, layer.HighlightStyle, base.Style())
}

func TestNavigate_SelfCompareIsNoop(t *testing.T) {
	f := newFixture(t)
	base := f.shape(t, area.Dong, areatest.Sajik)
	f.sel.Select(base)
	require.True(t, f.sel.Coordinator().Enter())
	level := f.view.Level()

	res, err := f.nav.Navigate(Query{Type: QueryDong, Data: areatest.Sajik})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.False(t, res.Selected)
	assert.Nil(t, f.sel.State().Compare())
	assert.Equal(t, level, f.view.Level())
	assert.Nil(t, f.view.Bounds())
	assert.Nil(t, f.layers.Pinned())
}
