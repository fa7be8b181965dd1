package layer

import "github.com/sells-group/district-map/internal/engine"

// Shape styles.
var (
	// DefaultStyle is an unselected fine or coarse shape: white wash, no stroke.
	DefaultStyle = engine.Style{
		FillColor:     "#fff",
		FillOpacity:   0.2,
		StrokeColor:   "#3065FA",
		StrokeWeight:  0,
		StrokeOpacity: 0.8,
	}

	// HighlightStyle marks the single selection and the compare base.
	HighlightStyle = engine.Style{
		FillColor:     "#09f",
		FillOpacity:   0.2,
		StrokeColor:   "#3065FA",
		StrokeWeight:  2,
		StrokeOpacity: 0.8,
	}

	// CompareStyle marks the compare target.
	CompareStyle = engine.Style{
		FillColor:     "red",
		FillOpacity:   0.2,
		StrokeColor:   "#3065FA",
		StrokeWeight:  2,
		StrokeOpacity: 0.8,
	}

	// BackgroundStyle is the always-on gu outline.
	BackgroundStyle = engine.Style{
		FillColor:     "#D9D9D9",
		FillOpacity:   0.2,
		StrokeColor:   "#000000",
		StrokeWeight:  3,
		StrokeOpacity: 0.2,
	}
)
