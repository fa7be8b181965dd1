package selection

import (
	"math"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/layer"
)

// SelectedArea describes a selected area to statistic panels. Panels treat
// Code as opaque and fetch their own data keyed on it.
type SelectedArea struct {
	Name         string           `json:"name"`
	Code         string           `json:"code"`
	Granularity  area.Granularity `json:"granularity"`
	ComputedArea int64            `json:"computed_area"`
}

// Describe builds a fresh descriptor for sh. ComputedArea is the boundary
// area in square meters, floored.
func Describe(sh *layer.Shape) SelectedArea {
	f := sh.Feature()
	return SelectedArea{
		Name:         f.Name,
		Code:         f.Code,
		Granularity:  f.Granularity,
		ComputedArea: int64(math.Floor(f.Area())),
	}
}

// Comparison is the pair of areas shown side by side. Compare is nil until a
// second area is picked.
type Comparison struct {
	Base    SelectedArea  `json:"base"`
	Compare *SelectedArea `json:"compare,omitempty"`
}

// Observer receives selection changes. Implementations must not call back
// into the selection subsystem.
type Observer interface {
	AreaSelected(a SelectedArea)
	ComparisonChanged(c Comparison)
}

// Observers fans out to every observer in order.
type Observers []Observer

// AreaSelected implements Observer.
func (o Observers) AreaSelected(a SelectedArea) {
	for _, obs := range o {
		obs.AreaSelected(a)
	}
}

// ComparisonChanged implements Observer.
func (o Observers) ComparisonChanged(c Comparison) {
	for _, obs := range o {
		obs.ComparisonChanged(c)
	}
}
