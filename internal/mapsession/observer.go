package mapsession

import (
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/selection"
)

// logObserver writes selection reports to the session log.
type logObserver struct {
	id string
}

func (o logObserver) AreaSelected(a selection.SelectedArea) {
	zap.L().Info("mapsession: area selected",
		zap.String("session", o.id),
		zap.String("code", a.Code),
		zap.String("name", a.Name),
		zap.String("granularity", string(a.Granularity)),
		zap.Int64("computed_area", a.ComputedArea),
	)
}

func (o logObserver) ComparisonChanged(c selection.Comparison) {
	fields := []zap.Field{
		zap.String("session", o.id),
		zap.String("base", c.Base.Code),
	}
	if c.Compare != nil {
		fields = append(fields, zap.String("compare", c.Compare.Code))
	}
	zap.L().Info("mapsession: comparison changed", fields...)
}
