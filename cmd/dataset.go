package main

import (
	"context"
	"time"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/config"
	"github.com/sells-group/district-map/internal/engine"
	"github.com/sells-group/district-map/internal/mapsession"
	"github.com/sells-group/district-map/internal/navigator"
	"github.com/sells-group/district-map/internal/viewport"
)

// loadDataset reads both boundary collections named in the config.
func loadDataset(ctx context.Context, c *config.Config) (*area.Dataset, error) {
	if err := c.Validate("data"); err != nil {
		return nil, err
	}
	return area.LoadDataset(ctx, c.Data.DongPath, c.Data.GuPath)
}

// sessionOptions maps the map config onto session options.
func sessionOptions(c *config.Config) mapsession.Options {
	return mapsession.Options{
		View: viewport.Options{
			Center:   area.LatLng{Lat: c.Map.CenterLat, Lng: c.Map.CenterLng},
			Level:    c.Map.Level,
			MinLevel: c.Map.MinLevel,
			MaxLevel: c.Map.MaxLevel,
			Retry: engine.LoadPolicy{
				Attempts:   c.Map.LoadAttempts,
				Backoff:    c.Map.LoadBackoff(),
				MaxBackoff: 2 * time.Second,
				Jitter:     0.2,
			},
		},
		Levels: navigator.Levels{
			Dong: c.Map.DongQueryLevel,
			Gu:   c.Map.GuQueryLevel,
		},
		LoadTimeout: c.Map.LoadTimeout(),
	}
}
