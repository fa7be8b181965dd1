package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/config"
)

const dongJSON = `[
  {"adm_cd": "1111053000", "name": "사직동", "path": [
    {"lat": 37.570, "lng": 126.960}, {"lat": 37.585, "lng": 126.960},
    {"lat": 37.585, "lng": 126.975}, {"lat": 37.570, "lng": 126.975}]}
]`

const guJSON = `[
  {"name": "서울특별시 종로구", "path": [
    {"lat": 37.570, "lng": 126.950}, {"lat": 37.600, "lng": 126.950},
    {"lat": 37.600, "lng": 127.000}, {"lat": 37.570, "lng": 127.000}]}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	dong := filepath.Join(dir, "dong.json")
	gu := filepath.Join(dir, "gu.json")
	require.NoError(t, os.WriteFile(dong, []byte(dongJSON), 0644))
	require.NoError(t, os.WriteFile(gu, []byte(guJSON), 0644))

	return &config.Config{
		Data: config.DataConfig{DongPath: dong, GuPath: gu},
		Map: config.MapConfig{
			CenterLat:       37.532527,
			CenterLng:       126.99049,
			Level:           6,
			MinLevel:        1,
			MaxLevel:        14,
			DongQueryLevel:  5,
			GuQueryLevel:    7,
			LoadTimeoutSecs: 3,
			LoadAttempts:    2,
			LoadBackoffMs:   50,
		},
		Server: config.ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
	}
}

func TestLoadDataset(t *testing.T) {
	ds, err := loadDataset(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 1, ds.Len(area.Dong))
	assert.Equal(t, 1, ds.Len(area.Gu))
	_, ok := ds.Lookup(area.Gu, "종로구")
	assert.True(t, ok)
}

func TestLoadDataset_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Data.GuPath = ""

	_, err := loadDataset(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.gu_path is required")
}

func TestSessionOptions(t *testing.T) {
	c := testConfig(t)
	c.Map.GuQueryLevel = 8

	opts := sessionOptions(c)
	assert.Equal(t, area.LatLng{Lat: 37.532527, Lng: 126.99049}, opts.View.Center)
	assert.Equal(t, 6, opts.View.Level)
	assert.Equal(t, 1, opts.View.MinLevel)
	assert.Equal(t, 14, opts.View.MaxLevel)
	assert.Equal(t, 5, opts.Levels.Dong)
	assert.Equal(t, 8, opts.Levels.Gu)
	assert.Equal(t, 3*time.Second, opts.LoadTimeout)
	assert.Equal(t, 2, opts.View.Retry.Attempts)
	assert.Equal(t, 50*time.Millisecond, opts.View.Retry.Backoff)
}
