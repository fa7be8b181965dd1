package area

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// record is one entry of the dong.json / gu.json boundary files.
type record struct {
	AdmCode string   `json:"adm_cd"`
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Path    []LatLng `json:"path"`
}

// LoadJSON reads a JSON array of boundary records.
func LoadJSON(r io.Reader, g Granularity) ([]*Feature, error) {
	var recs []record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, eris.Wrapf(err, "area: decode %s json", g)
	}

	features := make([]*Feature, 0, len(recs))
	for _, rec := range recs {
		features = append(features, &Feature{
			Code:        featureCode(g, rec.AdmCode, rec.Code, rec.Name),
			Name:        strings.TrimSpace(rec.Name),
			Granularity: g,
			Path:        rec.Path,
		})
	}
	return features, nil
}

// LoadGeoJSON reads a FeatureCollection of Polygon or MultiPolygon features.
// Only the outer ring of the first polygon is kept.
func LoadGeoJSON(r io.Reader, g Granularity) ([]*Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrapf(err, "area: read %s geojson", g)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "area: decode %s geojson", g)
	}

	features := make([]*Feature, 0, len(fc.Features))
	var skipped int
	for _, gf := range fc.Features {
		path := outerRing(gf.Geometry)
		if path == nil {
			skipped++
			continue
		}
		name := stringProp(gf.Properties, "name", "adm_nm")
		code := featureCode(g, stringProp(gf.Properties, "adm_cd"), firstNonEmpty(stringProp(gf.Properties, "code"), gf.ID), name)
		features = append(features, &Feature{
			Code:        code,
			Name:        name,
			Granularity: g,
			Path:        path,
		})
	}

	if skipped > 0 {
		zap.L().Debug("area: skipped non-polygon geojson features",
			zap.String("granularity", string(g)),
			zap.Int("skipped", skipped),
		)
	}
	return features, nil
}

// LoadFile loads a boundary collection, choosing the decoder by extension:
// .shp for shapefiles, .geojson for GeoJSON, anything else as record JSON.
func LoadFile(path string, g Granularity) ([]*Feature, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".shp" {
		return LoadShapefile(path, g)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "area: open %s", path)
	}
	defer func() { _ = f.Close() }()

	if ext == ".geojson" {
		return LoadGeoJSON(f, g)
	}
	return LoadJSON(f, g)
}

// LoadDataset loads the dong and gu collections concurrently and indexes them.
func LoadDataset(ctx context.Context, dongPath, guPath string) (*Dataset, error) {
	var dong, gu []*Feature

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		dong, err = LoadFile(dongPath, Dong)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		gu, err = LoadFile(guPath, Gu)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "area: load dataset")
	}

	ds, err := NewDataset(dong, gu)
	if err != nil {
		return nil, err
	}

	zap.L().Info("area: dataset loaded",
		zap.Int("dong", len(dong)),
		zap.Int("gu", len(gu)),
	)
	return ds, nil
}

// featureCode picks the identifier for a record. Dong units use the
// administrative code; gu units fall back to the district token of the full
// name ("서울특별시 종로구" -> "종로구").
func featureCode(g Granularity, admCode, code, name string) string {
	if g == Dong {
		return firstNonEmpty(strings.TrimSpace(admCode), strings.TrimSpace(code))
	}
	if c := strings.TrimSpace(code); c != "" {
		return c
	}
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return strings.TrimSpace(admCode)
	case 1:
		return fields[0]
	default:
		return fields[1]
	}
}

func outerRing(g geom.T) []LatLng {
	var poly *geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		poly = t
	case *geom.MultiPolygon:
		if t.NumPolygons() > 0 {
			poly = t.Polygon(0)
		}
	}
	if poly == nil || poly.NumLinearRings() == 0 {
		return nil
	}

	ring := poly.LinearRing(0)
	flat := ring.FlatCoords()
	stride := ring.Stride()
	path := make([]LatLng, 0, len(flat)/stride)
	for i := 0; i+1 < len(flat); i += stride {
		path = append(path, LatLng{Lat: flat[i+1], Lng: flat[i]})
	}
	return path
}

func stringProp(props map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return strings.TrimSpace(s)
				}
			case float64:
				return strconv.FormatFloat(s, 'f', -1, 64)
			}
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
