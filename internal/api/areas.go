package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/district-map/internal/area"
)

const (
	defaultAreaLimit = 100
	maxAreaLimit     = 1000
)

type areaSummary struct {
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Granularity  area.Granularity `json:"granularity"`
	ComputedArea int64            `json:"computed_area"`
	Center       area.LatLng      `json:"center"`
	Bounds       area.Bounds      `json:"bounds"`
}

func summarize(f *area.Feature) areaSummary {
	b := f.Bounds()
	return areaSummary{
		Code:         f.Code,
		Name:         f.Name,
		Granularity:  f.Granularity,
		ComputedArea: int64(math.Floor(f.Area())),
		Center:       b.Center(),
		Bounds:       b,
	}
}

// handleListAreas serves GET /areas?type=&q=&limit=.
func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var g area.Granularity
	if raw := q.Get("type"); raw != "" {
		parsed, err := area.ParseGranularity(raw)
		if err != nil {
			writeErr(w, err)
			return
		}
		g = parsed
	}

	limit := defaultAreaLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxAreaLimit)
	}

	ds := s.sessions.Dataset()
	var features []*area.Feature
	if term := q.Get("q"); term != "" {
		features = ds.Search(term, g, limit)
	} else {
		for _, level := range []area.Granularity{area.Dong, area.Gu} {
			if g != "" && g != level {
				continue
			}
			features = append(features, ds.Features(level)...)
		}
		if len(features) > limit {
			features = features[:limit]
		}
	}

	out := make([]areaSummary, 0, len(features))
	for _, f := range features {
		out = append(out, summarize(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"areas": out,
		"count": len(out),
	})
}

// handleGetArea serves GET /areas/{type}/{code} as a GeoJSON feature.
func (s *Server) handleGetArea(w http.ResponseWriter, r *http.Request) {
	g, err := area.ParseGranularity(chi.URLParam(r, "type"))
	if err != nil {
		writeErr(w, err)
		return
	}
	code := chi.URLParam(r, "code")

	if cached := s.features.Get(g, code); cached != nil {
		writeGeoJSON(w, cached, "hit")
		return
	}

	f, ok := s.sessions.Dataset().Lookup(g, code)
	if !ok {
		writeError(w, http.StatusNotFound, "area not found")
		return
	}

	data, err := featureDocument(f)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.features.Put(g, code, data)
	writeGeoJSON(w, data, "miss")
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.features.Stats())
}

func featureDocument(f *area.Feature) ([]byte, error) {
	sum := summarize(f)
	feat := &geojson.Feature{
		ID:       f.Code,
		Geometry: f.Polygon(),
		Properties: map[string]any{
			"code":          sum.Code,
			"name":          sum.Name,
			"granularity":   string(sum.Granularity),
			"computed_area": sum.ComputedArea,
		},
	}
	data, err := json.Marshal(feat)
	if err != nil {
		return nil, eris.Wrapf(err, "api: encode area %s", f.Code)
	}
	return data, nil
}

func writeGeoJSON(w http.ResponseWriter, data []byte, cache string) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
