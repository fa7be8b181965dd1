package area

import (
	"math"

	"github.com/twpayne/go-geom"
)

// earthRadiusM is the WGS84 equatorial radius in meters.
const earthRadiusM = 6378137.0

// Bounds is an axis-aligned latitude/longitude box.
type Bounds struct {
	SW LatLng `json:"sw"`
	NE LatLng `json:"ne"`
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SW.Lat + b.NE.Lat) / 2,
		Lng: (b.SW.Lng + b.NE.Lng) / 2,
	}
}

// Contains reports whether p lies inside or on the edge of the box.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat &&
		p.Lng >= b.SW.Lng && p.Lng <= b.NE.Lng
}

// Polygon returns the boundary as a closed go-geom polygon in (lng, lat) order.
func (f *Feature) Polygon() *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, closedRing(f.Path, func(p LatLng) (float64, float64) {
		return p.Lng, p.Lat
	}), []int{ringLen(f.Path) * 2})
}

// Bounds returns the bounding box of the boundary path.
func (f *Feature) Bounds() Bounds {
	b := f.Polygon().Bounds()
	return Bounds{
		SW: LatLng{Lat: b.Min(1), Lng: b.Min(0)},
		NE: LatLng{Lat: b.Max(1), Lng: b.Max(0)},
	}
}

// Area returns the area of the closed boundary in square meters.
//
// The path is projected onto a local equirectangular plane centered on its
// mean latitude, which is accurate to well under a percent at district scale.
func (f *Feature) Area() float64 {
	if len(f.Path) < 3 {
		return 0
	}
	var latSum float64
	for _, p := range f.Path {
		latSum += p.Lat
	}
	cosLat := math.Cos(radians(latSum / float64(len(f.Path))))

	flat := closedRing(f.Path, func(p LatLng) (float64, float64) {
		return earthRadiusM * radians(p.Lng) * cosLat, earthRadiusM * radians(p.Lat)
	})
	return math.Abs(geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).Area())
}

// closedRing flattens path into XY coordinates, repeating the first point at
// the end when the path is open.
func closedRing(path []LatLng, xy func(LatLng) (float64, float64)) []float64 {
	flat := make([]float64, 0, ringLen(path)*2)
	for _, p := range path {
		x, y := xy(p)
		flat = append(flat, x, y)
	}
	if len(path) > 0 && path[0] != path[len(path)-1] {
		x, y := xy(path[0])
		flat = append(flat, x, y)
	}
	return flat
}

func ringLen(path []LatLng) int {
	if len(path) > 0 && path[0] != path[len(path)-1] {
		return len(path) + 1
	}
	return len(path)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
