// Package area holds the static administrative-area boundaries shown on the map.
package area

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Granularity is the geographic level of an area unit.
type Granularity string

const (
	// Dong is the fine, neighborhood-level unit.
	Dong Granularity = "dong"
	// Gu is the coarse, district-level unit.
	Gu Granularity = "gu"
)

// ErrUnknownGranularity is returned when a granularity name is not dong or gu.
var ErrUnknownGranularity = eris.New("area: unknown granularity")

// ParseGranularity parses "dong" or "gu" (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case Dong:
		return Dong, nil
	case Gu:
		return Gu, nil
	default:
		return "", eris.Wrapf(ErrUnknownGranularity, "area: parse %q", s)
	}
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Feature is one administrative area. Features are immutable once loaded.
type Feature struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Granularity Granularity `json:"granularity"`
	Path        []LatLng    `json:"path"`
}

// Validate checks that the feature can be rendered.
func (f *Feature) Validate() error {
	if f.Code == "" {
		return eris.Errorf("area: %s feature %q has no code", f.Granularity, f.Name)
	}
	if len(f.Path) < 3 {
		return eris.Errorf("area: %s feature %s has %d boundary points, need at least 3",
			f.Granularity, f.Code, len(f.Path))
	}
	return nil
}

// Dataset is the pair of fine and coarse collections.
type Dataset struct {
	dong    []*Feature
	gu      []*Feature
	dongIdx map[string]*Feature
	guIdx   map[string]*Feature
}

// NewDataset validates and indexes the two collections. Codes must be unique
// within a granularity.
func NewDataset(dong, gu []*Feature) (*Dataset, error) {
	ds := &Dataset{
		dong:    dong,
		gu:      gu,
		dongIdx: make(map[string]*Feature, len(dong)),
		guIdx:   make(map[string]*Feature, len(gu)),
	}
	if err := index(ds.dongIdx, dong, Dong); err != nil {
		return nil, err
	}
	if err := index(ds.guIdx, gu, Gu); err != nil {
		return nil, err
	}
	return ds, nil
}

func index(idx map[string]*Feature, features []*Feature, g Granularity) error {
	for _, f := range features {
		if f.Granularity != g {
			return eris.Errorf("area: feature %s is %s, expected %s", f.Code, f.Granularity, g)
		}
		if err := f.Validate(); err != nil {
			return err
		}
		if _, dup := idx[f.Code]; dup {
			return eris.Errorf("area: duplicate %s code %s", g, f.Code)
		}
		idx[f.Code] = f
	}
	return nil
}

// Features returns the collection for a granularity in load order.
func (d *Dataset) Features(g Granularity) []*Feature {
	switch g {
	case Dong:
		return d.dong
	case Gu:
		return d.gu
	default:
		return nil
	}
}

// Lookup finds a feature by granularity and code.
func (d *Dataset) Lookup(g Granularity, code string) (*Feature, bool) {
	var f *Feature
	var ok bool
	switch g {
	case Dong:
		f, ok = d.dongIdx[code]
	case Gu:
		f, ok = d.guIdx[code]
	}
	return f, ok
}

// Len returns the number of features at a granularity.
func (d *Dataset) Len(g Granularity) int {
	return len(d.Features(g))
}
