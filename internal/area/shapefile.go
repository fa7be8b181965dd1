package area

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Attribute columns read from boundary shapefiles, in preference order.
var (
	shpCodeColumns = []string{"adm_cd", "adm_dr_cd", "sig_cd", "code"}
	shpNameColumns = []string{"adm_nm", "adm_dr_nm", "sig_kor_nm", "name"}
)

// LoadShapefile reads polygon boundaries from a shapefile. Coordinates must
// already be WGS84 longitude/latitude. Only the first part of each polygon is
// kept as its boundary path.
func LoadShapefile(shpPath string, g Granularity) ([]*Feature, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "area: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(cols []string) string {
		for _, col := range cols {
			idx, ok := fieldIdx[col]
			if !ok {
				continue
			}
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val != "" {
				return val
			}
		}
		return ""
	}

	var features []*Feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}
		path := firstPart(poly)
		if len(path) < 3 {
			skipped++
			continue
		}

		code := attr(shpCodeColumns)
		name := attr(shpNameColumns)
		features = append(features, &Feature{
			Code:        featureCode(g, code, code, name),
			Name:        name,
			Granularity: g,
			Path:        path,
		})
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "area: read shapefile %s", shpPath)
	}

	if skipped > 0 {
		zap.L().Debug("area: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	return features, nil
}

func firstPart(p *shp.Polygon) []LatLng {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}

	path := make([]LatLng, 0, end-p.Parts[0])
	for j := p.Parts[0]; j < end; j++ {
		path = append(path, LatLng{Lat: p.Points[j].Y, Lng: p.Points[j].X})
	}
	return path
}
