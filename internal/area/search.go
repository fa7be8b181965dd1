package area

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeName folds a display name for matching. Boundary files exported on
// macOS often carry decomposed (NFD) Hangul, so both sides are composed first.
func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(norm.NFC.String(s)), " "))
}

// Search returns features whose display name or code contains q, fine units
// first. An empty granularity searches both collections. limit <= 0 means no
// limit.
func (d *Dataset) Search(q string, g Granularity, limit int) []*Feature {
	needle := normalizeName(q)
	if needle == "" {
		return nil
	}

	var out []*Feature
	for _, level := range []Granularity{Dong, Gu} {
		if g != "" && g != level {
			continue
		}
		for _, f := range d.Features(level) {
			if strings.Contains(normalizeName(f.Name), needle) || strings.Contains(strings.ToLower(f.Code), needle) {
				out = append(out, f)
				if limit > 0 && len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}
