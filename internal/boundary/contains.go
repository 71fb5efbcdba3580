package boundary

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ValidCoordinate reports whether lat/lng are within WGS84 range.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Contains tests a point against a feature. Polygons are tested against
// their outer ring only; multi-polygons against the outer ring of each part.
func (f *Feature) Contains(p orb.Point) bool {
	if !f.Bound.Contains(p) {
		return false
	}
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return len(g) > 0 && planar.RingContains(g[0], p)
	case orb.MultiPolygon:
		for _, poly := range g {
			if len(poly) > 0 && planar.RingContains(poly[0], p) {
				return true
			}
		}
	}
	return false
}

// Find returns the first feature in dataset order containing the point.
// Overlapping features resolve to whichever appears first in the file.
func (c *Collection) Find(lat, lng float64) (*Feature, bool) {
	if c == nil || !ValidCoordinate(lat, lng) {
		return nil, false
	}
	p := orb.Point{lng, lat}
	for i := range c.Features {
		if c.Features[i].Contains(p) {
			return &c.Features[i], true
		}
	}
	return nil, false
}

// Match is the containment result for both collections. Either side may be
// nil when no feature contains the point or the collection is unavailable.
type Match struct {
	Assembly      *Feature
	Parliamentary *Feature
}

func (m Match) Empty() bool {
	return m.Assembly == nil && m.Parliamentary == nil
}

// Locate runs containment against both collections independently.
func (d *Dataset) Locate(lat, lng float64) Match {
	if d == nil {
		return Match{}
	}
	var m Match
	if f, ok := d.Assembly.Find(lat, lng); ok {
		m.Assembly = f
	}
	if f, ok := d.Parliamentary.Find(lat, lng); ok {
		m.Parliamentary = f
	}
	return m
}

// Locate runs containment against the published dataset. Before a dataset
// is published, or if loading failed, the match is empty.
func Locate(lat, lng float64) Match {
	return Current().Locate(lat, lng)
}
