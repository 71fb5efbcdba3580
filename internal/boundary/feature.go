package boundary

import "github.com/paulmach/orb"

// Kind identifies which seat collection a feature belongs to.
type Kind string

const (
	Assembly      Kind = "assembly"
	Parliamentary Kind = "parliamentary"
)

// Feature is one electoral seat. Geometry is always an orb.Polygon or
// orb.MultiPolygon in (lng, lat) order; the loader rejects anything else.
type Feature struct {
	State    string
	Name     string
	Geometry orb.Geometry
	Bound    orb.Bound
}

// Collection is an ordered, read-only set of features. Order is the order
// of the source file and decides ties between overlapping features.
type Collection struct {
	Kind     Kind
	Source   string
	Features []Feature
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Features)
}
