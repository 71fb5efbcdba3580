package boundary

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/EmpoweredVote/constituency-core/internal/config"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrNoPath = errors.New("boundary file path not configured")

// LoadFile reads a GeoJSON FeatureCollection from path.
func LoadFile(kind Kind, path string, keys config.PropertyKeys) (*Collection, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s: %w", kind, ErrNoPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s boundaries: %w", kind, err)
	}
	c, err := Parse(kind, data, keys)
	if err != nil {
		return nil, err
	}
	c.Source = path
	return c, nil
}

// Parse maps a raw FeatureCollection into a Collection. Every feature must
// carry a polygonal geometry and a non-empty value for one of the candidate
// state and name keys; the first offending feature fails the whole load.
func Parse(kind Kind, data []byte, keys config.PropertyKeys) (*Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s boundaries: %w", kind, err)
	}

	out := &Collection{
		Kind:     kind,
		Features: make([]Feature, 0, len(fc.Features)),
	}
	for i, f := range fc.Features {
		state, err := requiredProperty(f.Properties, keys.State)
		if err != nil {
			return nil, fmt.Errorf("%s feature %d: state: %w", kind, i, err)
		}
		name, err := requiredProperty(f.Properties, keys.Name)
		if err != nil {
			return nil, fmt.Errorf("%s feature %d (%s): name: %w", kind, i, state, err)
		}

		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("%s feature %d (%s/%s): unsupported geometry %T", kind, i, state, name, f.Geometry)
		}

		out.Features = append(out.Features, Feature{
			State:    state,
			Name:     name,
			Geometry: f.Geometry,
			Bound:    f.Geometry.Bound(),
		})
	}
	return out, nil
}

func requiredProperty(props geojson.Properties, candidates []string) (string, error) {
	for _, k := range candidates {
		v, ok := props[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("missing property (tried %s)", strings.Join(candidates, ", "))
}
