package geomio

import (
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// loadGeoJSON parses a GeoJSON FeatureCollection. GeoJSON coordinates are
// geographic by definition (RFC 7946), so the set is tagged canonical.
func loadGeoJSON(path string) (*geoset.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &FormatError{Kind: KindGeoJSON, Reason: err.Error()}
	}

	s := geoset.New(geoset.CRSWGS84)
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		s.Append(f.Geometry, map[string]interface{}(f.Properties))
	}
	return s, nil
}
