package geomio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// Metadata summarizes a loaded file for the uploaded-file record.
type Metadata struct {
	GeometryType     string
	CoordinateSystem string
	BoundsWest       float64
	BoundsSouth      float64
	BoundsEast       float64
	BoundsNorth      float64
	FeatureCount     int
}

// ExtractMetadata computes the summary stored alongside an uploaded file.
func ExtractMetadata(s *geoset.Set) Metadata {
	types := map[string]bool{}
	for _, f := range s.Features {
		types[f.Geometry.GeoJSONType()] = true
	}
	names := make([]string, 0, len(types))
	for t := range types {
		names = append(names, t)
	}
	sort.Strings(names)

	crs := s.CRS
	if crs == "" {
		crs = "unset"
	}

	b := s.Bound()
	return Metadata{
		GeometryType:     strings.Join(names, ", "),
		CoordinateSystem: crs,
		BoundsWest:       b.Min[0],
		BoundsSouth:      b.Min[1],
		BoundsEast:       b.Max[0],
		BoundsNorth:      b.Max[1],
		FeatureCount:     len(s.Features),
	}
}

// ValidateGeometry rejects sets with no usable geometry. Degenerate features
// (empty bounds) are counted but only fatal when nothing else remains.
func ValidateGeometry(s *geoset.Set) error {
	if s.Empty() {
		return fmt.Errorf("%w: file contains no features", ErrNoGeometry)
	}
	valid := 0
	for _, f := range s.Features {
		b := f.Geometry.Bound()
		if b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] {
			valid++
		}
	}
	if valid == 0 {
		return fmt.Errorf("%w: all %d features are degenerate", ErrNoGeometry, len(s.Features))
	}
	return nil
}
