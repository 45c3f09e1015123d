// Package geoset holds the in-memory geometry model shared by the loading and
// rendering pipeline. A Set is an ordered collection of features plus a
// coordinate reference system tag; once normalized, every geometry in a Set is
// in the canonical geographic frame (EPSG:4326 degrees).
//
// Uses paulmach/orb for geometry math.
package geoset

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"github.com/rs/zerolog"
)

// Reference system tags used across the pipeline.
const (
	// CRSWGS84 is the canonical geographic frame (degrees).
	CRSWGS84 = "EPSG:4326"
	// CRSWebMercator is the projected frame used for panel framing (meters).
	CRSWebMercator = "EPSG:3857"
)

// Feature is one geometry plus the attributes it was loaded with.
type Feature struct {
	Geometry   orb.Geometry
	Properties map[string]interface{}
}

// Set is an ordered sequence of features sharing one reference system.
// CRS is empty when the source file carried no reference system information.
type Set struct {
	Features []Feature
	CRS      string
}

// New returns an empty set tagged with the given reference system.
func New(crs string) *Set {
	return &Set{CRS: crs}
}

// Append adds a feature to the set.
func (s *Set) Append(g orb.Geometry, props map[string]interface{}) {
	if g == nil {
		return
	}
	s.Features = append(s.Features, Feature{Geometry: g, Properties: props})
}

// Empty reports whether the set contains no features.
func (s *Set) Empty() bool {
	return len(s.Features) == 0
}

// Collection returns all geometries as a single orb.Collection.
func (s *Set) Collection() orb.Collection {
	c := make(orb.Collection, 0, len(s.Features))
	for _, f := range s.Features {
		c = append(c, f.Geometry)
	}
	return c
}

// Bound returns the combined bounding box of every feature, in the set's
// reference system. The zero bound is returned for an empty set.
func (s *Set) Bound() orb.Bound {
	if s.Empty() {
		return orb.Bound{}
	}
	b := s.Features[0].Geometry.Bound()
	for _, f := range s.Features[1:] {
		b = b.Union(f.Geometry.Bound())
	}
	return b
}

// Centroid returns the centroid of the union of all geometries, weighted by
// area where area exists. It is not the bounding-box midpoint.
func (s *Set) Centroid() orb.Point {
	if s.Empty() {
		return orb.Point{}
	}
	c, _ := planar.CentroidArea(s.Collection())
	return c
}

// Project returns a copy of the set with every geometry passed through proj
// and the CRS retagged. Geometries are cloned first: orb projections mutate
// in place and the caller's set must stay usable.
func (s *Set) Project(proj orb.Projection, crs string) *Set {
	out := &Set{CRS: crs, Features: make([]Feature, 0, len(s.Features))}
	for _, f := range s.Features {
		g := orb.Clone(f.Geometry)
		out.Features = append(out.Features, Feature{
			Geometry:   project.Geometry(g, proj),
			Properties: f.Properties,
		})
	}
	return out
}

// Normalize returns the set expressed in the canonical geographic frame.
//
// A set with no reference system is assumed to already be canonical (logged,
// not an error). Web Mercator sets are reprojected. Any other tag is logged
// and treated the same as an absent one; the pipeline only ever produces
// these two frames.
func Normalize(s *Set, log zerolog.Logger) *Set {
	switch s.CRS {
	case CRSWGS84:
		return s
	case CRSWebMercator:
		return s.Project(project.Mercator.ToWGS84, CRSWGS84)
	case "":
		log.Warn().Msg("reference system not set, assuming EPSG:4326")
	default:
		log.Warn().Str("crs", s.CRS).Msg("unrecognized reference system, assuming EPSG:4326")
	}
	out := *s
	out.CRS = CRSWGS84
	return &out
}

// ToMercator returns a canonical set reprojected into the metric frame used
// for panel framing and margin math.
func ToMercator(s *Set) *Set {
	return s.Project(project.WGS84.ToMercator, CRSWebMercator)
}
