package refdata

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// ContainingRegion returns the first boundary feature whose geometry
// intersects the project's combined geometry. Iteration order is the dataset
// order: when a project spans several regions, the first match decides which
// single region the state-level inset shows. Returns nil when nothing
// intersects.
func ContainingRegion(boundaries, projectSet *geoset.Set) *geoset.Feature {
	if boundaries == nil || projectSet == nil {
		return nil
	}
	for i := range boundaries.Features {
		region := &boundaries.Features[i]
		for _, f := range projectSet.Features {
			if geometryIntersects(f.Geometry, region.Geometry) {
				return region
			}
		}
	}
	return nil
}

// geometryIntersects checks whether g intersects a region polygon. The bound
// check is a quick rejection; the vertex and containment probes catch the
// cases where bounds overlap but the shapes do not.
func geometryIntersects(g, region orb.Geometry) bool {
	if !g.Bound().Intersects(region.Bound()) {
		return false
	}

	switch r := region.(type) {
	case orb.Polygon:
		return intersectsPolygon(g, r)
	case orb.MultiPolygon:
		for _, poly := range r {
			if intersectsPolygon(g, poly) {
				return true
			}
		}
		return false
	default:
		// Non-areal region geometry: trust the bound overlap.
		return true
	}
}

func intersectsPolygon(g orb.Geometry, poly orb.Polygon) bool {
	if !g.Bound().Intersects(poly.Bound()) {
		return false
	}

	switch v := g.(type) {
	case orb.Point:
		return planar.PolygonContains(poly, v)

	case orb.MultiPoint:
		for _, p := range v {
			if planar.PolygonContains(poly, p) {
				return true
			}
		}
		return false

	case orb.LineString:
		for _, p := range v {
			if planar.PolygonContains(poly, p) {
				return true
			}
		}
		return false

	case orb.MultiLineString:
		for _, ls := range v {
			if intersectsPolygon(ls, poly) {
				return true
			}
		}
		return false

	case orb.Polygon:
		// Any project vertex inside the region, or any region vertex inside
		// the project polygon (the region may sit fully inside it), or the
		// project centroid inside the region.
		for _, ring := range v {
			for _, p := range ring {
				if planar.PolygonContains(poly, p) {
					return true
				}
			}
		}
		if len(poly) > 0 {
			for _, p := range poly[0] {
				if planar.PolygonContains(v, p) {
					return true
				}
			}
		}
		c, _ := planar.CentroidArea(v)
		return planar.PolygonContains(poly, c)

	case orb.MultiPolygon:
		for _, sub := range v {
			if intersectsPolygon(sub, poly) {
				return true
			}
		}
		return false

	case orb.Collection:
		for _, sub := range v {
			if intersectsPolygon(sub, poly) {
				return true
			}
		}
		return false

	default:
		return true
	}
}
