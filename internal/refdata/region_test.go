package refdata

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

func regionSet() *geoset.Set {
	s := geoset.New(geoset.CRSWGS84)
	s.Append(orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
		map[string]interface{}{"name": "Alpha"})
	s.Append(orb.Polygon{{{10, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 0}}},
		map[string]interface{}{"name": "Beta"})
	return s
}

func projectAt(pts ...orb.Point) *geoset.Set {
	s := geoset.New(geoset.CRSWGS84)
	for _, p := range pts {
		s.Append(p, nil)
	}
	return s
}

func TestContainingRegionPointInside(t *testing.T) {
	got := ContainingRegion(regionSet(), projectAt(orb.Point{15, 5}))
	if got == nil || got.Properties["name"] != "Beta" {
		t.Fatalf("region = %v, want Beta", got)
	}
}

func TestContainingRegionFirstMatchWins(t *testing.T) {
	// A project polygon straddling both regions resolves to the first one in
	// dataset order.
	s := geoset.New(geoset.CRSWGS84)
	s.Append(orb.Polygon{{{5, 4}, {15, 4}, {15, 6}, {5, 6}, {5, 4}}}, nil)

	got := ContainingRegion(regionSet(), s)
	if got == nil || got.Properties["name"] != "Alpha" {
		t.Fatalf("region = %v, want Alpha", got)
	}
}

func TestContainingRegionNoMatch(t *testing.T) {
	if got := ContainingRegion(regionSet(), projectAt(orb.Point{50, 50})); got != nil {
		t.Fatalf("region = %v, want nil", got)
	}
}

func TestContainingRegionNilInputs(t *testing.T) {
	if got := ContainingRegion(nil, projectAt(orb.Point{1, 1})); got != nil {
		t.Fatal("nil boundaries should yield nil")
	}
	if got := ContainingRegion(regionSet(), nil); got != nil {
		t.Fatal("nil project should yield nil")
	}
}
