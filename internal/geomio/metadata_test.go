package geomio

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

func TestExtractMetadata(t *testing.T) {
	s := geoset.New(geoset.CRSWGS84)
	s.Append(orb.Point{-43.2, -22.9}, nil)
	s.Append(orb.LineString{{-43.1, -22.8}, {-43.0, -22.7}}, nil)

	m := ExtractMetadata(s)
	if m.FeatureCount != 2 {
		t.Fatalf("count = %d, want 2", m.FeatureCount)
	}
	if m.GeometryType != "LineString, Point" {
		t.Fatalf("types = %q", m.GeometryType)
	}
	if m.BoundsWest != -43.2 || m.BoundsNorth != -22.7 {
		t.Fatalf("bounds = %+v", m)
	}
}

func TestValidateGeometryEmpty(t *testing.T) {
	err := ValidateGeometry(geoset.New(geoset.CRSWGS84))
	if !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("err = %v, want ErrNoGeometry", err)
	}
}

func TestValidateGeometryOK(t *testing.T) {
	s := geoset.New(geoset.CRSWGS84)
	s.Append(orb.Point{-43.2, -22.9}, nil)
	if err := ValidateGeometry(s); err != nil {
		t.Fatal(err)
	}
}
