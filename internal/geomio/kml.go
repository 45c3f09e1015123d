package geomio

import (
	"encoding/xml"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// KML documents nest placemarks inside arbitrarily deep folders; the structs
// below pull every placemark out regardless of depth. KML coordinates are
// always geographic WGS84 (OGC KML 2.2 §6.2).

type kmlRoot struct {
	Document kmlContainer `xml:"Document"`
	Folder   kmlContainer `xml:"Folder"`
}

type kmlContainer struct {
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name          string        `xml:"name"`
	Description   string        `xml:"description"`
	Point         *kmlPoint     `xml:"Point"`
	LineString    *kmlLine      `xml:"LineString"`
	Polygon       *kmlPolygon   `xml:"Polygon"`
	MultiGeometry *kmlMultiGeom `xml:"MultiGeometry"`
}

type kmlMultiGeom struct {
	Points      []kmlPoint   `xml:"Point"`
	LineStrings []kmlLine    `xml:"LineString"`
	Polygons    []kmlPolygon `xml:"Polygon"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlLine struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlBoundary struct {
	Ring struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"LinearRing"`
}

func loadKML(path string) (*geoset.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root kmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, &FormatError{Kind: KindKML, Reason: err.Error()}
	}

	s := geoset.New(geoset.CRSWGS84)
	collectPlacemarks(root.Document, s)
	collectPlacemarks(root.Folder, s)
	if s.Empty() {
		return nil, &FormatError{Kind: KindKML, Reason: "no placemark geometry found"}
	}
	return s, nil
}

func collectPlacemarks(c kmlContainer, s *geoset.Set) {
	for _, pm := range c.Placemarks {
		props := map[string]interface{}{}
		if pm.Name != "" {
			props["name"] = pm.Name
		}
		if pm.Description != "" {
			props["description"] = pm.Description
		}
		for _, g := range placemarkGeometries(pm) {
			s.Append(g, props)
		}
	}
	for _, sub := range c.Folders {
		collectPlacemarks(sub, s)
	}
}

func placemarkGeometries(pm kmlPlacemark) []orb.Geometry {
	var out []orb.Geometry
	if pm.Point != nil {
		if pts := parseKMLCoordinates(pm.Point.Coordinates); len(pts) > 0 {
			out = append(out, pts[0])
		}
	}
	if pm.LineString != nil {
		if pts := parseKMLCoordinates(pm.LineString.Coordinates); len(pts) >= 2 {
			out = append(out, orb.LineString(pts))
		}
	}
	if pm.Polygon != nil {
		if poly := parseKMLPolygon(*pm.Polygon); len(poly) > 0 {
			out = append(out, poly)
		}
	}
	if pm.MultiGeometry != nil {
		for _, p := range pm.MultiGeometry.Points {
			if pts := parseKMLCoordinates(p.Coordinates); len(pts) > 0 {
				out = append(out, pts[0])
			}
		}
		for _, l := range pm.MultiGeometry.LineStrings {
			if pts := parseKMLCoordinates(l.Coordinates); len(pts) >= 2 {
				out = append(out, orb.LineString(pts))
			}
		}
		for _, p := range pm.MultiGeometry.Polygons {
			if poly := parseKMLPolygon(p); len(poly) > 0 {
				out = append(out, poly)
			}
		}
	}
	return out
}

func parseKMLPolygon(p kmlPolygon) orb.Polygon {
	outer := parseKMLCoordinates(p.Outer.Ring.Coordinates)
	if len(outer) < 3 {
		return nil
	}
	poly := orb.Polygon{closeRing(outer)}
	for _, inner := range p.Inner {
		if pts := parseKMLCoordinates(inner.Ring.Coordinates); len(pts) >= 3 {
			poly = append(poly, closeRing(pts))
		}
	}
	return poly
}

func closeRing(pts []orb.Point) orb.Ring {
	r := orb.Ring(pts)
	if !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

// parseKMLCoordinates parses the KML coordinate tuple list "lon,lat[,alt]"
// separated by whitespace. Altitude is discarded.
func parseKMLCoordinates(raw string) []orb.Point {
	var pts []orb.Point
	for _, tuple := range strings.Fields(strings.TrimSpace(raw)) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts
}
