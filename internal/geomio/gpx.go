package geomio

import (
	"github.com/paulmach/orb"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// loadGPX reads waypoints as points and routes/track segments as line
// strings. GPX is always WGS84 (GPX 1.1 schema).
func loadGPX(path string) (*geoset.Set, error) {
	doc, err := gpx.ParseFile(path)
	if err != nil {
		return nil, &FormatError{Kind: KindGPX, Reason: err.Error()}
	}

	s := geoset.New(geoset.CRSWGS84)

	for _, wp := range doc.Waypoints {
		props := map[string]interface{}{}
		if wp.Name != "" {
			props["name"] = wp.Name
		}
		s.Append(orb.Point{wp.Longitude, wp.Latitude}, props)
	}

	for _, rte := range doc.Routes {
		ls := make(orb.LineString, 0, len(rte.Points))
		for _, p := range rte.Points {
			ls = append(ls, orb.Point{p.Longitude, p.Latitude})
		}
		if len(ls) >= 2 {
			s.Append(ls, map[string]interface{}{"name": rte.Name})
		}
	}

	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			ls := make(orb.LineString, 0, len(seg.Points))
			for _, p := range seg.Points {
				ls = append(ls, orb.Point{p.Longitude, p.Latitude})
			}
			if len(ls) >= 2 {
				s.Append(ls, map[string]interface{}{"name": trk.Name})
			}
		}
	}

	if s.Empty() {
		return nil, &FormatError{Kind: KindGPX, Reason: "no waypoints, routes or tracks found"}
	}
	return s, nil
}
