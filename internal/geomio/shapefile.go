package geomio

import (
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// loadShapefile reads a .shp and, when present, its sibling .dbf (attributes)
// and .prj (reference system). go-shp walks record headers inside the .shp
// itself, so a missing .shx index is tolerated. A missing .prj leaves the
// reference system unset.
func loadShapefile(path string) (*geoset.Set, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, &FormatError{Kind: KindShapefile, Reason: err.Error()}
	}
	defer r.Close()

	s := geoset.New(readPrjCRS(path))

	var fields []shp.Field
	hasDBF := siblingExists(path, ".dbf")
	if hasDBF {
		fields = r.Fields()
	}

	for r.Next() {
		n, shape := r.Shape()
		g := shapeToGeometry(shape)
		if g == nil {
			continue
		}
		var props map[string]interface{}
		if hasDBF && len(fields) > 0 {
			props = make(map[string]interface{}, len(fields))
			for i, f := range fields {
				props[f.String()] = r.ReadAttribute(n, i)
			}
		}
		s.Append(g, props)
	}
	if err := r.Err(); err != nil {
		return nil, &FormatError{Kind: KindShapefile, Reason: err.Error()}
	}
	if s.Empty() {
		return nil, &FormatError{Kind: KindShapefile, Reason: "no shapes found"}
	}
	return s, nil
}

func shapeToGeometry(shape shp.Shape) orb.Geometry {
	switch v := shape.(type) {
	case *shp.Point:
		return orb.Point{v.X, v.Y}
	case *shp.PointZ:
		return orb.Point{v.X, v.Y}
	case *shp.MultiPoint:
		mp := make(orb.MultiPoint, 0, len(v.Points))
		for _, p := range v.Points {
			mp = append(mp, orb.Point{p.X, p.Y})
		}
		return mp
	case *shp.PolyLine:
		ls := partsToLines(v.Parts, v.Points)
		if len(ls) == 1 {
			return ls[0]
		}
		return orb.MultiLineString(ls)
	case *shp.Polygon:
		poly := make(orb.Polygon, 0, len(v.Parts))
		for _, line := range partsToLines(v.Parts, v.Points) {
			poly = append(poly, closeRing(line))
		}
		return poly
	default:
		return nil
	}
}

// partsToLines splits a shapefile point array at the record's part offsets.
func partsToLines(parts []int32, points []shp.Point) []orb.LineString {
	out := make([]orb.LineString, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		ls := make(orb.LineString, 0, end-int(start))
		for _, p := range points[start:end] {
			ls = append(ls, orb.Point{p.X, p.Y})
		}
		out = append(out, ls)
	}
	return out
}

// readPrjCRS sniffs the sibling .prj WKT for the two frames the pipeline
// understands. Anything else is returned verbatim so the aggregator can log
// what it saw; a missing .prj means the reference system is unset.
func readPrjCRS(shpPath string) string {
	prj := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	data, err := os.ReadFile(prj)
	if err != nil {
		return ""
	}
	wkt := strings.ToUpper(string(data))
	switch {
	case strings.Contains(wkt, "3857") || strings.Contains(wkt, "WEB_MERCATOR") || strings.Contains(wkt, "PSEUDO-MERCATOR"):
		return geoset.CRSWebMercator
	case strings.Contains(wkt, "4326") || strings.Contains(wkt, "GCS_WGS_1984") || strings.Contains(wkt, `GEOGCS["WGS 84"`):
		return geoset.CRSWGS84
	default:
		return strings.TrimSpace(string(data))
	}
}

func siblingExists(shpPath, ext string) bool {
	p := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ext
	_, err := os.Stat(p)
	return err == nil
}
