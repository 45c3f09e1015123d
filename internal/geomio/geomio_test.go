package geomio

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

const sampleGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"name": "area"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[-43.2, -22.9], [-43.1, -22.9], [-43.1, -22.8], [-43.2, -22.8], [-43.2, -22.9]]]
			}
		}
	]
}`

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Folder>
      <Placemark>
        <name>site</name>
        <Point><coordinates>-43.15,-22.85,0</coordinates></Point>
      </Placemark>
      <Placemark>
        <Polygon>
          <outerBoundaryIs><LinearRing>
            <coordinates>
              -43.2,-22.9 -43.1,-22.9 -43.1,-22.8 -43.2,-22.9
            </coordinates>
          </LinearRing></outerBoundaryIs>
        </Polygon>
      </Placemark>
    </Folder>
  </Document>
</kml>`

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="-22.85" lon="-43.15"><name>wp1</name></wpt>
  <trk><trkseg>
    <trkpt lat="-22.90" lon="-43.20"></trkpt>
    <trkpt lat="-22.89" lon="-43.19"></trkpt>
  </trkseg></trk>
</gpx>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeZip(t *testing.T, dir, name string, members map[string][]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for member, data := range members {
		mw, err := w.Create(member)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := mw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeShapefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "points.shp")
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(&shp.Point{X: -43.2, Y: -22.9})
	w.Write(&shp.Point{X: -43.1, Y: -22.8})
	w.Close()
	return path
}

func newTestLoader() *Loader {
	return NewLoader(zerolog.Nop())
}

func TestDetectKind(t *testing.T) {
	cases := map[string]string{
		"area.shp":     KindShapefile,
		"area.ZIP":     KindShapefile,
		"doc.kml":      KindKML,
		"doc.kmz":      KindKMZ,
		"data.geojson": KindGeoJSON,
		"data.json":    KindGeoJSON,
		"track.gpx":    KindGPX,
		"notes.txt":    "",
	}
	for name, want := range cases {
		if got := DetectKind(name); got != want {
			t.Errorf("DetectKind(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestLoadGeoJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "area.geojson", sampleGeoJSON)

	s, err := newTestLoader().Load(context.Background(), path, KindGeoJSON, "area.geojson")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(s.Features))
	}
	if s.CRS != geoset.CRSWGS84 {
		t.Fatalf("crs = %q", s.CRS)
	}
	if _, ok := s.Features[0].Geometry.(orb.Polygon); !ok {
		t.Fatalf("geometry type = %T, want Polygon", s.Features[0].Geometry)
	}
}

func TestLoadKML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.kml", sampleKML)

	s, err := newTestLoader().Load(context.Background(), path, KindKML, "doc.kml")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}
}

func TestLoadKMLNoPlacemarks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.kml",
		`<?xml version="1.0"?><kml xmlns="http://www.opengis.net/kml/2.2"><Document></Document></kml>`)

	_, err := newTestLoader().Load(context.Background(), path, KindKML, "empty.kml")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
}

func TestLoadGPX(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "track.gpx", sampleGPX)

	s, err := newTestLoader().Load(context.Background(), path, KindGPX, "track.gpx")
	if err != nil {
		t.Fatal(err)
	}
	// One waypoint plus one track segment line.
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}
}

func TestLoadKMZ(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, "doc.kmz", map[string][]byte{
		"doc.kml": []byte(sampleKML),
	})

	s, err := newTestLoader().Load(context.Background(), path, KindKMZ, "doc.kmz")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}
}

func TestLoadKMZWithoutKML(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, "doc.kmz", map[string][]byte{
		"readme.txt": []byte("nothing here"),
	})

	_, err := newTestLoader().Load(context.Background(), path, KindKMZ, "doc.kmz")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
	if fe.Kind != KindKMZ {
		t.Fatalf("kind = %q, want kmz", fe.Kind)
	}
}

func TestLoadShapefile(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir)

	s, err := newTestLoader().Load(context.Background(), path, KindShapefile, "points.shp")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}
	// No .prj sibling: the frame stays unset for Normalize to assume.
	if s.CRS != "" {
		t.Fatalf("crs = %q, want unset", s.CRS)
	}
}

func TestLoadZippedShapefile(t *testing.T) {
	dir := t.TempDir()
	shpPath := writeShapefile(t, dir)
	shpData, err := os.ReadFile(shpPath)
	if err != nil {
		t.Fatal(err)
	}
	shxData, err := os.ReadFile(filepath.Join(dir, "points.shx"))
	if err != nil {
		t.Fatal(err)
	}

	zipPath := writeZip(t, dir, "upload.bin", map[string][]byte{
		"points.shp": shpData,
		"points.shx": shxData,
	})

	// Stored path carries no .zip extension; the original name drives the
	// archive handling.
	s, err := newTestLoader().Load(context.Background(), zipPath, KindShapefile, "points.zip")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}
}

func TestLoadZipWithoutShapefile(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, "upload.zip", map[string][]byte{
		"notes.txt": []byte("no shapes"),
	})

	_, err := newTestLoader().Load(context.Background(), path, KindShapefile, "upload.zip")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
}

func TestLoadUnsupportedKind(t *testing.T) {
	_, err := newTestLoader().Load(context.Background(), "whatever", "dwg", "plan.dwg")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}
