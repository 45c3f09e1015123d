package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

const boundariesJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"name": "Alpha"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]
			}
		},
		{
			"type": "Feature",
			"properties": {"name": "Beta"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[10, 0], [20, 0], [20, 10], [10, 10], [10, 0]]]
			}
		}
	]
}`

func TestBoundariesFetchAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(boundariesJSON))
	}))
	defer srv.Close()

	p := NewProvider(zerolog.Nop(), WithURL(srv.URL))

	s, err := p.Boundaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}

	if _, err := p.Boundaries(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1 (second call cached)", hits.Load())
	}
}

func TestBoundariesLocalFilePreferred(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.geojson")
	if err := os.WriteFile(path, []byte(boundariesJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network should not be consulted when the local file parses")
	}))
	defer srv.Close()

	p := NewProvider(zerolog.Nop(), WithURL(srv.URL), WithLocalFile(path))
	s, err := p.Boundaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}
}

func TestSaveLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boundariesJSON))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "bundle", "states.geojson")
	p := NewProvider(zerolog.Nop(), WithURL(srv.URL))
	if err := p.SaveLocal(context.Background(), dest); err != nil {
		t.Fatal(err)
	}

	// The saved file must itself be usable as a local bundle.
	p2 := NewProvider(zerolog.Nop(), WithLocalFile(dest), WithURL("http://127.0.0.1:1/unreachable"))
	s, err := p2.Boundaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(s.Features))
	}
}

func TestSaveLocalRejectsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("html error page"))
	}))
	defer srv.Close()

	p := NewProvider(zerolog.Nop(), WithURL(srv.URL))
	dest := filepath.Join(t.TempDir(), "states.geojson")
	if err := p.SaveLocal(context.Background(), dest); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := os.Stat(dest); err == nil {
		t.Fatal("invalid payload must not be written")
	}
}

func TestBoundariesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(zerolog.Nop(), WithURL(srv.URL))
	if _, err := p.Boundaries(context.Background()); err == nil {
		t.Fatal("expected error from failing server")
	}
}

func TestBoundariesBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not geojson"))
	}))
	defer srv.Close()

	p := NewProvider(zerolog.Nop(), WithURL(srv.URL))
	if _, err := p.Boundaries(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}
