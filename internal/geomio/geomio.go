// Package geomio reads uploaded vector files (Shapefile, KML, KMZ, GeoJSON,
// GPX, plus ZIP-wrapped Shapefiles) into geoset.Set values in their native
// reference frame. Archive extraction happens in a per-call scratch directory
// that is always removed before Load returns.
package geomio

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// Supported file kinds, matching the values stored on uploaded-file records.
const (
	KindShapefile = "shp"
	KindKML       = "kml"
	KindKMZ       = "kmz"
	KindGeoJSON   = "geojson"
	KindGPX       = "gpx"
)

// ErrUnsupportedFormat is returned when a declared file kind is outside the
// supported set. It is fatal to that file's load only.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoGeometry is returned by ValidateGeometry when a file holds nothing
// renderable.
var ErrNoGeometry = errors.New("no valid geometry")

// FormatError reports an archive that is missing its expected inner file,
// or a file whose content cannot be parsed as its declared kind.
type FormatError struct {
	Kind   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s file: %s", e.Kind, e.Reason)
}

// Loader reads uploaded files into geometry sets.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

// DetectKind maps a filename extension to a file kind, or "" when unknown.
func DetectKind(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".shp", ".zip":
		return KindShapefile
	case ".kml":
		return KindKML
	case ".kmz":
		return KindKMZ
	case ".geojson", ".json":
		return KindGeoJSON
	case ".gpx":
		return KindGPX
	default:
		return ""
	}
}

// Load reads one file into a set in its native reference frame.
//
// KMZ archives and ZIP-wrapped Shapefiles are extracted to a scratch
// directory that is removed on every exit path. The original filename is
// needed to recognize a ZIP-wrapped Shapefile upload, whose stored path may
// not carry the .zip extension.
func (l *Loader) Load(ctx context.Context, path, kind, originalName string) (*geoset.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch kind {
	case KindKMZ:
		return l.loadFromArchive(path, ".kml", KindKMZ, loadKML)
	case KindShapefile:
		if strings.HasSuffix(strings.ToLower(originalName), ".zip") {
			return l.loadFromArchive(path, ".shp", KindShapefile, loadShapefile)
		}
		return loadShapefile(path)
	case KindKML:
		return loadKML(path)
	case KindGeoJSON:
		return loadGeoJSON(path)
	case KindGPX:
		return loadGPX(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}
}

// loadFromArchive extracts path into a scratch directory, locates the first
// member with the wanted extension and parses it. The scratch directory is
// removed before returning, success or failure.
func (l *Loader) loadFromArchive(path, wantExt, kind string, parse func(string) (*geoset.Set, error)) (*geoset.Set, error) {
	scratch, err := os.MkdirTemp("", "plat-maps-extract-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			l.log.Warn().Err(rmErr).Str("dir", scratch).Msg("failed to remove scratch directory")
		}
	}()

	if err := extractZip(path, scratch); err != nil {
		return nil, &FormatError{Kind: kind, Reason: err.Error()}
	}

	inner, err := findByExt(scratch, wantExt)
	if err != nil {
		return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("no %s member found in archive", wantExt)}
	}

	return parse(inner)
}

// extractZip unpacks a ZIP archive into dir, flattening nothing: member paths
// are preserved so Shapefile siblings (.shx/.dbf/.prj) stay next to the .shp.
func extractZip(path, dir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		name := filepath.Clean(f.Name)
		if name == ".." || strings.HasPrefix(name, ".."+string(os.PathSeparator)) {
			continue
		}
		dst := filepath.Join(dir, name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := copyZipMember(f, dst); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func copyZipMember(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// findByExt walks dir and returns the first regular file whose name ends in
// ext (case insensitive).
func findByExt(dir, ext string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found != "" || d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", os.ErrNotExist
	}
	return found, nil
}
