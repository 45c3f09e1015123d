package geoset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoValidData is returned when none of a project's files could be loaded.
var ErrNoValidData = errors.New("no valid geospatial data found in project")

// Source is one uploaded file to feed into the aggregation.
type Source struct {
	Path         string
	Kind         string
	OriginalName string
}

// LoadFunc loads a single file into a set in its native reference frame.
// It matches geomio.Loader.Load.
type LoadFunc func(ctx context.Context, path, kind, originalName string) (*Set, error)

// Aggregate loads every source, normalizes each to the canonical frame and
// concatenates the results into one project-level set.
//
// A file that fails to load is logged and skipped; the operation as a whole
// only fails (with ErrNoValidData, carrying the per-file load errors) when
// every file fails or the resulting set is empty. Insertion order across
// files carries no meaning.
func Aggregate(ctx context.Context, sources []Source, load LoadFunc, log zerolog.Logger) (*Set, error) {
	combined := New(CRSWGS84)
	var failures []string
	for _, src := range sources {
		s, err := load(ctx, src.Path, src.Kind, src.OriginalName)
		if err != nil {
			log.Warn().Err(err).Str("file", src.OriginalName).Msg("skipping file that failed to load")
			failures = append(failures, fmt.Sprintf("%s: %v", src.OriginalName, err))
			continue
		}
		s = Normalize(s, log)
		combined.Features = append(combined.Features, s.Features...)
	}
	if combined.Empty() {
		if len(failures) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoValidData, strings.Join(failures, "; "))
		}
		return nil, ErrNoValidData
	}
	return combined, nil
}
