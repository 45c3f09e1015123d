// Package refdata supplies the national and first-level administrative
// boundary polygons used as greyed-out context backdrops. The dataset is an
// external GeoJSON file fetched once per process and cached; failing to
// obtain it degrades the context insets, it never fails a render job.
package refdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-maps/internal/geoset"
)

// DefaultBoundariesURL is the state-boundary dataset for Brazil used by the
// location-map product.
const DefaultBoundariesURL = "https://raw.githubusercontent.com/codeforamerica/click_that_hood/master/public/data/brazil-states.geojson"

const fetchTimeout = 15 * time.Second

// Provider fetches and caches the boundary dataset.
type Provider struct {
	url       string
	localPath string
	client    *http.Client
	cache     *gocache.Cache
	log       zerolog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithURL overrides the dataset URL.
func WithURL(url string) Option {
	return func(p *Provider) { p.url = url }
}

// WithLocalFile makes the provider read a pre-bundled dataset from disk
// before trying the network.
func WithLocalFile(path string) Option {
	return func(p *Provider) { p.localPath = path }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// NewProvider creates a boundary provider.
func NewProvider(log zerolog.Logger, opts ...Option) *Provider {
	p := &Provider{
		url:    DefaultBoundariesURL,
		client: &http.Client{Timeout: fetchTimeout},
		cache:  gocache.New(gocache.NoExpiration, 0),
		log:    log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Boundaries returns the administrative boundary set in the canonical frame.
// The parsed set is cached for the life of the process; the dataset is static.
func (p *Provider) Boundaries(ctx context.Context) (*geoset.Set, error) {
	if cached, ok := p.cache.Get(p.url); ok {
		return cached.(*geoset.Set), nil
	}

	data, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching boundary data: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing boundary data: %w", err)
	}

	s := geoset.New(geoset.CRSWGS84)
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		s.Append(f.Geometry, map[string]interface{}(f.Properties))
	}
	p.cache.Set(p.url, s, gocache.NoExpiration)
	return s, nil
}

// SaveLocal downloads the dataset and writes it to path, validating it
// parses first. Used to pre-bundle boundaries for air-gapped runs.
func (p *Provider) SaveLocal(ctx context.Context, path string) error {
	data, err := p.fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching boundary data: %w", err)
	}
	if _, err := geojson.UnmarshalFeatureCollection(data); err != nil {
		return fmt.Errorf("parsing boundary data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating boundary directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing boundary file: %w", err)
	}
	return nil
}

// fetch reads the local bundle when configured, otherwise downloads the
// dataset with a few bounded retries.
func (p *Provider) fetch(ctx context.Context) ([]byte, error) {
	if p.localPath != "" {
		data, err := os.ReadFile(p.localPath)
		if err == nil {
			return data, nil
		}
		p.log.Warn().Err(err).Str("path", p.localPath).Msg("local boundary file unreadable, falling back to network")
	}

	var data []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		data, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return data, nil
}
