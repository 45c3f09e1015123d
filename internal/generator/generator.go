// Package generator orchestrates map generation jobs: it loads a project's
// files, renders and composes the panels for a theme, and drives the job
// record through its status transitions.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-maps/internal/geomio"
	"github.com/joeblew999/plat-maps/internal/geoset"
	"github.com/joeblew999/plat-maps/internal/refdata"
	"github.com/joeblew999/plat-maps/internal/render"
	"github.com/joeblew999/plat-maps/internal/store"
)

// JobError identifies which job a generation failure belongs to. Its message
// is the underlying error's message verbatim, matching what the job record
// captures.
type JobError struct {
	MapID string
	Err   error
}

func (e *JobError) Error() string { return e.Err.Error() }

func (e *JobError) Unwrap() error { return e.Err }

// RendererFactory builds a renderer for a theme. Swappable so tests run
// offline.
type RendererFactory func(theme render.Theme) *render.Renderer

// Generator runs map generation jobs against a store.
type Generator struct {
	store     store.Store
	loader    *geomio.Loader
	refdata   *refdata.Provider
	renderer  RendererFactory
	fontPaths []string
	log       zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRefdata sets the administrative boundary provider. Without one, maps
// render without backdrops.
func WithRefdata(p *refdata.Provider) Option {
	return func(g *Generator) { g.refdata = p }
}

// WithRendererFactory overrides how renderers are built per theme.
func WithRendererFactory(f RendererFactory) Option {
	return func(g *Generator) { g.renderer = f }
}

// WithFontPaths puts extra font files at the front of the candidate chain
// used by the default renderer factory.
func WithFontPaths(paths ...string) Option {
	return func(g *Generator) {
		g.fontPaths = append(append([]string{}, paths...), g.fontPaths...)
	}
}

// New builds a Generator. By default renderers use the theme's tile
// providers with the resolved font chain.
func New(s store.Store, log zerolog.Logger, opts ...Option) *Generator {
	g := &Generator{
		store:     s,
		loader:    geomio.NewLoader(log),
		fontPaths: render.DefaultFontCandidates,
		log:       log,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.renderer == nil {
		fonts := render.ResolveFonts(g.fontPaths, log)
		g.renderer = func(theme render.Theme) *render.Renderer {
			return render.NewRenderer(theme, fonts, render.DefaultOptions(), log)
		}
	}
	return g
}

// Generate runs one job for the project and theme. The returned record is
// always persisted, terminal in completed or failed; on failure the error is
// also returned with the same message the record captured. Jobs never retry.
func (g *Generator) Generate(ctx context.Context, projectID, themeName string) (*store.GeneratedMap, error) {
	theme, err := render.ThemeByName(themeName)
	if err != nil {
		return nil, err
	}

	rec := &store.GeneratedMap{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Theme:     theme.Name,
		Status:    store.StatusPending,
	}
	if err := g.store.CreateMap(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating job record: %w", err)
	}

	log := g.log.With().Str("map_id", rec.ID).Str("project_id", projectID).Str("theme", theme.Name).Logger()
	log.Info().Msg("map generation started")

	if err := g.run(ctx, rec, theme, log); err != nil {
		rec.Status = store.StatusFailed
		rec.Error = err.Error()
		if uerr := g.store.UpdateMap(ctx, rec); uerr != nil {
			log.Error().Err(uerr).Msg("recording job failure")
		}
		log.Error().Err(err).Msg("map generation failed")
		return rec, &JobError{MapID: rec.ID, Err: err}
	}

	rec.Status = store.StatusCompleted
	if err := g.store.UpdateMap(ctx, rec); err != nil {
		return rec, fmt.Errorf("recording job completion: %w", err)
	}
	log.Info().Str("artifact", rec.ArtifactPath).Msg("map generation completed")
	return rec, nil
}

func (g *Generator) run(ctx context.Context, rec *store.GeneratedMap, theme render.Theme, log zerolog.Logger) error {
	// Configuration is checked while the job is still pending; a project
	// without one never reaches processing.
	styleCfg, err := g.store.Style(ctx, rec.ProjectID)
	if err != nil {
		return err
	}

	rec.Status = store.StatusProcessing
	if err := g.store.UpdateMap(ctx, rec); err != nil {
		return fmt.Errorf("marking job processing: %w", err)
	}

	files, err := g.store.Files(ctx, rec.ProjectID)
	if err != nil {
		return fmt.Errorf("listing project files: %w", err)
	}
	sources := make([]geoset.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, geoset.Source{Path: f.Path, Kind: f.Kind, OriginalName: f.OriginalName})
	}

	projectSet, err := geoset.Aggregate(ctx, sources, g.loader.Load, log)
	if err != nil {
		return err
	}
	projectSet = geoset.Normalize(projectSet, log)

	var boundaries *geoset.Set
	var region *geoset.Feature
	if g.refdata != nil {
		boundaries, err = g.refdata.Boundaries(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("boundary dataset unavailable, rendering without backdrop")
			boundaries = nil
		} else {
			region = refdata.ContainingRegion(boundaries, projectSet)
		}
	}

	style := render.Style{
		Title:          styleCfg.Title,
		Subtitle:       styleCfg.Subtitle,
		PrimaryColor:   styleCfg.PrimaryColor,
		SecondaryColor: styleCfg.SecondaryColor,
		ShowScale:      styleCfg.ShowScale,
		ShowNorthArrow: styleCfg.ShowNorthArrow,
		ShowLegend:     styleCfg.ShowLegend,
		AdditionalInfo: styleCfg.AdditionalInfo,
		LogoPath:       styleCfg.LogoPath,
	}

	r := g.renderer(theme)
	panels, err := r.RenderPanels(ctx, projectSet, boundaries, region, style)
	if err != nil {
		return err
	}
	rec.ScaleLabel = panels.Scale.Label

	final := r.Compose(panels, style)

	scratch, err := os.MkdirTemp("", "mapgen-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	filename := rec.ProjectID + theme.FileSuffix
	tmpPath := filepath.Join(scratch, filename)
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := render.EncodePNG(f, final); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("flushing output file: %w", err)
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("reopening output file: %w", err)
	}
	defer src.Close()

	artifactPath, err := g.store.SaveArtifact(ctx, src, filename)
	if err != nil {
		return fmt.Errorf("storing artifact: %w", err)
	}
	rec.ArtifactPath = artifactPath
	return nil
}
