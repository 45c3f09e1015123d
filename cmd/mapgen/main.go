package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joeblew999/plat-maps/internal/config"
	"github.com/joeblew999/plat-maps/internal/generator"
	"github.com/joeblew999/plat-maps/internal/geomio"
	"github.com/joeblew999/plat-maps/internal/refdata"
	"github.com/joeblew999/plat-maps/internal/render"
	"github.com/joeblew999/plat-maps/internal/store"
)

var (
	cfgPath string
	dataDir string
	cfg     config.Config
	log     zerolog.Logger
)

func main() {
	root := &cobra.Command{
		Use:     "mapgen",
		Short:   "Composite location-map generator",
		Version: "0.1.0",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				level = zerolog.InfoLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file")
	root.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Override the configured data directory")

	root.AddCommand(newProjectCmd(), newImportCmd(), newStyleCmd(), newRenderCmd(), newStatusCmd(), newRefdataCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openStore() (store.Store, error) {
	return store.OpenDuckDB(cfg.DataDir)
}

func newProjectCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p := &store.Project{ID: uuid.NewString(), Name: name}
			if err := s.CreateProject(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Println(p.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newImportCmd() *cobra.Command {
	var projectID, kindFlag string
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Attach geographic files to a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.Project(cmd.Context(), projectID); err != nil {
				return err
			}

			uploadDir := filepath.Join(cfg.DataDir, "uploads", projectID)
			if err := os.MkdirAll(uploadDir, 0o755); err != nil {
				return fmt.Errorf("creating upload directory: %w", err)
			}

			loader := geomio.NewLoader(log)
			for _, src := range args {
				name := filepath.Base(src)
				kind := kindFlag
				if kind == "" {
					kind = geomio.DetectKind(name)
				}
				if kind == "" {
					return fmt.Errorf("%s: %w", name, geomio.ErrUnsupportedFormat)
				}

				id := uuid.NewString()
				dst := filepath.Join(uploadDir, id+"_"+name)
				if err := copyFile(src, dst); err != nil {
					return err
				}

				// Registration parses the file once: invalid uploads are
				// rejected here instead of surfacing at render time.
				set, err := loader.Load(cmd.Context(), dst, kind, name)
				if err != nil {
					os.Remove(dst)
					return fmt.Errorf("%s: %w", name, err)
				}
				if err := geomio.ValidateGeometry(set); err != nil {
					os.Remove(dst)
					return fmt.Errorf("%s: %w", name, err)
				}
				meta := geomio.ExtractMetadata(set)

				f := &store.UploadedFile{
					ID:           id,
					ProjectID:    projectID,
					Path:         dst,
					Kind:         kind,
					OriginalName: name,
					GeometryType: meta.GeometryType,
					CRS:          meta.CoordinateSystem,
					FeatureCount: meta.FeatureCount,
				}
				if err := s.AddFile(cmd.Context(), f); err != nil {
					return err
				}
				log.Info().Str("file", name).Str("kind", kind).
					Int("features", meta.FeatureCount).Msg("file imported")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project ID")
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Override format detection (shp, kml, kmz, geojson, gpx)")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newStyleCmd() *cobra.Command {
	c := store.StyleConfig{
		PrimaryColor:   "#FF0000",
		SecondaryColor: "#8B0000",
		ShowScale:      true,
		ShowNorthArrow: true,
		ShowLegend:     true,
	}
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Set a project's map styling",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.Project(cmd.Context(), c.ProjectID); err != nil {
				return err
			}
			return s.SetStyle(cmd.Context(), &c)
		},
	}
	cmd.Flags().StringVarP(&c.ProjectID, "project", "p", "", "Project ID")
	cmd.Flags().StringVar(&c.Layout, "layout", "landscape", "Print layout")
	cmd.Flags().StringVar(&c.Title, "title", "", "Map title (default MAPA DE LOCALIZAÇÃO)")
	cmd.Flags().StringVar(&c.Subtitle, "subtitle", "", "Map subtitle")
	cmd.Flags().StringVar(&c.PrimaryColor, "primary-color", c.PrimaryColor, "Project geometry fill color")
	cmd.Flags().StringVar(&c.SecondaryColor, "secondary-color", c.SecondaryColor, "Project geometry outline color")
	cmd.Flags().BoolVar(&c.ShowScale, "scale", c.ShowScale, "Show the scale line")
	cmd.Flags().BoolVar(&c.ShowNorthArrow, "north-arrow", c.ShowNorthArrow, "Show the north arrow")
	cmd.Flags().BoolVar(&c.ShowLegend, "legend", c.ShowLegend, "Show the legend block")
	cmd.Flags().StringVar(&c.AdditionalInfo, "info", "", "Extra info lines (newline separated)")
	cmd.Flags().StringVar(&c.LogoPath, "logo", "", "Path to a logo image")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var projectID, theme string
	var offline bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate the composite map for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			refOpts := []refdata.Option{}
			if cfg.BoundariesURL != "" {
				refOpts = append(refOpts, refdata.WithURL(cfg.BoundariesURL))
			}
			if cfg.BoundariesFile != "" {
				refOpts = append(refOpts, refdata.WithLocalFile(cfg.BoundariesFile))
			}
			provider := refdata.NewProvider(log, refOpts...)

			genOpts := []generator.Option{
				generator.WithRefdata(provider),
				generator.WithFontPaths(cfg.FontPaths...),
			}
			if offline {
				fonts := render.ResolveFonts(fontCandidates(), log)
				genOpts = append(genOpts, generator.WithRendererFactory(func(t render.Theme) *render.Renderer {
					return render.NewOfflineRenderer(t, fonts, render.DefaultOptions(), log)
				}))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RenderTimeout.Std())
			defer cancel()

			gen := generator.New(s, log, genOpts...)
			rec, err := gen.Generate(ctx, projectID, theme)
			if err != nil {
				return err
			}
			fmt.Println(rec.ArtifactPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project ID")
	cmd.Flags().StringVarP(&theme, "theme", "t", "classic", "Theme: classic, modern or vivid")
	cmd.Flags().BoolVar(&offline, "offline", false, "Render without basemap tiles")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List a project's map generation jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			maps, err := s.MapsForProject(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			for _, m := range maps {
				line := fmt.Sprintf("%s  %-10s  %s", m.ID, m.Status, m.Theme)
				if m.Status == store.StatusCompleted {
					line += "  " + m.ArtifactPath
				}
				if m.Status == store.StatusFailed {
					line += "  " + m.Error
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project ID")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newRefdataCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "refdata",
		Short: "Download the administrative boundary dataset to a local bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			refOpts := []refdata.Option{}
			if cfg.BoundariesURL != "" {
				refOpts = append(refOpts, refdata.WithURL(cfg.BoundariesURL))
			}
			provider := refdata.NewProvider(log, refOpts...)

			dest := out
			if dest == "" {
				dest = filepath.Join(cfg.DataDir, "refdata", "boundaries.geojson")
			}
			if err := provider.SaveLocal(cmd.Context(), dest); err != nil {
				return err
			}
			fmt.Println(dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Destination file (default <data-dir>/refdata/boundaries.geojson)")
	return cmd
}

func fontCandidates() []string {
	if len(cfg.FontPaths) > 0 {
		return cfg.FontPaths
	}
	return render.DefaultFontCandidates
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
