package store

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryProjects(t *testing.T) {
	s := NewMemory(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.CreateProject(ctx, &Project{ID: "p1", Name: "Fazenda"}))

	p, err := s.Project(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Fazenda", p.Name)
	require.False(t, p.CreatedAt.IsZero())

	_, err = s.Project(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFiles(t *testing.T) {
	s := NewMemory(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.AddFile(ctx, &UploadedFile{ID: "f1", ProjectID: "p1", Kind: "kml", OriginalName: "a.kml"}))
	require.NoError(t, s.AddFile(ctx, &UploadedFile{ID: "f2", ProjectID: "p1", Kind: "geojson", OriginalName: "b.geojson"}))
	require.NoError(t, s.AddFile(ctx, &UploadedFile{ID: "f3", ProjectID: "other", Kind: "gpx", OriginalName: "c.gpx"}))

	files, err := s.Files(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestMemoryStyleMissing(t *testing.T) {
	s := NewMemory(t.TempDir())
	ctx := context.Background()

	_, err := s.Style(ctx, "p1")
	require.ErrorIs(t, err, ErrMissingConfiguration)

	require.NoError(t, s.SetStyle(ctx, &StyleConfig{ProjectID: "p1", Title: "T", ShowLegend: true}))
	c, err := s.Style(ctx, "p1")
	require.NoError(t, err)
	require.True(t, c.ShowLegend)

	// Saving again replaces the previous configuration.
	require.NoError(t, s.SetStyle(ctx, &StyleConfig{ProjectID: "p1", Title: "T2"}))
	c, err = s.Style(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "T2", c.Title)
	require.False(t, c.ShowLegend)
}

func TestMemoryMapLifecycle(t *testing.T) {
	s := NewMemory(t.TempDir())
	ctx := context.Background()

	m := &GeneratedMap{ID: "m1", ProjectID: "p1", Theme: "classic", Status: StatusPending}
	require.NoError(t, s.CreateMap(ctx, m))

	m.Status = StatusProcessing
	require.NoError(t, s.UpdateMap(ctx, m))

	m.Status = StatusCompleted
	m.ArtifactPath = "/tmp/p1_map.png"
	require.NoError(t, s.UpdateMap(ctx, m))

	got, err := s.Map(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, "/tmp/p1_map.png", got.ArtifactPath)

	maps, err := s.MapsForProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, maps, 1)

	require.ErrorIs(t, s.UpdateMap(ctx, &GeneratedMap{ID: "ghost"}), ErrNotFound)
}

func TestMemorySaveArtifact(t *testing.T) {
	dir := t.TempDir()
	s := NewMemory(dir)

	path, err := s.SaveArtifact(context.Background(), strings.NewReader("png bytes"), "p1_map.png")
	require.NoError(t, err)
	require.Contains(t, path, "p1_map.png")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "png bytes", string(data))
}
