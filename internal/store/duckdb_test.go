package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DuckDB {
	t.Helper()
	s, err := OpenDuckDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDuckDBProjectRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProject(ctx, &Project{ID: "p1", Name: "Fazenda"}))

	p, err := s.Project(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Fazenda", p.Name)

	_, err = s.Project(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDuckDBStyleReplace(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.Style(ctx, "p1")
	require.ErrorIs(t, err, ErrMissingConfiguration)

	require.NoError(t, s.SetStyle(ctx, &StyleConfig{ProjectID: "p1", Title: "A", ShowScale: true}))
	require.NoError(t, s.SetStyle(ctx, &StyleConfig{ProjectID: "p1", Title: "B"}))

	c, err := s.Style(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "B", c.Title)
	require.False(t, c.ShowScale)
}

func TestDuckDBMapStatusTransitions(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	m := &GeneratedMap{ID: "m1", ProjectID: "p1", Theme: "vivid", Status: StatusPending}
	require.NoError(t, s.CreateMap(ctx, m))

	m.Status = StatusFailed
	m.Error = "no valid geospatial data found in project"
	require.NoError(t, s.UpdateMap(ctx, m))

	got, err := s.Map(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Equal(t, m.Error, got.Error)

	require.ErrorIs(t, s.UpdateMap(ctx, &GeneratedMap{ID: "ghost"}), ErrNotFound)
}

func TestDuckDBFilesOrdered(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.AddFile(ctx, &UploadedFile{ID: "f1", ProjectID: "p1", Path: "/a", Kind: "kml", OriginalName: "a.kml"}))
	require.NoError(t, s.AddFile(ctx, &UploadedFile{ID: "f2", ProjectID: "p1", Path: "/b", Kind: "gpx", OriginalName: "b.gpx"}))

	files, err := s.Files(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestDuckDBSaveArtifact(t *testing.T) {
	s := openTestDB(t)

	path, err := s.SaveArtifact(context.Background(), strings.NewReader("bytes"), "p1_map.png")
	require.NoError(t, err)
	require.Contains(t, path, "p1_map.png")
}

func TestDuckDBOpenIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := OpenDuckDB(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenDuckDB(dir)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}
