package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. Artifacts still land on disk under the
// artifact directory; everything else lives in maps guarded by one mutex.
type Memory struct {
	mu          sync.Mutex
	projects    map[string]Project
	files       map[string][]UploadedFile
	styles      map[string]StyleConfig
	genMaps     map[string]GeneratedMap
	artifactDir string
}

// NewMemory returns an empty in-memory store writing artifacts to dir.
func NewMemory(dir string) *Memory {
	return &Memory{
		projects:    make(map[string]Project),
		files:       make(map[string][]UploadedFile),
		styles:      make(map[string]StyleConfig),
		genMaps:     make(map[string]GeneratedMap),
		artifactDir: dir,
	}
}

func (s *Memory) CreateProject(ctx context.Context, p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.projects[p.ID] = *p
	return nil
}

func (s *Memory) Project(ctx context.Context, id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (s *Memory) AddFile(ctx context.Context, f *UploadedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}
	s.files[f.ProjectID] = append(s.files[f.ProjectID], *f)
	return nil
}

func (s *Memory) Files(ctx context.Context, projectID string) ([]UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UploadedFile, len(s.files[projectID]))
	copy(out, s.files[projectID])
	return out, nil
}

func (s *Memory) SetStyle(ctx context.Context, c *StyleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles[c.ProjectID] = *c
	return nil
}

func (s *Memory) Style(ctx context.Context, projectID string) (*StyleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.styles[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrMissingConfiguration)
	}
	return &c, nil
}

func (s *Memory) CreateMap(ctx context.Context, m *GeneratedMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.genMaps[m.ID] = *m
	return nil
}

func (s *Memory) UpdateMap(ctx context.Context, m *GeneratedMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.genMaps[m.ID]; !ok {
		return fmt.Errorf("map %s: %w", m.ID, ErrNotFound)
	}
	m.UpdatedAt = time.Now()
	s.genMaps[m.ID] = *m
	return nil
}

func (s *Memory) Map(ctx context.Context, id string) (*GeneratedMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.genMaps[id]
	if !ok {
		return nil, fmt.Errorf("map %s: %w", id, ErrNotFound)
	}
	return &m, nil
}

func (s *Memory) MapsForProject(ctx context.Context, projectID string) ([]GeneratedMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []GeneratedMap
	for _, m := range s.genMaps {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) SaveArtifact(ctx context.Context, r io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.artifactDir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}
	path := filepath.Join(s.artifactDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating artifact: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

func (s *Memory) Close() error { return nil }
