package store

import (
	"context"
	"errors"
	"io"
	"time"
)

// Map generation statuses. A record starts pending, moves to processing when
// the job picks it up, and terminates in exactly one of completed or failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

var (
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("record not found")

	// ErrMissingConfiguration reports a project that has no style
	// configuration; generation refuses to start without one.
	ErrMissingConfiguration = errors.New("project has no map configuration")
)

// Project is a unit of work files and map jobs attach to.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// UploadedFile records one geographic file attached to a project. Kind is
// the detected format; OriginalName is the name the file arrived under,
// which drives zip-vs-bare shapefile handling. The metadata fields are
// extracted once at registration.
type UploadedFile struct {
	ID           string
	ProjectID    string
	Path         string
	Kind         string
	OriginalName string
	GeometryType string
	CRS          string
	FeatureCount int
	UploadedAt   time.Time
}

// StyleConfig is a project's map styling. One per project; saving again
// replaces it. Layout names the print layout the artifact targets; only the
// default landscape layout ships today.
type StyleConfig struct {
	ProjectID      string
	Layout         string
	Title          string
	Subtitle       string
	PrimaryColor   string
	SecondaryColor string
	ShowScale      bool
	ShowNorthArrow bool
	ShowLegend     bool
	AdditionalInfo string
	LogoPath       string
}

// GeneratedMap tracks one map generation job and its artifact.
type GeneratedMap struct {
	ID           string
	ProjectID    string
	Theme        string
	Status       string
	Error        string
	ArtifactPath string
	ScaleLabel   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists projects, their files, style configuration, map job
// records and finished artifacts.
type Store interface {
	CreateProject(ctx context.Context, p *Project) error
	Project(ctx context.Context, id string) (*Project, error)

	AddFile(ctx context.Context, f *UploadedFile) error
	Files(ctx context.Context, projectID string) ([]UploadedFile, error)

	// SetStyle replaces the project's style configuration.
	SetStyle(ctx context.Context, s *StyleConfig) error
	// Style returns ErrMissingConfiguration when the project has none.
	Style(ctx context.Context, projectID string) (*StyleConfig, error)

	CreateMap(ctx context.Context, m *GeneratedMap) error
	UpdateMap(ctx context.Context, m *GeneratedMap) error
	Map(ctx context.Context, id string) (*GeneratedMap, error)
	MapsForProject(ctx context.Context, projectID string) ([]GeneratedMap, error)

	// SaveArtifact stores the finished image under filename and returns
	// the path the artifact can be read back from.
	SaveArtifact(ctx context.Context, r io.Reader, filename string) (string, error)

	Close() error
}
