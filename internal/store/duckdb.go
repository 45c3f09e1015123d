package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDB is a file-backed Store. Artifacts go to <dataDir>/maps; records to
// a single DuckDB database under <dataDir>/duckdb.
type DuckDB struct {
	db          *sql.DB
	artifactDir string
}

// OpenDuckDB opens (creating if needed) the database under dataDir and
// ensures the schema. Opening is idempotent.
func OpenDuckDB(dataDir string) (*DuckDB, error) {
	dbDir := filepath.Join(dataDir, "duckdb")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dbDir, "maps.duckdb"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &DuckDB{db: db, artifactDir: filepath.Join(dataDir, "maps")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DuckDB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS uploaded_files (
			id VARCHAR PRIMARY KEY,
			project_id VARCHAR NOT NULL,
			path VARCHAR NOT NULL,
			kind VARCHAR NOT NULL,
			original_name VARCHAR NOT NULL,
			geometry_type VARCHAR,
			crs VARCHAR,
			feature_count INTEGER,
			uploaded_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS style_configs (
			project_id VARCHAR PRIMARY KEY,
			layout VARCHAR,
			title VARCHAR,
			subtitle VARCHAR,
			primary_color VARCHAR,
			secondary_color VARCHAR,
			show_scale BOOLEAN,
			show_north_arrow BOOLEAN,
			show_legend BOOLEAN,
			additional_info VARCHAR,
			logo_path VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS generated_maps (
			id VARCHAR PRIMARY KEY,
			project_id VARCHAR NOT NULL,
			theme VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			error VARCHAR,
			artifact_path VARCHAR,
			scale_label VARCHAR,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

func (s *DuckDB) CreateProject(ctx context.Context, p *Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (s *DuckDB) Project(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}
	return &p, nil
}

func (s *DuckDB) AddFile(ctx context.Context, f *UploadedFile) error {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploaded_files (id, project_id, path, kind, original_name, geometry_type, crs, feature_count, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ProjectID, f.Path, f.Kind, f.OriginalName, f.GeometryType, f.CRS, f.FeatureCount, f.UploadedAt)
	if err != nil {
		return fmt.Errorf("inserting file: %w", err)
	}
	return nil
}

func (s *DuckDB) Files(ctx context.Context, projectID string) ([]UploadedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, path, kind, original_name, geometry_type, crs, feature_count, uploaded_at
		 FROM uploaded_files WHERE project_id = ? ORDER BY uploaded_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var out []UploadedFile
	for rows.Next() {
		var f UploadedFile
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Kind, &f.OriginalName, &f.GeometryType, &f.CRS, &f.FeatureCount, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *DuckDB) SetStyle(ctx context.Context, c *StyleConfig) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM style_configs WHERE project_id = ?`, c.ProjectID)
	if err != nil {
		return fmt.Errorf("replacing style: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO style_configs (project_id, layout, title, subtitle, primary_color, secondary_color,
		 show_scale, show_north_arrow, show_legend, additional_info, logo_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ProjectID, c.Layout, c.Title, c.Subtitle, c.PrimaryColor, c.SecondaryColor,
		c.ShowScale, c.ShowNorthArrow, c.ShowLegend, c.AdditionalInfo, c.LogoPath)
	if err != nil {
		return fmt.Errorf("inserting style: %w", err)
	}
	return nil
}

func (s *DuckDB) Style(ctx context.Context, projectID string) (*StyleConfig, error) {
	var c StyleConfig
	err := s.db.QueryRowContext(ctx,
		`SELECT project_id, layout, title, subtitle, primary_color, secondary_color,
		 show_scale, show_north_arrow, show_legend, additional_info, logo_path
		 FROM style_configs WHERE project_id = ?`, projectID).
		Scan(&c.ProjectID, &c.Layout, &c.Title, &c.Subtitle, &c.PrimaryColor, &c.SecondaryColor,
			&c.ShowScale, &c.ShowNorthArrow, &c.ShowLegend, &c.AdditionalInfo, &c.LogoPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrMissingConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("querying style: %w", err)
	}
	return &c, nil
}

func (s *DuckDB) CreateMap(ctx context.Context, m *GeneratedMap) error {
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_maps (id, project_id, theme, status, error, artifact_path, scale_label, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.Theme, m.Status, m.Error, m.ArtifactPath, m.ScaleLabel, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting map: %w", err)
	}
	return nil
}

func (s *DuckDB) UpdateMap(ctx context.Context, m *GeneratedMap) error {
	m.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE generated_maps SET status = ?, error = ?, artifact_path = ?, scale_label = ?, updated_at = ?
		 WHERE id = ?`,
		m.Status, m.Error, m.ArtifactPath, m.ScaleLabel, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("updating map: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("map %s: %w", m.ID, ErrNotFound)
	}
	return nil
}

func (s *DuckDB) Map(ctx context.Context, id string) (*GeneratedMap, error) {
	var m GeneratedMap
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, theme, status, error, artifact_path, scale_label, created_at, updated_at
		 FROM generated_maps WHERE id = ?`, id).
		Scan(&m.ID, &m.ProjectID, &m.Theme, &m.Status, &m.Error, &m.ArtifactPath, &m.ScaleLabel, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("map %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying map: %w", err)
	}
	return &m, nil
}

func (s *DuckDB) MapsForProject(ctx context.Context, projectID string) ([]GeneratedMap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, theme, status, error, artifact_path, scale_label, created_at, updated_at
		 FROM generated_maps WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying maps: %w", err)
	}
	defer rows.Close()

	var out []GeneratedMap
	for rows.Next() {
		var m GeneratedMap
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Theme, &m.Status, &m.Error, &m.ArtifactPath, &m.ScaleLabel, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning map: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *DuckDB) SaveArtifact(ctx context.Context, r io.Reader, filename string) (string, error) {
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

func (s *DuckDB) Close() error { return s.db.Close() }
