// internal/store/templates.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"notification-engine/internal/models"

	"github.com/lib/pq"
)

// TemplateStore persists templates and their append-only version history.
type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, name, category, channels, variables, active, version, created_at, updated_at`

// FindByName returns (nil, nil) when no active template with the name exists.
func (s *TemplateStore) FindByName(ctx context.Context, name string) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE name = $1 AND active = true`, name)

	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by name: %w", err)
	}
	return t, nil
}

func (s *TemplateStore) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM templates WHERE active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active templates: %w", err)
	}
	return count, nil
}

// UpdateContent rewrites a template's channel blocks, variables, and version
// number. Used by the versioner's restore path.
func (s *TemplateStore) UpdateContent(ctx context.Context, templateID string, channels map[string]*models.ChannelContent, variables []string, version int) error {
	encoded, err := json.Marshal(channels)
	if err != nil {
		return fmt.Errorf("marshal template channels: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE templates SET channels = $1, variables = $2, version = $3, updated_at = $4 WHERE id = $5`,
		encoded, pq.StringArray(variables), version, time.Now().UTC(), templateID,
	)
	if err != nil {
		return fmt.Errorf("update template content: %w", err)
	}
	return nil
}

// --- version history ---

const versionColumns = `id, template_id, version, channels, variables, current, created_by, created_at`

// FindVersion returns (nil, nil) when the version does not exist.
func (s *TemplateStore) FindVersion(ctx context.Context, templateID string, version int) (*models.TemplateVersion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM template_versions WHERE template_id = $1 AND version = $2`,
		templateID, version)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template version: %w", err)
	}
	return v, nil
}

func (s *TemplateStore) Versions(ctx context.Context, templateID string) ([]models.TemplateVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+versionColumns+` FROM template_versions WHERE template_id = $1 ORDER BY version DESC`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("query template versions: %w", err)
	}
	defer rows.Close()

	var out []models.TemplateVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template version: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (s *TemplateStore) Insert(ctx context.Context, v *models.TemplateVersion) error {
	encoded, err := json.Marshal(v.Channels)
	if err != nil {
		return fmt.Errorf("marshal version channels: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO template_versions (`+versionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.TemplateID, v.Version, encoded, pq.StringArray(v.Variables),
		v.Current, v.CreatedBy, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template version: %w", err)
	}
	return nil
}

func (s *TemplateStore) MarkNonCurrent(ctx context.Context, templateID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE template_versions SET current = false WHERE template_id = $1 AND current = true`,
		templateID,
	)
	if err != nil {
		return fmt.Errorf("mark versions non-current: %w", err)
	}
	return nil
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	var t models.Template
	var channels []byte
	var variables pq.StringArray

	err := row.Scan(
		&t.ID, &t.Name, &t.Category, &channels, &variables, &t.Active,
		&t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(channels) > 0 {
		if err := json.Unmarshal(channels, &t.Channels); err != nil {
			t.Channels = map[string]*models.ChannelContent{}
		}
	}
	t.Variables = []string(variables)
	return &t, nil
}

func scanVersion(row rowScanner) (*models.TemplateVersion, error) {
	var v models.TemplateVersion
	var channels []byte
	var variables pq.StringArray

	err := row.Scan(
		&v.ID, &v.TemplateID, &v.Version, &channels, &variables,
		&v.Current, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(channels) > 0 {
		if err := json.Unmarshal(channels, &v.Channels); err != nil {
			v.Channels = map[string]*models.ChannelContent{}
		}
	}
	v.Variables = []string(variables)
	return &v, nil
}
