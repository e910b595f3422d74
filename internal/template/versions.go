// internal/template/versions.go
package template

import (
	"context"
	"fmt"
	"time"

	stderrors "notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"

	"github.com/google/uuid"
)

// VersionStore is the persistence boundary for template version history.
// FindVersion returns (nil, nil) when the version does not exist.
type VersionStore interface {
	FindVersion(ctx context.Context, templateID string, version int) (*models.TemplateVersion, error)
	Versions(ctx context.Context, templateID string) ([]models.TemplateVersion, error)
	Insert(ctx context.Context, v *models.TemplateVersion) error
	MarkNonCurrent(ctx context.Context, templateID string) error
	UpdateContent(ctx context.Context, templateID string, channels map[string]*models.ChannelContent, variables []string, version int) error
}

// Versioner manages the append-only version history of templates. History is
// never rewritten in place: each snapshot is a new row, and restoring copies
// an old snapshot's content into a brand-new version.
type Versioner struct {
	store VersionStore
	log   logger.Logger
}

func NewVersioner(store VersionStore, log logger.Logger) *Versioner {
	return &Versioner{
		store: store,
		log:   log.WithFields(map[string]interface{}{"component": "template-versioner"}),
	}
}

// Snapshot records the template's current content as a new immutable version,
// marking every prior version non-current.
func (v *Versioner) Snapshot(ctx context.Context, t *models.Template, createdBy string) (*models.TemplateVersion, error) {
	if err := v.store.MarkNonCurrent(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("mark versions non-current: %w", err)
	}

	ver := &models.TemplateVersion{
		ID:         uuid.New().String(),
		TemplateID: t.ID,
		Version:    t.Version,
		Channels:   t.Channels,
		Variables:  t.Variables,
		Current:    true,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := v.store.Insert(ctx, ver); err != nil {
		return nil, fmt.Errorf("insert template version: %w", err)
	}

	v.log.Info("template version created", map[string]interface{}{
		"templateId": t.ID,
		"version":    ver.Version,
	})
	return ver, nil
}

// Restore brings back an old version's content by creating a new version that
// copies it. The template itself is updated to the new version number; the
// restored-from snapshot stays in history untouched.
func (v *Versioner) Restore(ctx context.Context, t *models.Template, version int, restoredBy string) (*models.TemplateVersion, error) {
	old, err := v.store.FindVersion(ctx, t.ID, version)
	if err != nil {
		return nil, fmt.Errorf("find template version: %w", err)
	}
	if old == nil {
		return nil, stderrors.NewTemplateVersionNotFoundError(t.ID, version)
	}

	t.Channels = old.Channels
	t.Variables = old.Variables
	t.Version++

	if err := v.store.UpdateContent(ctx, t.ID, t.Channels, t.Variables, t.Version); err != nil {
		return nil, fmt.Errorf("update template content: %w", err)
	}

	restored, err := v.Snapshot(ctx, t, restoredBy)
	if err != nil {
		return nil, err
	}

	v.log.Info("template version restored", map[string]interface{}{
		"templateId":  t.ID,
		"fromVersion": version,
		"newVersion":  restored.Version,
	})
	return restored, nil
}

// History lists every stored version, newest first.
func (v *Versioner) History(ctx context.Context, templateID string) ([]models.TemplateVersion, error) {
	return v.store.Versions(ctx, templateID)
}
