package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	domaincatalog "playshelf/app/internal/domain/catalog"
)

// GetStudio returns the studio or a NotFound error.
func (r *Repository) GetStudio(ctx context.Context, id string) (*domaincatalog.Studio, error) {
	var record StudioRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"studio_id": id}, "fetching studio "+id)
	}
	return toDomainStudio(&record), nil
}

// CreateStudio inserts a studio and assigns its ID. A taken slug yields Conflict.
func (r *Repository) CreateStudio(ctx context.Context, studio *domaincatalog.Studio) error {
	if studio == nil {
		return eris.New("studio is nil")
	}

	record := &StudioRecord{
		ID:             studio.ID,
		OwnerUserID:    strings.TrimSpace(studio.OwnerUserID),
		Name:           strings.TrimSpace(studio.Name),
		Slug:           strings.TrimSpace(studio.Slug),
		RequestedSlug:  studio.RequestedSlug,
		IsVerified:     studio.IsVerified,
		LastSlugChange: studio.LastSlugChange,
		LastNameChange: studio.LastNameChange,
		CreatedAt:      studio.CreatedAt,
		UpdatedAt:      studio.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return r.classify(err, logrus.Fields{"slug": record.Slug}, "creating studio")
	}

	studio.ID = record.ID
	studio.CreatedAt = record.CreatedAt
	studio.UpdatedAt = record.UpdatedAt
	return nil
}

// SetStudioVerified writes the verified flag.
func (r *Repository) SetStudioVerified(ctx context.Context, id string, verified bool) error {
	result := r.db.WithContext(ctx).Model(&StudioRecord{}).Where("id = ?", id).Update("is_verified", verified)
	if err := requireAffected(result, "studio %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"studio_id": id}, "updating studio verification")
	}
	return nil
}

// UpdateStudioName writes the name and stamps its cooldown field.
func (r *Repository) UpdateStudioName(ctx context.Context, id, name string, changedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&StudioRecord{}).Where("id = ?", id).Updates(map[string]any{
		"name":             strings.TrimSpace(name),
		"last_name_change": changedAt,
		"updated_at":       changedAt,
	})
	if err := requireAffected(result, "studio %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"studio_id": id}, "updating studio name")
	}
	return nil
}

func toDomainStudio(record *StudioRecord) *domaincatalog.Studio {
	if record == nil {
		return nil
	}

	return &domaincatalog.Studio{
		ID:             record.ID,
		OwnerUserID:    record.OwnerUserID,
		Name:           record.Name,
		Slug:           record.Slug,
		RequestedSlug:  record.RequestedSlug,
		IsVerified:     record.IsVerified,
		LastSlugChange: record.LastSlugChange,
		LastNameChange: record.LastNameChange,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
