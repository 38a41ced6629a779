package catalog

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/data/database"
	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/slug"
)

// ProtectedExists reports whether (kind, value) is on the curated list.
func (r *Repository) ProtectedExists(ctx context.Context, kind slug.EntityKind, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ProtectedSlugRecord{}).
		Where("kind = ? AND slug = ?", string(kind), value).
		Count(&count).Error
	if err != nil {
		return false, r.classify(err, logrus.Fields{"entity_kind": kind, "slug": value}, "checking protected slug")
	}
	return count > 0, nil
}

// GetProtected returns the protected row or a NotFound error.
func (r *Repository) GetProtected(ctx context.Context, id string) (*slug.ProtectedSlug, error) {
	var record ProtectedSlugRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"protected_slug_id": id}, "fetching protected slug "+id)
	}
	return toDomainProtected(&record), nil
}

// CreateProtected inserts a protected slug. A duplicate (kind, slug) yields Conflict.
func (r *Repository) CreateProtected(ctx context.Context, protected *slug.ProtectedSlug) error {
	if protected == nil {
		return eris.New("protected slug is nil")
	}

	record := &ProtectedSlugRecord{
		ID:        protected.ID,
		Kind:      string(protected.Kind),
		Slug:      protected.Slug,
		Reason:    protected.Reason,
		CreatedBy: protected.CreatedBy,
		CreatedAt: protected.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("slug %q is already protected for %s", protected.Slug, protected.Kind)
		}
		return r.classify(err, logrus.Fields{"entity_kind": protected.Kind, "slug": protected.Slug}, "creating protected slug")
	}

	protected.ID = record.ID
	protected.CreatedAt = record.CreatedAt
	return nil
}

// DeleteProtected removes the row. A missing row yields NotFound.
func (r *Repository) DeleteProtected(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProtectedSlugRecord{})
	if err := requireAffected(result, "protected slug %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"protected_slug_id": id}, "deleting protected slug")
	}
	return nil
}

// ListProtected returns the curated list for kind, or every kind when empty.
func (r *Repository) ListProtected(ctx context.Context, kind slug.EntityKind) ([]slug.ProtectedSlug, error) {
	query := r.db.WithContext(ctx).Model(&ProtectedSlugRecord{})
	if kind != "" {
		query = query.Where("kind = ?", string(kind))
	}

	var records []ProtectedSlugRecord
	if err := query.Order("kind ASC").Order("slug ASC").Find(&records).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"entity_kind": kind}, "listing protected slugs")
	}

	items := make([]slug.ProtectedSlug, 0, len(records))
	for i := range records {
		items = append(items, *toDomainProtected(&records[i]))
	}
	return items, nil
}

func toDomainProtected(record *ProtectedSlugRecord) *slug.ProtectedSlug {
	return &slug.ProtectedSlug{
		ID:        record.ID,
		Kind:      slug.EntityKind(record.Kind),
		Slug:      record.Slug,
		Reason:    record.Reason,
		CreatedBy: record.CreatedBy,
		CreatedAt: record.CreatedAt,
	}
}
