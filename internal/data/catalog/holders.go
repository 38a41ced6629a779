package catalog

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	domaincatalog "playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/slug"
)

// StudioHolders exposes studios through the slug holder contract.
type StudioHolders struct {
	repo *Repository
}

var _ slug.HolderStore = (*StudioHolders)(nil)

// GetHolder loads the studio's slug view.
func (h *StudioHolders) GetHolder(ctx context.Context, id string) (*slug.Holder, error) {
	studio, err := h.repo.GetStudio(ctx, id)
	if err != nil {
		return nil, err
	}
	return studioHolder(studio), nil
}

// FindBySlug returns the studio live at value or nil.
func (h *StudioHolders) FindBySlug(ctx context.Context, value string) (*slug.Holder, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	var records []StudioRecord
	if err := h.repo.db.WithContext(ctx).Where("slug = ?", trimmed).Limit(1).Find(&records).Error; err != nil {
		return nil, h.repo.classify(err, logrus.Fields{"slug": trimmed}, "fetching studio by slug")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return studioHolder(toDomainStudio(&records[0])), nil
}

// UpdateSlugFields writes the live and staged slug in one statement.
func (h *StudioHolders) UpdateSlugFields(ctx context.Context, id string, update slug.SlugUpdate) (*slug.Holder, error) {
	result := h.repo.db.WithContext(ctx).Model(&StudioRecord{}).Where("id = ?", id).Updates(slugColumns(update))
	if err := requireAffected(result, "studio %s not found", id); err != nil {
		return nil, h.repo.classify(err, logrus.Fields{"studio_id": id, "slug": update.Slug}, "updating studio slug")
	}
	return h.GetHolder(ctx, id)
}

// PageHolders exposes game pages through the slug holder contract. The
// verified flag is the owning game's.
type PageHolders struct {
	repo *Repository
}

var _ slug.HolderStore = (*PageHolders)(nil)

// GetHolder loads the page's slug view.
func (h *PageHolders) GetHolder(ctx context.Context, id string) (*slug.Holder, error) {
	page, err := h.repo.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	return h.pageHolder(ctx, page)
}

// FindBySlug returns the page live at value or nil.
func (h *PageHolders) FindBySlug(ctx context.Context, value string) (*slug.Holder, error) {
	record, err := h.repo.findPageRecordBySlug(ctx, value)
	if err != nil || record == nil {
		return nil, err
	}
	return h.pageHolder(ctx, toDomainPage(record))
}

// UpdateSlugFields writes the live and staged slug in one statement.
func (h *PageHolders) UpdateSlugFields(ctx context.Context, id string, update slug.SlugUpdate) (*slug.Holder, error) {
	result := h.repo.db.WithContext(ctx).Model(&GamePageRecord{}).Where("id = ?", id).Updates(slugColumns(update))
	if err := requireAffected(result, "page %s not found", id); err != nil {
		return nil, h.repo.classify(err, logrus.Fields{"page_id": id, "slug": update.Slug}, "updating page slug")
	}
	return h.GetHolder(ctx, id)
}

func (h *PageHolders) pageHolder(ctx context.Context, page *domaincatalog.GamePage) (*slug.Holder, error) {
	var verified []bool
	err := h.repo.db.WithContext(ctx).Model(&GameRecord{}).Where("id = ?", page.GameID).Pluck("is_verified", &verified).Error
	if err != nil {
		return nil, h.repo.classify(err, logrus.Fields{"game_id": page.GameID}, "fetching game verification")
	}

	return &slug.Holder{
		ID:             page.ID,
		Kind:           slug.KindGamePage,
		Slug:           page.Slug,
		RequestedSlug:  page.RequestedSlug,
		LastSlugChange: page.LastSlugChange,
		IsVerified:     len(verified) > 0 && verified[0],
		GameID:         page.GameID,
		Visibility:     page.Visibility,
		IsPrimary:      page.IsPrimary,
		UpdatedAt:      page.UpdatedAt,
	}, nil
}

func studioHolder(studio *domaincatalog.Studio) *slug.Holder {
	return &slug.Holder{
		ID:             studio.ID,
		Kind:           slug.KindStudio,
		Slug:           studio.Slug,
		RequestedSlug:  studio.RequestedSlug,
		LastSlugChange: studio.LastSlugChange,
		IsVerified:     studio.IsVerified,
		UpdatedAt:      studio.UpdatedAt,
	}
}

func slugColumns(update slug.SlugUpdate) map[string]any {
	var requested any
	if update.RequestedSlug != nil {
		requested = *update.RequestedSlug
	}

	columns := map[string]any{
		"slug":           update.Slug,
		"requested_slug": requested,
		"updated_at":     update.At,
	}
	if update.StampSlugChange {
		columns["last_slug_change"] = update.At
	}
	return columns
}
