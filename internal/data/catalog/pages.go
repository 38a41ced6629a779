package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	domaincatalog "playshelf/app/internal/domain/catalog"
)

// GetPage returns the page or a NotFound error.
func (r *Repository) GetPage(ctx context.Context, id string) (*domaincatalog.GamePage, error) {
	var record GamePageRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"page_id": id}, "fetching page "+id)
	}
	return toDomainPage(&record), nil
}

// FindPageBySlug returns the page live at slug or nil when none is.
func (r *Repository) FindPageBySlug(ctx context.Context, slug string) (*domaincatalog.GamePage, error) {
	record, err := r.findPageRecordBySlug(ctx, slug)
	if err != nil || record == nil {
		return nil, err
	}
	return toDomainPage(record), nil
}

func (r *Repository) findPageRecordBySlug(ctx context.Context, slug string) (*GamePageRecord, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	var records []GamePageRecord
	if err := r.db.WithContext(ctx).Where("slug = ?", trimmed).Limit(1).Find(&records).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"slug": trimmed}, "fetching page by slug")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// CreatePage inserts a page and assigns its ID. A taken slug yields Conflict.
func (r *Repository) CreatePage(ctx context.Context, page *domaincatalog.GamePage) error {
	if page == nil {
		return eris.New("page is nil")
	}

	visibility := page.Visibility
	if visibility == "" {
		visibility = domaincatalog.VisibilityDraft
	}

	record := &GamePageRecord{
		ID:              page.ID,
		GameID:          page.GameID,
		Title:           strings.TrimSpace(page.Title),
		Slug:            strings.TrimSpace(page.Slug),
		RequestedSlug:   page.RequestedSlug,
		Visibility:      string(visibility),
		IsPrimary:       page.IsPrimary,
		IsClaimable:     page.IsClaimable,
		LastSlugChange:  page.LastSlugChange,
		LastTitleChange: page.LastTitleChange,
		PublishedAt:     page.PublishedAt,
		UnpublishedAt:   page.UnpublishedAt,
		CreatedAt:       page.CreatedAt,
		UpdatedAt:       page.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return r.classify(err, logrus.Fields{"game_id": page.GameID, "slug": record.Slug}, "creating page")
	}

	page.ID = record.ID
	page.Visibility = visibility
	page.CreatedAt = record.CreatedAt
	page.UpdatedAt = record.UpdatedAt
	return nil
}

// ListPagesByGame returns every page of the game, primary first.
func (r *Repository) ListPagesByGame(ctx context.Context, gameID string) ([]domaincatalog.GamePage, error) {
	var records []GamePageRecord
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("is_primary DESC").
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, r.classify(err, logrus.Fields{"game_id": gameID}, "listing pages of game")
	}
	return toDomainPages(records), nil
}

// ListPublishedPrimaryPages returns the published primary pages among gameIDs.
func (r *Repository) ListPublishedPrimaryPages(ctx context.Context, gameIDs []string) ([]domaincatalog.GamePage, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	var records []GamePageRecord
	err := r.db.WithContext(ctx).
		Where("game_id IN ?", gameIDs).
		Where("is_primary = ?", true).
		Where("visibility = ?", string(domaincatalog.VisibilityPublished)).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, r.classify(err, logrus.Fields{"games": len(gameIDs)}, "listing published primary pages")
	}
	return toDomainPages(records), nil
}

// SetPageVisibility moves the page to visibility, stamping published_at or
// unpublished_at with at.
func (r *Repository) SetPageVisibility(ctx context.Context, id string, visibility domaincatalog.Visibility, at time.Time) error {
	updates := map[string]any{
		"visibility": string(visibility),
		"updated_at": at,
	}
	switch visibility {
	case domaincatalog.VisibilityPublished:
		updates["published_at"] = at
	case domaincatalog.VisibilityDraft:
		updates["unpublished_at"] = at
	default:
		return eris.Errorf("unknown visibility %q", visibility)
	}

	result := r.db.WithContext(ctx).Model(&GamePageRecord{}).Where("id = ?", id).Updates(updates)
	if err := requireAffected(result, "page %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"page_id": id, "visibility": visibility}, "updating page visibility")
	}
	return nil
}

// SetPageClaimable toggles whether the page accepts ownership claims.
func (r *Repository) SetPageClaimable(ctx context.Context, id string, claimable bool) error {
	result := r.db.WithContext(ctx).Model(&GamePageRecord{}).Where("id = ?", id).Update("is_claimable", claimable)
	if err := requireAffected(result, "page %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"page_id": id}, "updating page claimability")
	}
	return nil
}

// UpdatePageTitle writes the title and stamps its cooldown field.
func (r *Repository) UpdatePageTitle(ctx context.Context, id, title string, changedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&GamePageRecord{}).Where("id = ?", id).Updates(map[string]any{
		"title":             strings.TrimSpace(title),
		"last_title_change": changedAt,
		"updated_at":        changedAt,
	})
	if err := requireAffected(result, "page %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"page_id": id}, "updating page title")
	}
	return nil
}

func toDomainPages(records []GamePageRecord) []domaincatalog.GamePage {
	pages := make([]domaincatalog.GamePage, 0, len(records))
	for i := range records {
		pages = append(pages, *toDomainPage(&records[i]))
	}
	return pages
}

func toDomainPage(record *GamePageRecord) *domaincatalog.GamePage {
	if record == nil {
		return nil
	}

	return &domaincatalog.GamePage{
		ID:              record.ID,
		GameID:          record.GameID,
		Title:           record.Title,
		Slug:            record.Slug,
		RequestedSlug:   record.RequestedSlug,
		Visibility:      domaincatalog.Visibility(record.Visibility),
		IsPrimary:       record.IsPrimary,
		IsClaimable:     record.IsClaimable,
		LastSlugChange:  record.LastSlugChange,
		LastTitleChange: record.LastTitleChange,
		PublishedAt:     record.PublishedAt,
		UnpublishedAt:   record.UnpublishedAt,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
