package slug

import (
	"context"
	"strings"
	"time"

	"playshelf/app/internal/domain/catalog"
)

// Holder is the slug-bearing view of a Studio or GamePage.
type Holder struct {
	ID             string
	Kind           EntityKind
	Slug           string
	RequestedSlug  *string
	LastSlugChange *time.Time
	IsVerified     bool

	// Game page only.
	GameID     string
	Visibility catalog.Visibility
	IsPrimary  bool

	UpdatedAt time.Time
}

// EffectiveSlug is the staged slug when one exists, otherwise the live slug.
func (h *Holder) EffectiveSlug() string {
	if h.RequestedSlug != nil && *h.RequestedSlug != "" {
		return *h.RequestedSlug
	}
	return h.Slug
}

// HasTemporarySlug reports whether the live slug is a placeholder.
func (h *Holder) HasTemporarySlug() bool {
	return strings.HasPrefix(h.Slug, h.Kind.TemporaryPrefix())
}

// SlugUpdate is the full set of slug columns written in one statement.
// A nil RequestedSlug clears the staged value.
type SlugUpdate struct {
	Slug            string
	RequestedSlug   *string
	StampSlugChange bool
	At              time.Time
}

// HolderStore is the narrow persistence contract for one entity kind.
//
// GetHolder returns a NotFound apperr when the row is absent. FindBySlug returns
// nil without error when no live row holds slug. UpdateSlugFields returns a
// Conflict apperr when the storage uniqueness constraint rejects the write.
type HolderStore interface {
	GetHolder(ctx context.Context, id string) (*Holder, error)
	FindBySlug(ctx context.Context, slug string) (*Holder, error)
	UpdateSlugFields(ctx context.Context, id string, update SlugUpdate) (*Holder, error)
}

func stringPtr(value string) *string {
	return &value
}
