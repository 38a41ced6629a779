package catalog

import "time"

// Visibility is the publication state of a game page.
type Visibility string

const (
	VisibilityDraft     Visibility = "DRAFT"
	VisibilityPublished Visibility = "PUBLISHED"
)

// Studio publishes games and owns their pages.
type Studio struct {
	ID             string
	OwnerUserID    string
	Name           string
	Slug           string
	RequestedSlug  *string
	IsVerified     bool
	LastSlugChange *time.Time
	LastNameChange *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Game is owned by exactly one studio and carries the verification flag its
// pages share.
type Game struct {
	ID            string
	OwnerStudioID string
	Name          string
	IsVerified    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GamePage is the public page of a game. Each game has exactly one primary page.
type GamePage struct {
	ID              string
	GameID          string
	Title           string
	Slug            string
	RequestedSlug   *string
	Visibility      Visibility
	IsPrimary       bool
	IsClaimable     bool
	LastSlugChange  *time.Time
	LastTitleChange *time.Time
	PublishedAt     *time.Time
	UnpublishedAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectiveSlug returns the staged slug when present, otherwise the live one.
func (p *GamePage) EffectiveSlug() string {
	if p.RequestedSlug != nil && *p.RequestedSlug != "" {
		return *p.RequestedSlug
	}
	return p.Slug
}

// EffectiveSlug returns the staged slug when present, otherwise the live one.
func (s *Studio) EffectiveSlug() string {
	if s.RequestedSlug != nil && *s.RequestedSlug != "" {
		return *s.RequestedSlug
	}
	return s.Slug
}

// Actor is the authenticated caller as established by the upstream auth layer.
type Actor struct {
	ID    string
	Admin bool
}

// SystemActor is used for transitions not attributable to a user, such as CLI maintenance.
var SystemActor = Actor{ID: "system", Admin: true}
