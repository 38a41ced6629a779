package catalog

import (
	"context"
	"time"
)

// StudioStore persists studios. Get returns a NotFound apperr when absent.
type StudioStore interface {
	GetStudio(ctx context.Context, id string) (*Studio, error)
	CreateStudio(ctx context.Context, studio *Studio) error
	SetStudioVerified(ctx context.Context, id string, verified bool) error
	UpdateStudioName(ctx context.Context, id, name string, changedAt time.Time) error
}

// GameStore persists games.
type GameStore interface {
	GetGame(ctx context.Context, id string) (*Game, error)
	CreateGame(ctx context.Context, game *Game) error
	ListGameIDsByStudio(ctx context.Context, studioID string) ([]string, error)
	SetGameVerified(ctx context.Context, id string, verified bool) error
	SetGameOwner(ctx context.Context, id, studioID string) error
}

// PageStore persists game pages.
type PageStore interface {
	GetPage(ctx context.Context, id string) (*GamePage, error)
	FindPageBySlug(ctx context.Context, slug string) (*GamePage, error)
	CreatePage(ctx context.Context, page *GamePage) error
	ListPagesByGame(ctx context.Context, gameID string) ([]GamePage, error)
	ListPublishedPrimaryPages(ctx context.Context, gameIDs []string) ([]GamePage, error)
	SetPageVisibility(ctx context.Context, id string, visibility Visibility, at time.Time) error
	SetPageClaimable(ctx context.Context, id string, claimable bool) error
	UpdatePageTitle(ctx context.Context, id, title string, changedAt time.Time) error
}
