package catalog

import (
	"context"

	"github.com/rotisserie/eris"

	"playshelf/app/internal/domain/apperr"
)

// AccessPolicy answers edit-rights questions by walking page → game → studio ownership.
type AccessPolicy struct {
	studios StudioStore
	games   GameStore
	pages   PageStore
}

// NewAccessPolicy wires the policy with its stores.
func NewAccessPolicy(studios StudioStore, games GameStore, pages PageStore) (*AccessPolicy, error) {
	if studios == nil || games == nil || pages == nil {
		return nil, eris.New("studio, game and page stores are required")
	}
	return &AccessPolicy{studios: studios, games: games, pages: pages}, nil
}

// RequireStudioEditor fails with Forbidden unless actor is an admin or owns the studio.
func (p *AccessPolicy) RequireStudioEditor(ctx context.Context, actor Actor, studioID string) (*Studio, error) {
	studio, err := p.studios.GetStudio(ctx, studioID)
	if err != nil {
		return nil, err
	}
	if actor.Admin || (actor.ID != "" && actor.ID == studio.OwnerUserID) {
		return studio, nil
	}
	return nil, apperr.Forbidden("actor %s cannot edit studio %s", actor.ID, studioID)
}

// RequirePageEditor fails with Forbidden unless actor is an admin or owns the
// studio that owns the page's game.
func (p *AccessPolicy) RequirePageEditor(ctx context.Context, actor Actor, pageID string) (*GamePage, *Game, error) {
	page, err := p.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, nil, err
	}
	game, err := p.games.GetGame(ctx, page.GameID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Admin {
		return page, game, nil
	}
	if _, err := p.RequireStudioEditor(ctx, actor, game.OwnerStudioID); err != nil {
		return nil, nil, apperr.Forbidden("actor %s cannot edit page %s", actor.ID, pageID)
	}
	return page, game, nil
}

// RequireAdmin fails with Forbidden for non-privileged actors.
func RequireAdmin(actor Actor) error {
	if !actor.Admin {
		return apperr.Forbidden("administrator privileges required")
	}
	return nil
}
