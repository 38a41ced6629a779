package identity

import (
	"context"

	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/slug"
)

// CreateStudio registers an unverified studio owned by actor.
func (s *Service) CreateStudio(ctx context.Context, actor catalog.Actor, name, rawSlug string) (*catalog.Studio, error) {
	if actor.ID == "" {
		return nil, apperr.Forbidden("an authenticated actor is required")
	}
	ctx = audit.ContextWithActor(ctx, actor.ID)

	trimmedName, err := changerequest.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	live, staged, err := s.initialSlug(ctx, slug.KindStudio, rawSlug)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	studio := &catalog.Studio{
		OwnerUserID:   actor.ID,
		Name:          trimmedName,
		Slug:          live,
		RequestedSlug: staged,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.studios.CreateStudio(ctx, studio); err != nil {
		s.recordError(logrus.Fields{"slug": live}, err, "creating studio")
		return nil, apperr.Passthrough(err, "creating studio")
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionEntityCreated,
		TargetType: string(slug.KindStudio),
		TargetID:   studio.ID,
		Metadata: map[string]any{
			"slug":           studio.Slug,
			"requested_slug": studio.EffectiveSlug(),
			"staged":         staged != nil,
		},
	})

	return studio, nil
}

// CreateGame adds an unverified game to the studio together with its primary
// page. The page starts as a claimable draft.
func (s *Service) CreateGame(ctx context.Context, actor catalog.Actor, studioID, name, rawSlug string) (*catalog.Game, *catalog.GamePage, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	studio, err := s.access.RequireStudioEditor(ctx, actor, studioID)
	if err != nil {
		return nil, nil, err
	}

	trimmedName, err := changerequest.NormalizeName(name)
	if err != nil {
		return nil, nil, err
	}

	live, staged, err := s.initialSlug(ctx, slug.KindGamePage, rawSlug)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	game := &catalog.Game{
		OwnerStudioID: studio.ID,
		Name:          trimmedName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.games.CreateGame(ctx, game); err != nil {
		s.recordError(logrus.Fields{"studio_id": studio.ID}, err, "creating game")
		return nil, nil, apperr.Internal(err, "creating game")
	}

	page := &catalog.GamePage{
		GameID:        game.ID,
		Title:         trimmedName,
		Slug:          live,
		RequestedSlug: staged,
		Visibility:    catalog.VisibilityDraft,
		IsPrimary:     true,
		IsClaimable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.pages.CreatePage(ctx, page); err != nil {
		s.recordError(logrus.Fields{"game_id": game.ID, "slug": live}, err, "creating primary page")
		return nil, nil, apperr.Passthrough(err, "creating primary page for game %s", game.ID)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionEntityCreated,
		TargetType: "game",
		TargetID:   game.ID,
		Metadata: map[string]any{
			"studio_id":      studio.ID,
			"page_id":        page.ID,
			"slug":           page.Slug,
			"requested_slug": page.EffectiveSlug(),
			"staged":         staged != nil,
		},
	})

	return game, page, nil
}
