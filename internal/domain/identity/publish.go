package identity

import (
	"context"

	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/slug"
)

// PublishPage makes a draft page public. A page whose effective slug is
// protected stays draft until its game is verified.
func (s *Service) PublishPage(ctx context.Context, actor catalog.Actor, pageID string) (*catalog.GamePage, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	page, game, err := s.access.RequirePageEditor(ctx, actor, pageID)
	if err != nil {
		return nil, err
	}
	if page.Visibility == catalog.VisibilityPublished {
		return page, nil
	}

	allowed, err := s.gate.CanPublish(ctx, page, game)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("page slug %q requires a verified game before publishing", page.EffectiveSlug())
	}

	if err := s.pages.SetPageVisibility(ctx, page.ID, catalog.VisibilityPublished, s.now().UTC()); err != nil {
		s.recordError(logrus.Fields{"page_id": page.ID}, err, "publishing page")
		return nil, apperr.Passthrough(err, "publishing page %s", page.ID)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionPagePublished,
		TargetType: string(slug.KindGamePage),
		TargetID:   page.ID,
		Metadata:   map[string]any{"game_id": game.ID, "slug": page.Slug},
	})

	return s.pages.GetPage(ctx, page.ID)
}

// UnpublishPage returns a published page to draft.
func (s *Service) UnpublishPage(ctx context.Context, actor catalog.Actor, pageID string) (*catalog.GamePage, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	page, _, err := s.access.RequirePageEditor(ctx, actor, pageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Cascade().UnpublishPage(ctx, page, "actor", actor.ID); err != nil {
		return nil, err
	}
	return s.pages.GetPage(ctx, page.ID)
}
