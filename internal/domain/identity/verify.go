package identity

import (
	"context"

	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/slug"
)

// SetStudioVerified flips a studio's verified flag. Verifying promotes the
// staged slug first and fails with Conflict, leaving the studio unverified,
// when that slug is taken. Unverifying a verified studio whose slug is
// protected demotes it and unpublishes every game it owns. Unverifying an
// unverified studio changes nothing.
func (s *Service) SetStudioVerified(ctx context.Context, admin catalog.Actor, studioID string, verified bool) (*catalog.Studio, error) {
	if err := catalog.RequireAdmin(admin); err != nil {
		return nil, err
	}
	ctx = audit.ContextWithActor(ctx, admin.ID)

	studio, err := s.studios.GetStudio(ctx, studioID)
	if err != nil {
		return nil, err
	}

	if verified {
		if _, err := s.gate.OnVerify(ctx, slug.KindStudio, studio.ID); err != nil {
			return nil, err
		}
		if !studio.IsVerified {
			if err := s.writeStudioVerified(ctx, studio.ID, true); err != nil {
				return nil, err
			}
		}
		return s.studios.GetStudio(ctx, studio.ID)
	}

	if !studio.IsVerified {
		return studio, nil
	}
	if err := s.writeStudioVerified(ctx, studio.ID, false); err != nil {
		return nil, err
	}

	protected, err := s.registry.IsProtected(ctx, slug.KindStudio, studio.EffectiveSlug())
	if err != nil {
		return nil, err
	}
	if protected {
		if _, err := s.gate.OnUnverify(ctx, slug.KindStudio, studio.ID); err != nil {
			return nil, err
		}
	}

	return s.studios.GetStudio(ctx, studio.ID)
}

// SetGameVerified flips a game's verified flag. Verifying promotes the staged
// slug of every page of the game. Every staged slug is checked before any is
// promoted, so a Conflict leaves all pages and the game untouched. Unverifying
// a verified game demotes pages holding protected slugs and unpublishes them.
func (s *Service) SetGameVerified(ctx context.Context, admin catalog.Actor, gameID string, verified bool) (*catalog.Game, error) {
	if err := catalog.RequireAdmin(admin); err != nil {
		return nil, err
	}
	ctx = audit.ContextWithActor(ctx, admin.ID)

	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	pages, err := s.pages.ListPagesByGame(ctx, game.ID)
	if err != nil {
		s.recordError(logrus.Fields{"game_id": game.ID}, err, "listing pages of game")
		return nil, apperr.Internal(err, "listing pages of game %s", game.ID)
	}

	if verified {
		if err := s.ensureStagedSlugsFree(ctx, pages); err != nil {
			return nil, err
		}
		for _, page := range pages {
			if _, err := s.gate.OnVerify(ctx, slug.KindGamePage, page.ID); err != nil {
				return nil, err
			}
		}
		if !game.IsVerified {
			if err := s.writeGameVerified(ctx, game.ID, true); err != nil {
				return nil, err
			}
		}
		return s.games.GetGame(ctx, game.ID)
	}

	if !game.IsVerified {
		return game, nil
	}
	if err := s.writeGameVerified(ctx, game.ID, false); err != nil {
		return nil, err
	}

	for _, page := range pages {
		protected, err := s.registry.IsProtected(ctx, slug.KindGamePage, page.EffectiveSlug())
		if err != nil {
			return nil, err
		}
		if !protected {
			continue
		}
		if _, err := s.gate.OnUnverify(ctx, slug.KindGamePage, page.ID); err != nil {
			return nil, err
		}
	}

	return s.games.GetGame(ctx, game.ID)
}

func (s *Service) ensureStagedSlugsFree(ctx context.Context, pages []catalog.GamePage) error {
	for _, page := range pages {
		if page.RequestedSlug == nil {
			continue
		}
		requested := slug.Normalize(*page.RequestedSlug)
		if requested == "" {
			continue
		}
		taken, err := s.checker.IsTaken(ctx, slug.KindGamePage, requested, page.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("slug %q already taken", requested)
		}
	}
	return nil
}

func (s *Service) writeStudioVerified(ctx context.Context, id string, verified bool) error {
	if err := s.studios.SetStudioVerified(ctx, id, verified); err != nil {
		s.recordError(logrus.Fields{"studio_id": id, "verified": verified}, err, "writing studio verification")
		return apperr.Passthrough(err, "setting studio %s verified=%t", id, verified)
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionVerificationChanged,
		TargetType: string(slug.KindStudio),
		TargetID:   id,
		Metadata:   map[string]any{"verified": verified},
	})
	return nil
}

func (s *Service) writeGameVerified(ctx context.Context, id string, verified bool) error {
	if err := s.games.SetGameVerified(ctx, id, verified); err != nil {
		s.recordError(logrus.Fields{"game_id": id, "verified": verified}, err, "writing game verification")
		return apperr.Passthrough(err, "setting game %s verified=%t", id, verified)
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionVerificationChanged,
		TargetType: "game",
		TargetID:   id,
		Metadata:   map[string]any{"verified": verified},
	})
	return nil
}
