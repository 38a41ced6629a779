package identity

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/slug"
)

// SlugEdit is the outcome of a self-service slug edit. Exactly one of Holder
// and ChangeRequest is set.
type SlugEdit struct {
	Holder        *slug.Holder
	ChangeRequest *changerequest.ChangeRequest
	Staged        bool
	Unpublished   []string
}

// NameEdit is the outcome of a self-service name edit.
type NameEdit struct {
	Name          string
	ChangeRequest *changerequest.ChangeRequest
}

type editTarget struct {
	verified       bool
	slug           string
	name           string
	lastSlugChange *time.Time
	lastNameChange *time.Time
	page           *catalog.GamePage
}

// UpdateSlug changes the slug of a studio or game page. Verified entities go
// through a change request. A protected value is staged behind a temporary
// slug and the page it would have exposed is unpublished.
func (s *Service) UpdateSlug(ctx context.Context, actor catalog.Actor, kind slug.EntityKind, id, raw string) (*SlugEdit, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	target, err := s.loadEditTarget(ctx, actor, kind, id)
	if err != nil {
		return nil, err
	}

	requested, err := slug.Validate(raw)
	if err != nil {
		return nil, err
	}
	if requested == target.slug {
		return nil, apperr.BadRequest("slug is already %q", requested)
	}
	if err := s.checkCooldown(actor, "slug", target.lastSlugChange); err != nil {
		return nil, err
	}

	if target.verified {
		request, err := s.changeRequests.Create(ctx, actor, kind, id, changerequest.FieldSlug, requested)
		if err != nil {
			return nil, err
		}
		return &SlugEdit{ChangeRequest: request}, nil
	}

	protected, err := s.registry.IsProtected(ctx, kind, requested)
	if err != nil {
		return nil, err
	}

	if !protected {
		holder, err := s.lifecycle.Assign(ctx, kind, id, requested)
		if err != nil {
			return nil, err
		}
		return &SlugEdit{Holder: holder}, nil
	}

	holder, err := s.lifecycle.Demote(ctx, kind, id, &requested)
	if err != nil {
		return nil, err
	}
	edit := &SlugEdit{Holder: holder, Staged: true}

	if kind == slug.KindGamePage {
		unpublished, err := s.gate.Cascade().UnpublishPage(ctx, target.page, "slug_update", id)
		if err != nil {
			return edit, err
		}
		if unpublished {
			edit.Unpublished = []string{id}
		}
	}

	return edit, nil
}

// UpdateName changes a studio name or a page title. Verified entities go
// through a change request.
func (s *Service) UpdateName(ctx context.Context, actor catalog.Actor, kind slug.EntityKind, id, raw string) (*NameEdit, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	target, err := s.loadEditTarget(ctx, actor, kind, id)
	if err != nil {
		return nil, err
	}

	name, err := changerequest.NormalizeName(raw)
	if err != nil {
		return nil, err
	}
	if name == target.name {
		return nil, apperr.BadRequest("name is already %q", name)
	}
	if err := s.checkCooldown(actor, "name", target.lastNameChange); err != nil {
		return nil, err
	}

	if target.verified {
		request, err := s.changeRequests.Create(ctx, actor, kind, id, changerequest.FieldName, name)
		if err != nil {
			return nil, err
		}
		return &NameEdit{Name: target.name, ChangeRequest: request}, nil
	}

	now := s.now().UTC()
	if kind == slug.KindStudio {
		err = s.studios.UpdateStudioName(ctx, id, name, now)
	} else {
		err = s.pages.UpdatePageTitle(ctx, id, name, now)
	}
	if err != nil {
		s.recordError(logrus.Fields{"entity_kind": kind, "entity_id": id}, err, "updating name")
		return nil, apperr.Passthrough(err, "updating name of %s %s", kind, id)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionNameUpdated,
		TargetType: string(kind),
		TargetID:   id,
		Metadata: map[string]any{
			"previous_name": target.name,
			"name":          name,
		},
	})

	return &NameEdit{Name: name}, nil
}

func (s *Service) loadEditTarget(ctx context.Context, actor catalog.Actor, kind slug.EntityKind, id string) (*editTarget, error) {
	switch kind {
	case slug.KindStudio:
		studio, err := s.access.RequireStudioEditor(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		return &editTarget{
			verified:       studio.IsVerified,
			slug:           studio.EffectiveSlug(),
			name:           studio.Name,
			lastSlugChange: studio.LastSlugChange,
			lastNameChange: studio.LastNameChange,
		}, nil
	case slug.KindGamePage:
		page, game, err := s.access.RequirePageEditor(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		return &editTarget{
			verified:       game.IsVerified,
			slug:           page.EffectiveSlug(),
			name:           page.Title,
			lastSlugChange: page.LastSlugChange,
			lastNameChange: page.LastTitleChange,
			page:           page,
		}, nil
	default:
		return nil, apperr.BadRequest("unknown entity kind %q", kind)
	}
}
