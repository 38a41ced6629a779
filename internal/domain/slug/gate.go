package slug

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/catalog"
)

// Gate couples slug protection with verification: a protected slug may be
// held, but only a verified game may show it publicly, and only a verified
// entity may hold it live.
type Gate struct {
	registry  *Registry
	lifecycle *Lifecycle
	cascade   *Unpublisher
	logger    *logrus.Logger
}

// NewGate wires the gate.
func NewGate(registry *Registry, lifecycle *Lifecycle, cascade *Unpublisher, logger *logrus.Logger) (*Gate, error) {
	if registry == nil {
		return nil, eris.New("slug registry is required")
	}
	if lifecycle == nil {
		return nil, eris.New("slug lifecycle is required")
	}
	if cascade == nil {
		return nil, eris.New("cascade unpublisher is required")
	}
	return &Gate{registry: registry, lifecycle: lifecycle, cascade: cascade, logger: logger}, nil
}

// CanPublish reports whether page may become PUBLISHED under game.
func (g *Gate) CanPublish(ctx context.Context, page *catalog.GamePage, game *catalog.Game) (bool, error) {
	if page == nil || game == nil {
		return false, apperr.BadRequest("page and game are required")
	}
	if game.IsVerified {
		return true, nil
	}
	protected, err := g.registry.IsProtected(ctx, KindGamePage, page.EffectiveSlug())
	if err != nil {
		return false, err
	}
	return !protected, nil
}

// OnVerify promotes the entity's staged slug. A Conflict must abort the
// verification that triggered it.
func (g *Gate) OnVerify(ctx context.Context, kind EntityKind, id string) (*Holder, error) {
	holder, err := g.lifecycle.Promote(ctx, kind, id)
	if err != nil {
		if g.logger != nil {
			g.logger.WithFields(logrus.Fields{
				"entity_kind": kind,
				"entity_id":   id,
				"error_kind":  apperr.KindOf(err),
			}).Warn("promotion on verify failed")
		}
		return nil, err
	}
	return holder, nil
}

// OnUnverify demotes the entity to a temporary slug, keeping its current
// desired value staged, and unpublishes the pages that depended on it.
func (g *Gate) OnUnverify(ctx context.Context, kind EntityKind, id string) (*Holder, error) {
	holder, err := g.lifecycle.Demote(ctx, kind, id, nil)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindStudio:
		_, err = g.cascade.UnpublishAllForStudio(ctx, id)
	case KindGamePage:
		_, err = g.cascade.UnpublishForGame(ctx, holder.GameID)
	}
	if err != nil {
		return holder, err
	}
	return holder, nil
}

// IsProtected exposes the registry decision for callers holding only the gate.
func (g *Gate) IsProtected(ctx context.Context, kind EntityKind, slug string) (bool, error) {
	return g.registry.IsProtected(ctx, kind, slug)
}

// Cascade exposes the unpublisher for workflows that must unpublish without demoting.
func (g *Gate) Cascade() *Unpublisher {
	return g.cascade
}
