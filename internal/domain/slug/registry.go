package slug

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
)

// ProtectedSlug is an admin-curated protection row.
type ProtectedSlug struct {
	ID        string
	Kind      EntityKind
	Slug      string
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}

// ProtectedSlugStore persists the dynamic protected list.
//
// CreateProtected returns a Conflict apperr when (kind, slug) already exists;
// DeleteProtected returns NotFound when id is absent.
type ProtectedSlugStore interface {
	ProtectedExists(ctx context.Context, kind EntityKind, slug string) (bool, error)
	GetProtected(ctx context.Context, id string) (*ProtectedSlug, error)
	CreateProtected(ctx context.Context, protected *ProtectedSlug) error
	DeleteProtected(ctx context.Context, id string) error
	ListProtected(ctx context.Context, kind EntityKind) ([]ProtectedSlug, error)
}

// Registry is the single choke point deciding whether a slug is protected.
// It combines the compiled-in reserved words with the store-backed list.
type Registry struct {
	store  ProtectedSlugStore
	audit  *audit.Recorder
	logger *logrus.Logger
	now    func() time.Time
}

// NewRegistry wires the registry.
func NewRegistry(store ProtectedSlugStore, recorder *audit.Recorder, logger *logrus.Logger) (*Registry, error) {
	if store == nil {
		return nil, eris.New("protected slug store is required")
	}
	return &Registry{store: store, audit: recorder, logger: logger, now: time.Now}, nil
}

// IsProtected reports whether slug, trimmed and lowercased, is reserved or
// listed for kind.
func (r *Registry) IsProtected(ctx context.Context, kind EntityKind, slug string) (bool, error) {
	normalized := Normalize(slug)
	if normalized == "" {
		return false, nil
	}
	if IsReserved(kind, normalized) {
		return true, nil
	}

	exists, err := r.store.ProtectedExists(ctx, kind, normalized)
	if err != nil {
		r.logError(logrus.Fields{"entity_kind": kind, "slug": normalized}, err, "checking protected slug list")
		return false, apperr.Internal(err, "checking protected slug %s", normalized)
	}
	return exists, nil
}

// AddProtected lists slug as protected for kind. A duplicate fails with Conflict.
func (r *Registry) AddProtected(ctx context.Context, actorID string, kind EntityKind, slug, reason string) (*ProtectedSlug, error) {
	if !kind.Valid() {
		return nil, apperr.BadRequest("unknown entity kind %q", kind)
	}
	normalized := Normalize(slug)
	if normalized == "" {
		return nil, apperr.BadRequest("slug is required")
	}

	exists, err := r.store.ProtectedExists(ctx, kind, normalized)
	if err != nil {
		return nil, apperr.Internal(err, "checking protected slug %s", normalized)
	}
	if exists {
		return nil, apperr.Conflict("slug %q is already protected", normalized)
	}

	protected := &ProtectedSlug{
		Kind:      kind,
		Slug:      normalized,
		Reason:    strings.TrimSpace(reason),
		CreatedBy: actorID,
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.CreateProtected(ctx, protected); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		r.logError(logrus.Fields{"entity_kind": kind, "slug": normalized}, err, "creating protected slug")
		return nil, apperr.Internal(err, "creating protected slug %s", normalized)
	}

	r.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionProtectedSlugAdded,
		TargetType: "protected_slug",
		TargetID:   protected.ID,
		Metadata: map[string]any{
			"entity_kind": string(kind),
			"slug":        normalized,
			"reason":      protected.Reason,
		},
	})

	return protected, nil
}

// RemoveProtected deletes a protection row. Entities already staged behind a
// temporary slug are left as they are.
func (r *Registry) RemoveProtected(ctx context.Context, actorID, id string) error {
	existing, err := r.store.GetProtected(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.DeleteProtected(ctx, id); err != nil {
		return err
	}

	r.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionProtectedSlugRemoved,
		TargetType: "protected_slug",
		TargetID:   id,
		Metadata: map[string]any{
			"entity_kind": string(existing.Kind),
			"slug":        existing.Slug,
		},
	})
	return nil
}

// ListProtected returns the dynamic list for kind. Compiled-in words are not included.
func (r *Registry) ListProtected(ctx context.Context, kind EntityKind) ([]ProtectedSlug, error) {
	items, err := r.store.ListProtected(ctx, kind)
	if err != nil {
		return nil, apperr.Internal(err, "listing protected slugs")
	}
	return items, nil
}

func (r *Registry) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}
	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
