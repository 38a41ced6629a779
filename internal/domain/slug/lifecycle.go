package slug

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
)

// Lifecycle moves slugs between live and staged for every entity kind.
//
// Neither Demote nor Promote takes a lock. Demote's idempotency guard and
// Promote's conflict pre-check narrow the race window; the storage uniqueness
// constraint decides any write that still collides.
type Lifecycle struct {
	holders   map[EntityKind]HolderStore
	checker   *UniquenessChecker
	allocator *Allocator
	audit     *audit.Recorder
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time
}

// LifecycleOptions wires a Lifecycle.
type LifecycleOptions struct {
	Holders   map[EntityKind]HolderStore
	Checker   *UniquenessChecker
	Allocator *Allocator
	Audit     *audit.Recorder
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// NewLifecycle validates and builds the manager.
func NewLifecycle(opts LifecycleOptions) (*Lifecycle, error) {
	for _, kind := range Kinds {
		if opts.Holders[kind] == nil {
			return nil, eris.Errorf("holder store for %s is required", kind)
		}
	}
	if opts.Checker == nil {
		return nil, eris.New("uniqueness checker is required")
	}
	if opts.Allocator == nil {
		return nil, eris.New("temporary slug allocator is required")
	}
	return &Lifecycle{
		holders:   opts.Holders,
		checker:   opts.Checker,
		allocator: opts.Allocator,
		audit:     opts.Audit,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
		now:       time.Now,
	}, nil
}

// Demote moves the entity onto a temporary slug and stages the desired value.
// The staged value is desired when given, else the current staged value, else
// the current live slug. Repeating a demotion with the same target is a no-op.
func (l *Lifecycle) Demote(ctx context.Context, kind EntityKind, id string, desired *string) (*Holder, error) {
	store, err := l.store(kind)
	if err != nil {
		return nil, err
	}

	holder, err := store.GetHolder(ctx, id)
	if err != nil {
		return nil, err
	}

	var requested string
	switch {
	case desired != nil && Normalize(*desired) != "":
		requested = Normalize(*desired)
	case holder.RequestedSlug != nil && Normalize(*holder.RequestedSlug) != "":
		requested = Normalize(*holder.RequestedSlug)
	default:
		requested = Normalize(holder.Slug)
	}

	if holder.RequestedSlug != nil && Normalize(*holder.RequestedSlug) == requested && holder.Slug != requested {
		return holder, nil
	}

	temporary, err := l.allocator.Allocate(ctx, kind)
	if err != nil {
		l.recordError(logrus.Fields{"entity_kind": kind, "entity_id": id}, err, "allocating temporary slug")
		return nil, err
	}

	now := l.now().UTC()
	updated, err := store.UpdateSlugFields(ctx, id, SlugUpdate{
		Slug:            temporary,
		RequestedSlug:   stringPtr(requested),
		StampSlugChange: true,
		At:              now,
	})
	if err != nil {
		l.recordError(logrus.Fields{"entity_kind": kind, "entity_id": id, "temporary_slug": temporary}, err, "writing demoted slug")
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, err
		}
		return nil, apperr.Internal(err, "demoting %s %s", kind, id)
	}

	l.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionSlugDemoted,
		TargetType: string(kind),
		TargetID:   id,
		Metadata: map[string]any{
			"previous_slug":  holder.Slug,
			"temporary_slug": temporary,
			"requested_slug": requested,
		},
	})

	return updated, nil
}

// Promote makes the staged slug live. A holder with nothing staged is returned
// unchanged. A staged slug held live by another entity fails with Conflict.
func (l *Lifecycle) Promote(ctx context.Context, kind EntityKind, id string) (*Holder, error) {
	store, err := l.store(kind)
	if err != nil {
		return nil, err
	}

	holder, err := store.GetHolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if holder.RequestedSlug == nil || Normalize(*holder.RequestedSlug) == "" {
		return holder, nil
	}

	requested := Normalize(*holder.RequestedSlug)
	taken, err := l.checker.IsTaken(ctx, kind, requested, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("slug %q already taken", requested)
	}

	updated, err := store.UpdateSlugFields(ctx, id, SlugUpdate{
		Slug:            requested,
		RequestedSlug:   nil,
		StampSlugChange: kind == KindGamePage,
		At:              l.now().UTC(),
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, apperr.Conflict("slug %q already taken", requested)
		}
		l.recordError(logrus.Fields{"entity_kind": kind, "entity_id": id, "slug": requested}, err, "writing promoted slug")
		return nil, apperr.Passthrough(err, "promoting %s %s", kind, id)
	}

	l.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionSlugPromoted,
		TargetType: string(kind),
		TargetID:   id,
		Metadata: map[string]any{
			"previous_slug": holder.Slug,
			"slug":          requested,
		},
	})

	return updated, nil
}

// Assign writes value as the live slug directly, clearing anything staged.
// Callers must have consulted the Registry first.
func (l *Lifecycle) Assign(ctx context.Context, kind EntityKind, id, value string) (*Holder, error) {
	store, err := l.store(kind)
	if err != nil {
		return nil, err
	}

	holder, err := store.GetHolder(ctx, id)
	if err != nil {
		return nil, err
	}

	normalized := Normalize(value)
	taken, err := l.checker.IsTaken(ctx, kind, normalized, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("slug %q already taken", normalized)
	}

	updated, err := store.UpdateSlugFields(ctx, id, SlugUpdate{
		Slug:            normalized,
		RequestedSlug:   nil,
		StampSlugChange: true,
		At:              l.now().UTC(),
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, apperr.Conflict("slug %q already taken", normalized)
		}
		l.recordError(logrus.Fields{"entity_kind": kind, "entity_id": id, "slug": normalized}, err, "writing assigned slug")
		return nil, apperr.Passthrough(err, "assigning slug to %s %s", kind, id)
	}

	l.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionSlugUpdated,
		TargetType: string(kind),
		TargetID:   id,
		Metadata: map[string]any{
			"previous_slug": holder.Slug,
			"slug":          normalized,
		},
	})

	return updated, nil
}

// Holder loads the current slug view of an entity.
func (l *Lifecycle) Holder(ctx context.Context, kind EntityKind, id string) (*Holder, error) {
	store, err := l.store(kind)
	if err != nil {
		return nil, err
	}
	return store.GetHolder(ctx, id)
}

func (l *Lifecycle) store(kind EntityKind) (HolderStore, error) {
	store, ok := l.holders[kind]
	if !ok {
		return nil, apperr.BadRequest("unknown entity kind %q", kind)
	}
	return store, nil
}

func (l *Lifecycle) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}
	if l.logger != nil {
		entry := l.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}
	if l.sentryHub != nil {
		l.sentryHub.CaptureException(err)
	}
}
