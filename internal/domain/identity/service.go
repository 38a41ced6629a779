// Package identity exposes the public slug and verification operations on
// studios and game pages.
package identity

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/slug"
)

// DefaultEditCooldown is the minimum gap between self-service edits of one field.
const DefaultEditCooldown = 24 * time.Hour

// Options wires a Service.
type Options struct {
	Studios        catalog.StudioStore
	Games          catalog.GameStore
	Pages          catalog.PageStore
	Access         *catalog.AccessPolicy
	Registry       *slug.Registry
	Checker        *slug.UniquenessChecker
	Allocator      *slug.Allocator
	Lifecycle      *slug.Lifecycle
	Gate           *slug.Gate
	ChangeRequests *changerequest.Workflow
	Audit          *audit.Recorder
	Logger         *logrus.Logger
	SentryHub      *sentry.Hub
	EditCooldown   time.Duration
}

// Service implements the entity-facing slug operations.
type Service struct {
	studios        catalog.StudioStore
	games          catalog.GameStore
	pages          catalog.PageStore
	access         *catalog.AccessPolicy
	registry       *slug.Registry
	checker        *slug.UniquenessChecker
	allocator      *slug.Allocator
	lifecycle      *slug.Lifecycle
	gate           *slug.Gate
	changeRequests *changerequest.Workflow
	audit          *audit.Recorder
	logger         *logrus.Logger
	sentryHub      *sentry.Hub
	cooldown       time.Duration
	now            func() time.Time
}

// NewService validates and builds the service.
func NewService(opts Options) (*Service, error) {
	switch {
	case opts.Studios == nil || opts.Games == nil || opts.Pages == nil:
		return nil, eris.New("catalog stores are required")
	case opts.Access == nil:
		return nil, eris.New("access policy is required")
	case opts.Registry == nil || opts.Checker == nil || opts.Allocator == nil:
		return nil, eris.New("slug registry, checker and allocator are required")
	case opts.Lifecycle == nil || opts.Gate == nil:
		return nil, eris.New("slug lifecycle and gate are required")
	case opts.ChangeRequests == nil:
		return nil, eris.New("change request workflow is required")
	}

	cooldown := opts.EditCooldown
	if cooldown <= 0 {
		cooldown = DefaultEditCooldown
	}

	return &Service{
		studios:        opts.Studios,
		games:          opts.Games,
		pages:          opts.Pages,
		access:         opts.Access,
		registry:       opts.Registry,
		checker:        opts.Checker,
		allocator:      opts.Allocator,
		lifecycle:      opts.Lifecycle,
		gate:           opts.Gate,
		changeRequests: opts.ChangeRequests,
		audit:          opts.Audit,
		logger:         opts.Logger,
		sentryHub:      opts.SentryHub,
		cooldown:       cooldown,
		now:            time.Now,
	}, nil
}

// Availability answers whether a slug can be taken and whether it would be
// held behind verification.
type Availability struct {
	Slug                 string
	Available            bool
	RequiresVerification bool
}

// CheckSlugAvailable validates raw and reports its availability for kind.
func (s *Service) CheckSlugAvailable(ctx context.Context, kind slug.EntityKind, raw string) (*Availability, error) {
	if !kind.Valid() {
		return nil, apperr.BadRequest("unknown entity kind %q", kind)
	}
	normalized, err := slug.Validate(raw)
	if err != nil {
		return nil, err
	}

	taken, err := s.checker.IsTaken(ctx, kind, normalized, "")
	if err != nil {
		return nil, err
	}
	protected, err := s.registry.IsProtected(ctx, kind, normalized)
	if err != nil {
		return nil, err
	}

	return &Availability{
		Slug:                 normalized,
		Available:            !taken,
		RequiresVerification: protected,
	}, nil
}

// initialSlug decides the live and staged slug for a new entity. A protected
// value is staged behind a temporary slug.
func (s *Service) initialSlug(ctx context.Context, kind slug.EntityKind, raw string) (string, *string, error) {
	normalized, err := slug.Validate(raw)
	if err != nil {
		return "", nil, err
	}

	taken, err := s.checker.IsTaken(ctx, kind, normalized, "")
	if err != nil {
		return "", nil, err
	}
	if taken {
		return "", nil, apperr.Conflict("slug %q already taken", normalized)
	}

	protected, err := s.registry.IsProtected(ctx, kind, normalized)
	if err != nil {
		return "", nil, err
	}
	if !protected {
		return normalized, nil, nil
	}

	temporary, err := s.allocator.Allocate(ctx, kind)
	if err != nil {
		s.recordError(logrus.Fields{"entity_kind": kind, "slug": normalized}, err, "allocating temporary slug for new entity")
		return "", nil, err
	}
	return temporary, &normalized, nil
}

func (s *Service) checkCooldown(actor catalog.Actor, field string, last *time.Time) error {
	if actor.Admin || last == nil {
		return nil
	}
	next := last.Add(s.cooldown)
	if now := s.now().UTC(); now.Before(next) {
		return apperr.BadRequest("%s was changed recently; try again after %s", field, next.Format(time.RFC3339))
	}
	return nil
}

func (s *Service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}
	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}
	if s.sentryHub != nil && apperr.KindOf(err) == apperr.KindInternal {
		s.sentryHub.CaptureException(err)
	}
}
