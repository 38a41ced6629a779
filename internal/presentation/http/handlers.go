package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/slug"
)

func jsonOperation(summary, tag string, errorStatuses ...int) func(*huma.Operation) {
	return func(op *huma.Operation) {
		op.Summary = summary
		if tag != "" {
			op.Tags = []string{tag}
		}
		op.Errors = errorStatuses
	}
}

func createdOperation(summary, tag string, errorStatuses ...int) func(*huma.Operation) {
	base := jsonOperation(summary, tag, errorStatuses...)
	return func(op *huma.Operation) {
		base(op)
		op.DefaultStatus = stdhttp.StatusCreated
	}
}

type healthOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthOutput, error) {
	if s.health != nil {
		if err := s.health(ctx); err != nil {
			s.recordError(ctx, err, "health check failed", nil)
			return nil, huma.Error503ServiceUnavailable("database unavailable")
		}
	}
	out := &healthOutput{}
	out.Body.Status = "ok"
	return out, nil
}

type availabilityInput struct {
	Kind string `path:"kind" doc:"studio or game_page"`
	Slug string `path:"slug"`
}

type availabilityOutput struct {
	Body struct {
		Slug                 string `json:"slug"`
		Available            bool   `json:"available"`
		RequiresVerification bool   `json:"requires_verification"`
	}
}

func (s *Server) registerSlugRoutes() {
	huma.Get(s.api, "/v1/slugs/{kind}/{slug}/availability", s.availabilityHandler, jsonOperation(
		"Check slug availability", "slugs",
		stdhttp.StatusBadRequest,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) availabilityHandler(ctx context.Context, input *availabilityInput) (*availabilityOutput, error) {
	kind, err := slug.ParseEntityKind(input.Kind)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "parsing entity kind", nil)
	}

	result, err := s.identity.CheckSlugAvailable(ctx, kind, input.Slug)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "checking slug availability", logrus.Fields{
			"entity_kind": kind,
			"slug":        input.Slug,
		})
	}

	out := &availabilityOutput{}
	out.Body.Slug = result.Slug
	out.Body.Available = result.Available
	out.Body.RequiresVerification = result.RequiresVerification
	return out, nil
}

// actorFor returns the caller for a handler that needs an identified actor.
func actorFor(ctx context.Context) (catalog.Actor, error) {
	actor := ActorFromContext(ctx)
	if actor.ID == "" {
		return actor, huma.Error401Unauthorized("missing " + actorIDHeader + " header")
	}
	return actor, nil
}

// adminFor returns the caller when it is an administrator.
func (s *Server) adminFor(ctx context.Context) (catalog.Actor, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return actor, err
	}
	if err := catalog.RequireAdmin(actor); err != nil {
		return actor, s.toHTTPError(ctx, err, "checking admin privileges", nil)
	}
	return actor, nil
}
