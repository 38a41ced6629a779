package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/slug"
)

type listProtectedInput struct {
	Kind string `query:"kind" doc:"studio or game_page; empty lists both"`
}

type protectedListOutput struct {
	Body struct {
		Items []protectedSlugDTO `json:"items"`
	}
}

type addProtectedInput struct {
	Body struct {
		Kind   string `json:"kind" doc:"studio or game_page"`
		Slug   string `json:"slug" minLength:"1" maxLength:"64"`
		Reason string `json:"reason,omitempty" maxLength:"500"`
	}
}

type protectedOutput struct {
	Body protectedSlugDTO
}

type removeProtectedInput struct {
	ID string `path:"id"`
}

func (s *Server) registerProtectedSlugRoutes() {
	huma.Get(s.api, "/v1/admin/protected-slugs", s.listProtectedHandler, jsonOperation(
		"List protected slugs", "admin",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusInternalServerError,
	))
	huma.Post(s.api, "/v1/admin/protected-slugs", s.addProtectedHandler, createdOperation(
		"Protect a slug", "admin",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Delete(s.api, "/v1/admin/protected-slugs/{id}", s.removeProtectedHandler, jsonOperation(
		"Remove slug protection", "admin",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) listProtectedHandler(ctx context.Context, input *listProtectedInput) (*protectedListOutput, error) {
	if _, err := s.adminFor(ctx); err != nil {
		return nil, err
	}

	var kind slug.EntityKind
	if input.Kind != "" {
		parsed, err := slug.ParseEntityKind(input.Kind)
		if err != nil {
			return nil, s.toHTTPError(ctx, err, "parsing entity kind", nil)
		}
		kind = parsed
	}

	items, err := s.registry.ListProtected(ctx, kind)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "listing protected slugs", logrus.Fields{"entity_kind": kind})
	}

	out := &protectedListOutput{}
	out.Body.Items = make([]protectedSlugDTO, 0, len(items))
	for i := range items {
		out.Body.Items = append(out.Body.Items, toProtectedSlugDTO(&items[i]))
	}
	return out, nil
}

func (s *Server) addProtectedHandler(ctx context.Context, input *addProtectedInput) (*protectedOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}
	kind, err := slug.ParseEntityKind(input.Body.Kind)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "parsing entity kind", nil)
	}

	protected, err := s.registry.AddProtected(ctx, admin.ID, kind, input.Body.Slug, input.Body.Reason)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "adding protected slug", logrus.Fields{
			"entity_kind": kind,
			"slug":        input.Body.Slug,
		})
	}
	return &protectedOutput{Body: toProtectedSlugDTO(protected)}, nil
}

func (s *Server) removeProtectedHandler(ctx context.Context, input *removeProtectedInput) (*struct{}, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.registry.RemoveProtected(ctx, admin.ID, input.ID); err != nil {
		return nil, s.toHTTPError(ctx, err, "removing protected slug", logrus.Fields{"protected_slug_id": input.ID})
	}
	return nil, nil
}
