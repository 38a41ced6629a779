package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/slug"
)

type createStudioInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"120"`
		Slug string `json:"slug" minLength:"1" maxLength:"64"`
	}
}

type studioOutput struct {
	Body studioDTO
}

type createGameInput struct {
	StudioID string `path:"id"`
	Body     struct {
		Name string `json:"name" minLength:"1" maxLength:"120"`
		Slug string `json:"slug" minLength:"1" maxLength:"64"`
	}
}

type createGameOutput struct {
	Body struct {
		Game gameDTO `json:"game"`
		Page pageDTO `json:"page"`
	}
}

type updateSlugInput struct {
	Kind string `path:"kind"`
	ID   string `path:"id"`
	Body struct {
		Slug string `json:"slug" minLength:"1" maxLength:"64"`
	}
}

type updateSlugOutput struct {
	Body struct {
		Holder        *holderDTO        `json:"holder,omitempty"`
		ChangeRequest *changeRequestDTO `json:"change_request,omitempty"`
		Staged        bool              `json:"staged"`
		Unpublished   []string          `json:"unpublished,omitempty"`
	}
}

type updateNameInput struct {
	Kind string `path:"kind"`
	ID   string `path:"id"`
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"120"`
	}
}

type updateNameOutput struct {
	Body struct {
		Name          string            `json:"name,omitempty"`
		ChangeRequest *changeRequestDTO `json:"change_request,omitempty"`
	}
}

func (s *Server) registerStudioRoutes() {
	huma.Post(s.api, "/v1/studios", s.createStudioHandler, createdOperation(
		"Create studio", "studios",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Post(s.api, "/v1/studios/{id}/games", s.createGameHandler, createdOperation(
		"Create game with its primary page", "studios",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Put(s.api, "/v1/{kind}/{id}/slug", s.updateSlugHandler, jsonOperation(
		"Change slug", "slugs",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Put(s.api, "/v1/{kind}/{id}/name", s.updateNameHandler, jsonOperation(
		"Change studio name or page title", "slugs",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) createStudioHandler(ctx context.Context, input *createStudioInput) (*studioOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}

	studio, err := s.identity.CreateStudio(ctx, actor, input.Body.Name, input.Body.Slug)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "creating studio", logrus.Fields{"slug": input.Body.Slug})
	}
	return &studioOutput{Body: toStudioDTO(studio)}, nil
}

func (s *Server) createGameHandler(ctx context.Context, input *createGameInput) (*createGameOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}

	game, page, err := s.identity.CreateGame(ctx, actor, input.StudioID, input.Body.Name, input.Body.Slug)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "creating game", logrus.Fields{
			"studio_id": input.StudioID,
			"slug":      input.Body.Slug,
		})
	}

	out := &createGameOutput{}
	out.Body.Game = toGameDTO(game)
	out.Body.Page = toPageDTO(page)
	return out, nil
}

func (s *Server) updateSlugHandler(ctx context.Context, input *updateSlugInput) (*updateSlugOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}
	kind, err := slug.ParseEntityKind(input.Kind)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "parsing entity kind", nil)
	}

	edit, err := s.identity.UpdateSlug(ctx, actor, kind, input.ID, input.Body.Slug)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "updating slug", logrus.Fields{
			"entity_kind": kind,
			"entity_id":   input.ID,
			"slug":        input.Body.Slug,
		})
	}

	out := &updateSlugOutput{}
	out.Body.Holder = toHolderDTO(edit.Holder)
	out.Body.ChangeRequest = toChangeRequestDTOPtr(edit.ChangeRequest)
	out.Body.Staged = edit.Staged
	out.Body.Unpublished = edit.Unpublished
	return out, nil
}

func (s *Server) updateNameHandler(ctx context.Context, input *updateNameInput) (*updateNameOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}
	kind, err := slug.ParseEntityKind(input.Kind)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "parsing entity kind", nil)
	}

	edit, err := s.identity.UpdateName(ctx, actor, kind, input.ID, input.Body.Name)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "updating name", logrus.Fields{
			"entity_kind": kind,
			"entity_id":   input.ID,
		})
	}

	out := &updateNameOutput{}
	out.Body.Name = edit.Name
	out.Body.ChangeRequest = toChangeRequestDTOPtr(edit.ChangeRequest)
	return out, nil
}
