package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

type pageIDInput struct {
	ID string `path:"id"`
}

type pageOutput struct {
	Body pageDTO
}

type verifiedInput struct {
	ID   string `path:"id"`
	Body struct {
		Verified bool `json:"verified"`
	}
}

type gameOutput struct {
	Body gameDTO
}

func (s *Server) registerPageRoutes() {
	huma.Post(s.api, "/v1/pages/{id}/publish", s.publishPageHandler, jsonOperation(
		"Publish game page", "pages",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
	huma.Post(s.api, "/v1/pages/{id}/unpublish", s.unpublishPageHandler, jsonOperation(
		"Unpublish game page", "pages",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerVerificationRoutes() {
	huma.Put(s.api, "/v1/admin/studios/{id}/verified", s.setStudioVerifiedHandler, jsonOperation(
		"Set studio verification", "admin",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Put(s.api, "/v1/admin/games/{id}/verified", s.setGameVerifiedHandler, jsonOperation(
		"Set game verification", "admin",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) publishPageHandler(ctx context.Context, input *pageIDInput) (*pageOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.identity.PublishPage(ctx, actor, input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "publishing page", logrus.Fields{"page_id": input.ID})
	}
	return &pageOutput{Body: toPageDTO(page)}, nil
}

func (s *Server) unpublishPageHandler(ctx context.Context, input *pageIDInput) (*pageOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.identity.UnpublishPage(ctx, actor, input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "unpublishing page", logrus.Fields{"page_id": input.ID})
	}
	return &pageOutput{Body: toPageDTO(page)}, nil
}

func (s *Server) setStudioVerifiedHandler(ctx context.Context, input *verifiedInput) (*studioOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}

	studio, err := s.identity.SetStudioVerified(ctx, admin, input.ID, input.Body.Verified)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "setting studio verification", logrus.Fields{
			"studio_id": input.ID,
			"verified":  input.Body.Verified,
		})
	}
	return &studioOutput{Body: toStudioDTO(studio)}, nil
}

func (s *Server) setGameVerifiedHandler(ctx context.Context, input *verifiedInput) (*gameOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}

	game, err := s.identity.SetGameVerified(ctx, admin, input.ID, input.Body.Verified)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "setting game verification", logrus.Fields{
			"game_id":  input.ID,
			"verified": input.Body.Verified,
		})
	}
	return &gameOutput{Body: toGameDTO(game)}, nil
}
