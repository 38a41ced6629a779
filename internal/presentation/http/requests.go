package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/ownership"
	"playshelf/app/internal/domain/slug"
)

type createChangeRequestInput struct {
	Body struct {
		Kind     string `json:"kind" doc:"studio or game_page"`
		EntityID string `json:"entity_id" minLength:"1"`
		Field    string `json:"field" enum:"slug,name"`
		Value    string `json:"value" minLength:"1"`
	}
}

type changeRequestOutput struct {
	Body changeRequestDTO
}

type changeRequestIDInput struct {
	ID string `path:"id"`
}

type reviewChangeRequestInput struct {
	ID   string `path:"id"`
	Body struct {
		Notes string `json:"notes,omitempty" maxLength:"2000"`
	}
}

type listChangeRequestsInput struct {
	Status string `query:"status" enum:"pending,approved,rejected,cancelled"`
}

type changeRequestListOutput struct {
	Body struct {
		Items []changeRequestDTO `json:"items"`
	}
}

type createClaimInput struct {
	Body struct {
		PageSlug       string `json:"page_slug" minLength:"1"`
		TargetStudioID string `json:"target_studio_id" minLength:"1"`
		Details        string `json:"details,omitempty" maxLength:"2000"`
	}
}

type claimOutput struct {
	Body claimDTO
}

type listClaimsInput struct {
	Status string `query:"status" enum:"open,approved,rejected"`
}

type claimListOutput struct {
	Body struct {
		Items []claimDTO `json:"items"`
	}
}

type resolveClaimInput struct {
	ID   string `path:"id"`
	Body struct {
		Status            string `json:"status" enum:"approved,rejected"`
		TransferOwnership bool   `json:"transfer_ownership,omitempty"`
	}
}

func (s *Server) registerChangeRequestRoutes() {
	huma.Post(s.api, "/v1/change-requests", s.createChangeRequestHandler, createdOperation(
		"Submit change request", "change-requests",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Post(s.api, "/v1/change-requests/{id}/cancel", s.cancelChangeRequestHandler, jsonOperation(
		"Cancel change request", "change-requests",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
	huma.Get(s.api, "/v1/admin/change-requests", s.listChangeRequestsHandler, jsonOperation(
		"List change requests", "admin",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusInternalServerError,
	))
	huma.Post(s.api, "/v1/admin/change-requests/{id}/approve", s.approveChangeRequestHandler, jsonOperation(
		"Approve change request", "admin",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Post(s.api, "/v1/admin/change-requests/{id}/reject", s.rejectChangeRequestHandler, jsonOperation(
		"Reject change request", "admin",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerOwnershipRoutes() {
	huma.Post(s.api, "/v1/ownership-claims", s.createClaimHandler, createdOperation(
		"Claim ownership of a game page", "ownership",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
	huma.Get(s.api, "/v1/admin/ownership-claims", s.listClaimsHandler, jsonOperation(
		"List ownership claims", "admin",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusInternalServerError,
	))
	huma.Post(s.api, "/v1/admin/ownership-claims/{id}/resolve", s.resolveClaimHandler, jsonOperation(
		"Resolve ownership claim", "admin",
		stdhttp.StatusBadRequest,
		stdhttp.StatusUnauthorized,
		stdhttp.StatusForbidden,
		stdhttp.StatusNotFound,
		stdhttp.StatusConflict,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) createChangeRequestHandler(ctx context.Context, input *createChangeRequestInput) (*changeRequestOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}
	kind, err := slug.ParseEntityKind(input.Body.Kind)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "parsing entity kind", nil)
	}
	field, ok := changerequest.ParseField(input.Body.Field)
	if !ok {
		return nil, s.toHTTPError(ctx, apperr.BadRequest("unknown field %q", input.Body.Field), "parsing field", nil)
	}

	request, err := s.changeRequests.Create(ctx, actor, kind, input.Body.EntityID, field, input.Body.Value)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "creating change request", logrus.Fields{
			"entity_kind": kind,
			"entity_id":   input.Body.EntityID,
			"field":       field,
		})
	}
	return &changeRequestOutput{Body: toChangeRequestDTO(request)}, nil
}

func (s *Server) cancelChangeRequestHandler(ctx context.Context, input *changeRequestIDInput) (*changeRequestOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}

	request, err := s.changeRequests.Cancel(ctx, actor, input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "cancelling change request", logrus.Fields{"change_request_id": input.ID})
	}
	return &changeRequestOutput{Body: toChangeRequestDTO(request)}, nil
}

func (s *Server) listChangeRequestsHandler(ctx context.Context, input *listChangeRequestsInput) (*changeRequestListOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}

	requests, err := s.changeRequests.List(ctx, admin, changerequest.Status(input.Status))
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "listing change requests", logrus.Fields{"status": input.Status})
	}

	out := &changeRequestListOutput{}
	out.Body.Items = make([]changeRequestDTO, 0, len(requests))
	for i := range requests {
		out.Body.Items = append(out.Body.Items, toChangeRequestDTO(&requests[i]))
	}
	return out, nil
}

func (s *Server) approveChangeRequestHandler(ctx context.Context, input *reviewChangeRequestInput) (*changeRequestOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}

	request, err := s.changeRequests.Approve(ctx, admin, input.ID, input.Body.Notes)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "approving change request", logrus.Fields{"change_request_id": input.ID})
	}
	return &changeRequestOutput{Body: toChangeRequestDTO(request)}, nil
}

func (s *Server) rejectChangeRequestHandler(ctx context.Context, input *reviewChangeRequestInput) (*changeRequestOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}

	request, err := s.changeRequests.Reject(ctx, admin, input.ID, input.Body.Notes)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "rejecting change request", logrus.Fields{"change_request_id": input.ID})
	}
	return &changeRequestOutput{Body: toChangeRequestDTO(request)}, nil
}

func (s *Server) createClaimHandler(ctx context.Context, input *createClaimInput) (*claimOutput, error) {
	actor, err := actorFor(ctx)
	if err != nil {
		return nil, err
	}

	claim, err := s.ownership.ClaimOwnership(ctx, actor, input.Body.PageSlug, input.Body.TargetStudioID, input.Body.Details)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "claiming ownership", logrus.Fields{
			"slug":      input.Body.PageSlug,
			"studio_id": input.Body.TargetStudioID,
		})
	}
	return &claimOutput{Body: toClaimDTO(claim)}, nil
}

func (s *Server) listClaimsHandler(ctx context.Context, input *listClaimsInput) (*claimListOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := s.ownership.List(ctx, admin, ownership.Status(input.Status))
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "listing ownership claims", logrus.Fields{"status": input.Status})
	}

	out := &claimListOutput{}
	out.Body.Items = make([]claimDTO, 0, len(claims))
	for i := range claims {
		out.Body.Items = append(out.Body.Items, toClaimDTO(&claims[i]))
	}
	return out, nil
}

func (s *Server) resolveClaimHandler(ctx context.Context, input *resolveClaimInput) (*claimOutput, error) {
	admin, err := s.adminFor(ctx)
	if err != nil {
		return nil, err
	}
	status, ok := ownership.ParseStatus(input.Body.Status)
	if !ok {
		return nil, s.toHTTPError(ctx, apperr.BadRequest("unknown claim status %q", input.Body.Status), "parsing claim status", nil)
	}

	claim, err := s.ownership.Resolve(ctx, admin, input.ID, status, input.Body.TransferOwnership)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "resolving ownership claim", logrus.Fields{"claim_id": input.ID})
	}
	return &claimOutput{Body: toClaimDTO(claim)}, nil
}
