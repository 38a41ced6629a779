package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
)

const internalErrorMessage = "Something went wrong on our side. Please try again later."

// problem is the JSON error body. Kind mirrors apperr.Kind so clients can
// branch without parsing the detail text.
type problem struct {
	huma.ErrorModel
	Kind string `json:"kind"`
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return stdhttp.StatusNotFound
	case apperr.KindForbidden:
		return stdhttp.StatusForbidden
	case apperr.KindConflict:
		return stdhttp.StatusConflict
	case apperr.KindBadRequest:
		return stdhttp.StatusBadRequest
	default:
		return stdhttp.StatusInternalServerError
	}
}

// toHTTPError converts a domain error into a problem response. Server-side
// failures are recorded and their message is withheld from the client.
func (s *Server) toHTTPError(ctx context.Context, err error, message string, fields logrus.Fields) error {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)

	detail := apperr.MessageOf(err)
	if status >= stdhttp.StatusInternalServerError {
		s.recordError(ctx, err, message, fields)
		detail = internalErrorMessage
	}

	return &problem{
		ErrorModel: huma.ErrorModel{
			Title:  stdhttp.StatusText(status),
			Status: status,
			Detail: detail,
		},
		Kind: string(kind),
	}
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		if actor := ActorFromContext(ctx); actor.ID != "" {
			entry = entry.WithField("actor_id", actor.ID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
