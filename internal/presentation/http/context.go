package http

import (
	"context"

	"playshelf/app/internal/domain/catalog"
)

type contextKey string

const (
	requestIDContextKey contextKey = "playshelf/request-id"
	actorContextKey     contextKey = "playshelf/actor"
)

// RequestIDFromContext extracts the request identifier from the context when available.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDContextKey).(string); ok {
		return value
	}
	return ""
}

// ActorFromContext returns the caller established by the actor middleware.
// Anonymous requests yield the zero Actor.
func ActorFromContext(ctx context.Context) catalog.Actor {
	if ctx == nil {
		return catalog.Actor{}
	}
	if value, ok := ctx.Value(actorContextKey).(catalog.Actor); ok {
		return value
	}
	return catalog.Actor{}
}
