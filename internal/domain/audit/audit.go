// Package audit records catalog transitions for forensic review.
package audit

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// Actions recorded by the catalog core.
const (
	ActionSlugDemoted           = "slug.demoted"
	ActionSlugPromoted          = "slug.promoted"
	ActionSlugUpdated           = "slug.updated"
	ActionNameUpdated           = "name.updated"
	ActionProtectedSlugAdded    = "protected_slug.added"
	ActionProtectedSlugRemoved  = "protected_slug.removed"
	ActionPageUnpublished       = "page.unpublished"
	ActionPagePublished         = "page.published"
	ActionVerificationChanged   = "verification.changed"
	ActionChangeRequestCreated  = "change_request.created"
	ActionChangeRequestApproved = "change_request.approved"
	ActionChangeRequestRejected = "change_request.rejected"
	ActionChangeRequestCanceled = "change_request.cancelled"
	ActionOwnershipClaimed      = "ownership.claimed"
	ActionOwnershipResolved     = "ownership.resolved"
	ActionOwnershipTransferred  = "ownership.transferred"
	ActionEntityCreated         = "entity.created"
	ActionCascadeFailed         = "cascade.failed"
)

// Entry is a single audit record.
type Entry struct {
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Sink persists audit entries.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// Recorder forwards entries to a Sink without ever failing the caller.
// Sink errors are logged and reported to Sentry.
type Recorder struct {
	sink      Sink
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time
}

// NewRecorder wraps sink. A nil sink yields a recorder that only logs.
func NewRecorder(sink Sink, logger *logrus.Logger, hub *sentry.Hub) *Recorder {
	return &Recorder{sink: sink, logger: logger, sentryHub: hub, now: time.Now}
}

// Record writes entry through the sink. It never returns an error.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil {
		return
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = r.now().UTC()
	}
	if entry.ActorID == "" {
		entry.ActorID = ActorFromContext(ctx)
	}

	fields := logrus.Fields{
		"actor_id":    entry.ActorID,
		"action":      entry.Action,
		"target_type": entry.TargetType,
		"target_id":   entry.TargetID,
	}

	if r.sink == nil {
		if r.logger != nil {
			r.logger.WithFields(fields).Info("audit entry")
		}
		return
	}

	if err := r.sink.Record(ctx, entry); err != nil {
		if r.logger != nil {
			r.logger.WithFields(fields).WithField("error", err.Error()).Error("recording audit entry")
		}
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(err)
		} else if r.sentryHub != nil {
			r.sentryHub.CaptureException(err)
		}
	}
}

type actorContextKey struct{}

// ContextWithActor attaches the acting user's ID so nested transitions are
// attributed without threading it through every call.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext returns the actor attached by ContextWithActor.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(actorContextKey{}).(string); ok {
		return value
	}
	return ""
}
