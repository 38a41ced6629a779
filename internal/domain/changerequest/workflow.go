// Package changerequest routes slug and name edits of verified entities
// through an admin approval queue.
package changerequest

import (
	"context"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/slug"
)

const maxNameLength = 120

// Options wires a Workflow.
type Options struct {
	Store     Store
	Studios   catalog.StudioStore
	Games     catalog.GameStore
	Pages     catalog.PageStore
	Access    *catalog.AccessPolicy
	Registry  *slug.Registry
	Lifecycle *slug.Lifecycle
	Cascade   *slug.Unpublisher
	Audit     *audit.Recorder
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Workflow creates and reviews change requests.
type Workflow struct {
	store     Store
	studios   catalog.StudioStore
	games     catalog.GameStore
	pages     catalog.PageStore
	access    *catalog.AccessPolicy
	registry  *slug.Registry
	lifecycle *slug.Lifecycle
	cascade   *slug.Unpublisher
	audit     *audit.Recorder
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time
}

// NewWorkflow validates and builds the workflow.
func NewWorkflow(opts Options) (*Workflow, error) {
	switch {
	case opts.Store == nil:
		return nil, eris.New("change request store is required")
	case opts.Studios == nil || opts.Games == nil || opts.Pages == nil:
		return nil, eris.New("catalog stores are required")
	case opts.Access == nil:
		return nil, eris.New("access policy is required")
	case opts.Registry == nil || opts.Lifecycle == nil || opts.Cascade == nil:
		return nil, eris.New("slug registry, lifecycle and cascade are required")
	}
	return &Workflow{
		store:     opts.Store,
		studios:   opts.Studios,
		games:     opts.Games,
		pages:     opts.Pages,
		access:    opts.Access,
		registry:  opts.Registry,
		lifecycle: opts.Lifecycle,
		cascade:   opts.Cascade,
		audit:     opts.Audit,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
		now:       time.Now,
	}, nil
}

// Create opens a pending request after checking edit rights, that the value
// actually changes, and that no pending request exists for the same field.
func (w *Workflow) Create(ctx context.Context, actor catalog.Actor, kind slug.EntityKind, entityID string, field Field, requestedValue string) (*ChangeRequest, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	if _, ok := ParseField(string(field)); !ok {
		return nil, apperr.BadRequest("unsupported field %q", field)
	}

	current, err := w.currentValue(ctx, actor, kind, entityID, field)
	if err != nil {
		return nil, err
	}

	requested, err := normalizeValue(field, requestedValue)
	if err != nil {
		return nil, err
	}
	if requested == current {
		return nil, apperr.BadRequest("requested %s equals the current value", field)
	}

	exists, err := w.store.PendingChangeRequestExists(ctx, kind, entityID, field)
	if err != nil {
		w.recordError(logrus.Fields{"entity_kind": kind, "entity_id": entityID, "field": field}, err, "checking pending change requests")
		return nil, apperr.Internal(err, "checking pending change requests")
	}
	if exists {
		return nil, apperr.Conflict("a pending %s change request already exists", field)
	}

	now := w.now().UTC()
	request := &ChangeRequest{
		Kind:           kind,
		EntityID:       entityID,
		Field:          field,
		CurrentValue:   current,
		RequestedValue: requested,
		Status:         StatusPending,
		RequestedBy:    actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := w.store.CreateChangeRequest(ctx, request); err != nil {
		w.recordError(logrus.Fields{"entity_kind": kind, "entity_id": entityID, "field": field}, err, "creating change request")
		return nil, apperr.Passthrough(err, "creating change request")
	}

	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionChangeRequestCreated,
		TargetType: "change_request",
		TargetID:   request.ID,
		Metadata: map[string]any{
			"entity_kind":     string(kind),
			"entity_id":       entityID,
			"field":           string(field),
			"current_value":   current,
			"requested_value": requested,
		},
	})

	return request, nil
}

// Approve applies a pending request. Slug protection is re-evaluated now,
// since the protected list may have changed since the request was filed.
func (w *Workflow) Approve(ctx context.Context, admin catalog.Actor, requestID, notes string) (*ChangeRequest, error) {
	if err := catalog.RequireAdmin(admin); err != nil {
		return nil, err
	}
	ctx = audit.ContextWithActor(ctx, admin.ID)

	request, err := w.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	outcome := map[string]any{}
	switch request.Field {
	case FieldSlug:
		err = w.applySlug(ctx, request, outcome)
	case FieldName:
		err = w.applyName(ctx, request)
	default:
		err = apperr.BadRequest("unsupported field %q", request.Field)
	}
	if err != nil {
		return nil, err
	}

	now := w.now().UTC()
	review := Review{Status: StatusApproved, ReviewedBy: admin.ID, Notes: strings.TrimSpace(notes), At: now}
	if err := w.store.ReviewChangeRequest(ctx, request.ID, review); err != nil {
		w.recordError(logrus.Fields{"change_request_id": request.ID}, err, "marking change request approved")
		return nil, apperr.Internal(err, "marking change request %s approved", request.ID)
	}
	applyReview(request, review)

	outcome["entity_kind"] = string(request.Kind)
	outcome["entity_id"] = request.EntityID
	outcome["field"] = string(request.Field)
	outcome["requested_value"] = request.RequestedValue
	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionChangeRequestApproved,
		TargetType: "change_request",
		TargetID:   request.ID,
		Metadata:   outcome,
	})

	return request, nil
}

// Reject closes a pending request. Notes are required.
func (w *Workflow) Reject(ctx context.Context, admin catalog.Actor, requestID, notes string) (*ChangeRequest, error) {
	if err := catalog.RequireAdmin(admin); err != nil {
		return nil, err
	}
	ctx = audit.ContextWithActor(ctx, admin.ID)

	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return nil, apperr.BadRequest("rejection notes are required")
	}

	request, err := w.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	review := Review{Status: StatusRejected, ReviewedBy: admin.ID, Notes: trimmed, At: w.now().UTC()}
	if err := w.store.ReviewChangeRequest(ctx, request.ID, review); err != nil {
		w.recordError(logrus.Fields{"change_request_id": request.ID}, err, "marking change request rejected")
		return nil, apperr.Internal(err, "rejecting change request %s", request.ID)
	}
	applyReview(request, review)

	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionChangeRequestRejected,
		TargetType: "change_request",
		TargetID:   request.ID,
		Metadata:   map[string]any{"notes": trimmed},
	})
	return request, nil
}

// Cancel withdraws a pending request. Only its requester may cancel it.
func (w *Workflow) Cancel(ctx context.Context, actor catalog.Actor, requestID string) (*ChangeRequest, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	request, err := w.store.GetChangeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequestedBy != actor.ID {
		return nil, apperr.Forbidden("only the requester may cancel change request %s", requestID)
	}
	if request.Status != StatusPending {
		return nil, apperr.BadRequest("change request %s is %s", requestID, request.Status)
	}

	review := Review{Status: StatusCancelled, ReviewedBy: actor.ID, At: w.now().UTC()}
	if err := w.store.ReviewChangeRequest(ctx, request.ID, review); err != nil {
		w.recordError(logrus.Fields{"change_request_id": request.ID}, err, "cancelling change request")
		return nil, apperr.Internal(err, "cancelling change request %s", request.ID)
	}
	applyReview(request, review)

	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionChangeRequestCanceled,
		TargetType: "change_request",
		TargetID:   request.ID,
	})
	return request, nil
}

// List returns requests in status, newest first.
func (w *Workflow) List(ctx context.Context, admin catalog.Actor, status Status) ([]ChangeRequest, error) {
	if err := catalog.RequireAdmin(admin); err != nil {
		return nil, err
	}
	items, err := w.store.ListChangeRequests(ctx, status)
	if err != nil {
		return nil, apperr.Internal(err, "listing change requests")
	}
	return items, nil
}

func (w *Workflow) pendingRequest(ctx context.Context, requestID string) (*ChangeRequest, error) {
	request, err := w.store.GetChangeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != StatusPending {
		return nil, apperr.BadRequest("change request %s is %s", requestID, request.Status)
	}
	return request, nil
}

func (w *Workflow) applySlug(ctx context.Context, request *ChangeRequest, outcome map[string]any) error {
	requested := slug.Normalize(request.RequestedValue)

	protected, err := w.registry.IsProtected(ctx, request.Kind, requested)
	if err != nil {
		return err
	}
	outcome["protected"] = protected

	if !protected {
		if _, err := w.lifecycle.Assign(ctx, request.Kind, request.EntityID, requested); err != nil {
			return err
		}
		return nil
	}

	switch request.Kind {
	case slug.KindStudio:
		studio, err := w.studios.GetStudio(ctx, request.EntityID)
		if err != nil {
			return err
		}
		if _, err := w.lifecycle.Demote(ctx, slug.KindStudio, studio.ID, &requested); err != nil {
			return err
		}
		if !studio.IsVerified {
			return nil
		}
		// The verified flag stays; re-verifying promotes the staged slug.
		unpublished, err := w.cascade.UnpublishAllForStudio(ctx, studio.ID)
		outcome["unpublished_pages"] = unpublished
		return err

	case slug.KindGamePage:
		page, err := w.pages.GetPage(ctx, request.EntityID)
		if err != nil {
			return err
		}
		if _, err := w.lifecycle.Demote(ctx, slug.KindGamePage, page.ID, &requested); err != nil {
			return err
		}
		game, err := w.games.GetGame(ctx, page.GameID)
		if err != nil {
			return apperr.Internal(err, "loading game %s", page.GameID)
		}
		if game.IsVerified {
			if err := w.games.SetGameVerified(ctx, game.ID, false); err != nil {
				w.recordError(logrus.Fields{"game_id": game.ID}, err, "unverifying game after protected slug approval")
				return apperr.Internal(err, "unverifying game %s", game.ID)
			}
			w.recordVerification(ctx, "game", game.ID, false)
		}
		unpublished, err := w.cascade.UnpublishPage(ctx, page, "change_request", request.ID)
		outcome["unpublished_pages"] = unpublished
		return err
	}

	return apperr.BadRequest("unknown entity kind %q", request.Kind)
}

func (w *Workflow) applyName(ctx context.Context, request *ChangeRequest) error {
	now := w.now().UTC()
	var err error
	switch request.Kind {
	case slug.KindStudio:
		err = w.studios.UpdateStudioName(ctx, request.EntityID, request.RequestedValue, now)
	case slug.KindGamePage:
		err = w.pages.UpdatePageTitle(ctx, request.EntityID, request.RequestedValue, now)
	default:
		return apperr.BadRequest("unknown entity kind %q", request.Kind)
	}
	if err != nil {
		w.recordError(logrus.Fields{"entity_kind": request.Kind, "entity_id": request.EntityID}, err, "applying name change")
		return apperr.Passthrough(err, "applying name change")
	}

	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionNameUpdated,
		TargetType: string(request.Kind),
		TargetID:   request.EntityID,
		Metadata: map[string]any{
			"previous_name": request.CurrentValue,
			"name":          request.RequestedValue,
		},
	})
	return nil
}

func (w *Workflow) currentValue(ctx context.Context, actor catalog.Actor, kind slug.EntityKind, entityID string, field Field) (string, error) {
	switch kind {
	case slug.KindStudio:
		studio, err := w.access.RequireStudioEditor(ctx, actor, entityID)
		if err != nil {
			return "", err
		}
		if field == FieldSlug {
			return studio.EffectiveSlug(), nil
		}
		return studio.Name, nil
	case slug.KindGamePage:
		page, _, err := w.access.RequirePageEditor(ctx, actor, entityID)
		if err != nil {
			return "", err
		}
		if field == FieldSlug {
			return page.EffectiveSlug(), nil
		}
		return page.Title, nil
	default:
		return "", apperr.BadRequest("unknown entity kind %q", kind)
	}
}

func (w *Workflow) recordVerification(ctx context.Context, targetType, id string, verified bool) {
	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionVerificationChanged,
		TargetType: targetType,
		TargetID:   id,
		Metadata:   map[string]any{"verified": verified, "reason": "protected slug approved"},
	})
}

func (w *Workflow) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}
	if w.logger != nil {
		entry := w.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}
	if w.sentryHub != nil {
		w.sentryHub.CaptureException(err)
	}
}

func applyReview(request *ChangeRequest, review Review) {
	request.Status = review.Status
	reviewer := review.ReviewedBy
	at := review.At
	request.ReviewedBy = &reviewer
	request.ReviewedAt = &at
	request.ReviewNotes = review.Notes
	request.UpdatedAt = review.At
}

// NormalizeName trims a display name and checks its length.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperr.BadRequest("name is required")
	}
	if len(name) > maxNameLength {
		return "", apperr.BadRequest("name must be at most %d characters", maxNameLength)
	}
	return name, nil
}

func normalizeValue(field Field, raw string) (string, error) {
	if field == FieldSlug {
		return slug.Validate(raw)
	}
	return NormalizeName(raw)
}
