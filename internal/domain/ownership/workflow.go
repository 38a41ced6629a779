// Package ownership handles claims that a game page belongs to another studio.
package ownership

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

const maxDetailsLength = 2000

// Options wires a Workflow.
type Options struct {
	Store     Store
	Games     catalog.GameStore
	Pages     catalog.PageStore
	Access    *catalog.AccessPolicy
	Gate      *slug.Gate
	Audit     *audit.Recorder
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Workflow opens and resolves ownership claims.
type Workflow struct {
	store     Store
	games     catalog.GameStore
	pages     catalog.PageStore
	access    *catalog.AccessPolicy
	gate      *slug.Gate
	audit     *audit.Recorder
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time
}

// NewWorkflow validates and builds the workflow.
func NewWorkflow(opts Options) (*Workflow, error) {
	switch {
	case opts.Store == nil:
		return nil, eris.New("ownership claim store is required")
	case opts.Games == nil || opts.Pages == nil:
		return nil, eris.New("game and page stores are required")
	case opts.Access == nil:
		return nil, eris.New("access policy is required")
	case opts.Gate == nil:
		return nil, eris.New("verification gate is required")
	}
	return &Workflow{
		store:     opts.Store,
		games:     opts.Games,
		pages:     opts.Pages,
		access:    opts.Access,
		gate:      opts.Gate,
		audit:     opts.Audit,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
		now:       time.Now,
	}, nil
}

// ClaimOwnership opens a claim on the page currently live at pageSlug on
// behalf of targetStudioID. The actor must be able to edit the target studio.
func (w *Workflow) ClaimOwnership(ctx context.Context, actor catalog.Actor, pageSlug, targetStudioID, details string) (*Claim, error) {
	ctx = audit.ContextWithActor(ctx, actor.ID)

	normalized := slug.Normalize(pageSlug)
	if normalized == "" {
		return nil, apperr.BadRequest("page slug is required")
	}
	trimmedDetails := strings.TrimSpace(details)
	if len(trimmedDetails) > maxDetailsLength {
		return nil, apperr.BadRequest("details must be at most %d characters", maxDetailsLength)
	}

	page, err := w.pages.FindPageBySlug(ctx, normalized)
	if err != nil {
		return nil, apperr.Internal(err, "looking up page %q", normalized)
	}
	if page == nil {
		return nil, apperr.NotFound("no page with slug %q", normalized)
	}
	if !page.IsClaimable {
		return nil, apperr.Forbidden("page %q cannot be claimed", normalized)
	}

	game, err := w.games.GetGame(ctx, page.GameID)
	if err != nil {
		return nil, err
	}
	if game.OwnerStudioID == targetStudioID {
		return nil, apperr.BadRequest("studio %s already owns page %q", targetStudioID, normalized)
	}

	if _, err := w.access.RequireStudioEditor(ctx, actor, targetStudioID); err != nil {
		return nil, err
	}

	exists, err := w.store.OpenClaimExists(ctx, page.ID, targetStudioID)
	if err != nil {
		w.recordError(logrus.Fields{"page_id": page.ID, "studio_id": targetStudioID}, err, "checking open claims")
		return nil, apperr.Internal(err, "checking open claims")
	}
	if exists {
		return nil, apperr.Conflict("an open claim already exists for page %q and studio %s", normalized, targetStudioID)
	}

	now := w.now().UTC()
	claim := &Claim{
		PageID:            page.ID,
		GameID:            game.ID,
		CurrentStudioID:   game.OwnerStudioID,
		RequestedStudioID: targetStudioID,
		ClaimedSlug:       page.EffectiveSlug(),
		Details:           trimmedDetails,
		Status:            StatusOpen,
		ClaimedBy:         actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := w.store.CreateClaim(ctx, claim); err != nil {
		w.recordError(logrus.Fields{"page_id": page.ID, "studio_id": targetStudioID}, err, "creating ownership claim")
		return nil, apperr.Passthrough(err, "creating ownership claim")
	}

	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionOwnershipClaimed,
		TargetType: "ownership_claim",
		TargetID:   claim.ID,
		Metadata: map[string]any{
			"page_id":             page.ID,
			"game_id":             game.ID,
			"current_studio_id":   game.OwnerStudioID,
			"requested_studio_id": targetStudioID,
			"claimed_slug":        claim.ClaimedSlug,
		},
	})

	return claim, nil
}

// Resolve closes an open claim. Approving with transfer hands the game to the
// requested studio, promotes the page's staged slug, marks the game verified
// and retires the page from further claims. A promotion Conflict leaves the
// claim open.
func (w *Workflow) Resolve(ctx context.Context, admin catalog.Actor, claimID string, status Status, transferOwnership bool) (*Claim, error) {
	if err := catalog.RequireAdmin(admin); err != nil {
		return nil, err
	}
	ctx = audit.ContextWithActor(ctx, admin.ID)

	if _, ok := ParseStatus(string(status)); !ok {
		return nil, apperr.BadRequest("unsupported resolution status %q", status)
	}

	claim, err := w.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status != StatusOpen {
		return nil, apperr.BadRequest("ownership claim %s is %s", claimID, claim.Status)
	}

	metadata := map[string]any{
		"status":             string(status),
		"transfer_ownership": transferOwnership,
		"page_id":            claim.PageID,
		"game_id":            claim.GameID,
	}

	if status == StatusApproved && transferOwnership {
		before, after, err := w.transfer(ctx, claim)
		if err != nil {
			return nil, err
		}
		metadata["studio_before"] = before
		metadata["studio_after"] = after
	} else {
		game, err := w.games.GetGame(ctx, claim.GameID)
		if err != nil {
			return nil, err
		}
		metadata["studio_before"] = game.OwnerStudioID
		metadata["studio_after"] = game.OwnerStudioID
	}

	resolution := Resolution{Status: status, HandledBy: admin.ID, At: w.now().UTC()}
	if err := w.store.ResolveClaim(ctx, claim.ID, resolution); err != nil {
		w.recordError(logrus.Fields{"claim_id": claim.ID}, err, "resolving ownership claim")
		return nil, apperr.Internal(err, "resolving ownership claim %s", claim.ID)
	}
	handledBy := admin.ID
	handledAt := resolution.At
	claim.Status = status
	claim.HandledBy = &handledBy
	claim.HandledAt = &handledAt
	claim.UpdatedAt = resolution.At

	w.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionOwnershipResolved,
		TargetType: "ownership_claim",
		TargetID:   claim.ID,
		Metadata:   metadata,
	})

	return claim, nil
}

// List returns claims in status, newest first.
func (w *Workflow) List(ctx context.Context, admin catalog.Actor, status Status) ([]Claim, error) {
	if err := catalog.RequireAdmin(admin); err != nil {
		return nil, err
	}
	claims, err := w.store.ListClaims(ctx, status)
	if err != nil {
		return nil, apperr.Internal(err, "listing ownership claims")
	}
	return claims, nil
}

func (w *Workflow) transfer(ctx context.Context, claim *Claim) (string, string, error) {
	game, err := w.games.GetGame(ctx, claim.GameID)
	if err != nil {
		return "", "", err
	}
	before := game.OwnerStudioID
	fields := logrus.Fields{"claim_id": claim.ID, "game_id": game.ID, "page_id": claim.PageID}

	if before != claim.RequestedStudioID {
		if err := w.games.SetGameOwner(ctx, game.ID, claim.RequestedStudioID); err != nil {
			w.recordError(fields, err, "reassigning game owner")
			return "", "", apperr.Internal(err, "reassigning game %s", game.ID)
		}
		w.audit.Record(ctx, audit.Entry{
			Action:     audit.ActionOwnershipTransferred,
			TargetType: "game",
			TargetID:   game.ID,
			Metadata: map[string]any{
				"claim_id":      claim.ID,
				"studio_before": before,
				"studio_after":  claim.RequestedStudioID,
			},
		})
	}

	if _, err := w.gate.OnVerify(ctx, slug.KindGamePage, claim.PageID); err != nil {
		return "", "", err
	}

	if !game.IsVerified {
		if err := w.games.SetGameVerified(ctx, game.ID, true); err != nil {
			w.recordError(fields, err, "verifying transferred game")
			return "", "", apperr.Internal(err, "verifying game %s", game.ID)
		}
		w.audit.Record(ctx, audit.Entry{
			Action:     audit.ActionVerificationChanged,
			TargetType: "game",
			TargetID:   game.ID,
			Metadata:   map[string]any{"verified": true, "reason": "ownership transferred"},
		})
	}

	if err := w.pages.SetPageClaimable(ctx, claim.PageID, false); err != nil {
		w.recordError(fields, err, "disabling page claims")
		return "", "", apperr.Internal(err, "disabling claims on page %s", claim.PageID)
	}

	return before, claim.RequestedStudioID, nil
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
