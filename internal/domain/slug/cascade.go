package slug

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
)

// Unpublisher forces published primary pages back to draft when the identity
// above them stops being trustworthy. Writes are per page and not rolled back:
// a mid-batch failure leaves earlier pages unpublished and reports Internal.
type Unpublisher struct {
	games  catalog.GameStore
	pages  catalog.PageStore
	audit  *audit.Recorder
	logger *logrus.Logger
	now    func() time.Time
}

// NewUnpublisher wires the cascade.
func NewUnpublisher(games catalog.GameStore, pages catalog.PageStore, recorder *audit.Recorder, logger *logrus.Logger) (*Unpublisher, error) {
	if games == nil || pages == nil {
		return nil, eris.New("game and page stores are required")
	}
	return &Unpublisher{games: games, pages: pages, audit: recorder, logger: logger, now: time.Now}, nil
}

// UnpublishAllForStudio unpublishes the published primary page of every game
// the studio owns and returns the affected page IDs.
func (u *Unpublisher) UnpublishAllForStudio(ctx context.Context, studioID string) ([]string, error) {
	gameIDs, err := u.games.ListGameIDsByStudio(ctx, studioID)
	if err != nil {
		return nil, apperr.Internal(err, "listing games of studio %s", studioID)
	}
	return u.unpublish(ctx, gameIDs, "studio", studioID)
}

// UnpublishForGame unpublishes the game's published primary page.
func (u *Unpublisher) UnpublishForGame(ctx context.Context, gameID string) ([]string, error) {
	return u.unpublish(ctx, []string{gameID}, "game", gameID)
}

// UnpublishPage moves a single page to draft when it is published.
func (u *Unpublisher) UnpublishPage(ctx context.Context, page *catalog.GamePage, causeType, causeID string) (bool, error) {
	if page == nil || page.Visibility != catalog.VisibilityPublished {
		return false, nil
	}
	if err := u.pages.SetPageVisibility(ctx, page.ID, catalog.VisibilityDraft, u.now().UTC()); err != nil {
		u.logError(logrus.Fields{"page_id": page.ID, "cause_type": causeType, "cause_id": causeID}, err, "unpublishing page")
		return false, apperr.Internal(err, "unpublishing page %s", page.ID)
	}
	u.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionPageUnpublished,
		TargetType: string(KindGamePage),
		TargetID:   page.ID,
		Metadata: map[string]any{
			"game_id":    page.GameID,
			"cause_type": causeType,
			"cause_id":   causeID,
		},
	})
	return true, nil
}

func (u *Unpublisher) unpublish(ctx context.Context, gameIDs []string, causeType, causeID string) ([]string, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	pages, err := u.pages.ListPublishedPrimaryPages(ctx, gameIDs)
	if err != nil {
		return nil, apperr.Internal(err, "listing published pages for %s %s", causeType, causeID)
	}

	at := u.now().UTC()
	unpublished := make([]string, 0, len(pages))
	var failures []error

	for _, page := range pages {
		if err := u.pages.SetPageVisibility(ctx, page.ID, catalog.VisibilityDraft, at); err != nil {
			failures = append(failures, eris.Wrapf(err, "unpublishing page %s", page.ID))
			u.logError(logrus.Fields{"page_id": page.ID, "cause_type": causeType, "cause_id": causeID}, err, "cascade unpublish failed")
			continue
		}
		unpublished = append(unpublished, page.ID)
		u.audit.Record(ctx, audit.Entry{
			Action:     audit.ActionPageUnpublished,
			TargetType: string(KindGamePage),
			TargetID:   page.ID,
			Metadata: map[string]any{
				"game_id":    page.GameID,
				"cause_type": causeType,
				"cause_id":   causeID,
				"cascade":    true,
			},
		})
	}

	if len(failures) > 0 {
		u.audit.Record(ctx, audit.Entry{
			Action:     audit.ActionCascadeFailed,
			TargetType: causeType,
			TargetID:   causeID,
			Metadata: map[string]any{
				"unpublished": unpublished,
				"failed":      len(failures),
			},
		})
		return unpublished, apperr.Internal(errors.Join(failures...), "unpublished %d of %d pages for %s %s", len(unpublished), len(pages), causeType, causeID)
	}

	return unpublished, nil
}

func (u *Unpublisher) logError(fields logrus.Fields, err error, message string) {
	if u.logger == nil || err == nil {
		return
	}
	u.logger.WithField("error", err.Error()).WithFields(fields).Error(message)
}
