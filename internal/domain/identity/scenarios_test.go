package identity_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"playshelf/app/internal/app/bootstrap"
	catalogdata "playshelf/app/internal/data/catalog"
	"playshelf/app/internal/data/database"
	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/ownership"
	"playshelf/app/internal/domain/slug"
	"playshelf/app/internal/platform/config"
	applog "playshelf/app/internal/platform/log"
)

var (
	owner     = catalog.Actor{ID: "user-owner"}
	claimant  = catalog.Actor{ID: "user-claimant"}
	stranger  = catalog.Actor{ID: "user-stranger"}
	moderator = catalog.Actor{ID: "admin-1", Admin: true}
)

func newServices(t *testing.T) *bootstrap.Services {
	t.Helper()

	deps := bootstrap.Dependencies{
		Config: config.Config{
			DBPath: filepath.Join(t.TempDir(), "identity.db"),
			Slugs: config.Slugs{
				TemporaryAttempts:     10,
				TemporarySuffixLength: 10,
				EditCooldown:          24 * time.Hour,
			},
		},
		Logger: applog.Discard(),
	}

	db, err := bootstrap.OpenDatabase(context.Background(), deps)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	services, err := bootstrap.BuildServices(db, deps)
	if err != nil {
		t.Fatalf("building services: %v", err)
	}
	return services
}

func mustStudio(t *testing.T, services *bootstrap.Services, actor catalog.Actor, name, rawSlug string) *catalog.Studio {
	t.Helper()

	studio, err := services.Identity.CreateStudio(context.Background(), actor, name, rawSlug)
	if err != nil {
		t.Fatalf("CreateStudio(%q): %v", rawSlug, err)
	}
	return studio
}

func mustGame(t *testing.T, services *bootstrap.Services, actor catalog.Actor, studioID, name, rawSlug string) (*catalog.Game, *catalog.GamePage) {
	t.Helper()

	game, page, err := services.Identity.CreateGame(context.Background(), actor, studioID, name, rawSlug)
	if err != nil {
		t.Fatalf("CreateGame(%q): %v", rawSlug, err)
	}
	return game, page
}

func expectKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !apperr.IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

func TestScenarioUnverifiedStudioRequestsReservedSlug(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Acme", "acme")

	edit, err := services.Identity.UpdateSlug(ctx, owner, slug.KindStudio, studio.ID, "nintendo")
	if err != nil {
		t.Fatalf("UpdateSlug: %v", err)
	}
	if !edit.Staged || edit.ChangeRequest != nil {
		t.Fatalf("expected staged edit without change request, got %+v", edit)
	}

	stored, err := services.Repository.GetStudio(ctx, studio.ID)
	if err != nil {
		t.Fatalf("GetStudio: %v", err)
	}
	if !strings.HasPrefix(stored.Slug, "pending-studio-") {
		t.Fatalf("expected temporary slug, got %q", stored.Slug)
	}
	if stored.RequestedSlug == nil || *stored.RequestedSlug != "nintendo" {
		t.Fatalf("expected nintendo staged, got %v", stored.RequestedSlug)
	}
	if stored.IsVerified {
		t.Fatalf("expected studio to stay unverified")
	}

	_, err = services.Identity.UpdateSlug(ctx, owner, slug.KindStudio, studio.ID, "acme-two")
	expectKind(t, err, apperr.KindBadRequest)
}

func TestScenarioVerifyAbortsWhenStagedSlugIsTaken(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Epic Fan Works", "epic-fan-works")

	first, firstPage := mustGame(t, services, owner, studio.ID, "Fortnite", "fortnite")
	second, secondPage := mustGame(t, services, owner, studio.ID, "Fortnite Again", "fortnite")

	for _, page := range []*catalog.GamePage{firstPage, secondPage} {
		if !strings.HasPrefix(page.Slug, "pending-game-") || page.EffectiveSlug() != "fortnite" {
			t.Fatalf("expected fortnite staged behind a temporary slug, got %+v", page)
		}
	}

	if _, err := services.Identity.SetGameVerified(ctx, moderator, second.ID, true); err != nil {
		t.Fatalf("verifying second game: %v", err)
	}
	promoted, _ := services.Repository.GetPage(ctx, secondPage.ID)
	if promoted.Slug != "fortnite" {
		t.Fatalf("expected second page to hold fortnite live, got %q", promoted.Slug)
	}

	_, err := services.Identity.SetGameVerified(ctx, moderator, first.ID, true)
	expectKind(t, err, apperr.KindConflict)

	game, _ := services.Repository.GetGame(ctx, first.ID)
	if game.IsVerified {
		t.Fatalf("expected first game to remain unverified after conflict")
	}
	page, _ := services.Repository.GetPage(ctx, firstPage.ID)
	if !strings.HasPrefix(page.Slug, "pending-game-") {
		t.Fatalf("expected first page to keep its temporary slug, got %q", page.Slug)
	}
}

func TestScenarioApprovedProtectedSlugUnpublishesStudioGames(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Cozy Games", "cozygames")

	_, pageA := mustGame(t, services, owner, studio.ID, "Tea Shop", "tea-shop")
	_, pageB := mustGame(t, services, owner, studio.ID, "Garden Days", "garden-days")
	_, pageC := mustGame(t, services, owner, studio.ID, "Rainy Town", "rainy-town")

	for _, page := range []*catalog.GamePage{pageA, pageB} {
		if _, err := services.Identity.PublishPage(ctx, owner, page.ID); err != nil {
			t.Fatalf("PublishPage: %v", err)
		}
	}

	if _, err := services.Identity.SetStudioVerified(ctx, moderator, studio.ID, true); err != nil {
		t.Fatalf("SetStudioVerified: %v", err)
	}

	edit, err := services.Identity.UpdateSlug(ctx, owner, slug.KindStudio, studio.ID, "nintendo")
	if err != nil {
		t.Fatalf("UpdateSlug: %v", err)
	}
	if edit.ChangeRequest == nil || edit.ChangeRequest.Status != changerequest.StatusPending {
		t.Fatalf("expected a pending change request for a verified studio, got %+v", edit)
	}

	if _, err := services.ChangeRequests.Approve(ctx, moderator, edit.ChangeRequest.ID, "approved with review"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	for _, id := range []string{pageA.ID, pageB.ID} {
		page, _ := services.Repository.GetPage(ctx, id)
		if page.Visibility != catalog.VisibilityDraft || page.UnpublishedAt == nil {
			t.Fatalf("expected page %s unpublished with timestamp, got %+v", id, page)
		}
	}
	untouched, _ := services.Repository.GetPage(ctx, pageC.ID)
	if untouched.Visibility != catalog.VisibilityDraft || untouched.UnpublishedAt != nil {
		t.Fatalf("expected draft page untouched, got %+v", untouched)
	}

	stored, _ := services.Repository.GetStudio(ctx, studio.ID)
	if !stored.IsVerified || !strings.HasPrefix(stored.Slug, "pending-studio-") || stored.EffectiveSlug() != "nintendo" {
		t.Fatalf("expected verified studio with nintendo staged, got %+v", stored)
	}

	entries, err := services.Repository.ListAuditEntries(ctx, catalogdata.AuditFilter{Action: "page.unpublished"})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 unpublish audit entries, got %d", len(entries))
	}

	reverified, err := services.Identity.SetStudioVerified(ctx, moderator, studio.ID, true)
	if err != nil {
		t.Fatalf("re-verifying studio: %v", err)
	}
	if reverified.Slug != "nintendo" || reverified.RequestedSlug != nil {
		t.Fatalf("expected nintendo promoted on re-verification, got %+v", reverified)
	}
}

func TestScenarioOwnershipTransferPromotesClaimedPage(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	squatter := mustStudio(t, services, owner, "Fan Remakes", "fan-remakes")
	official := mustStudio(t, services, claimant, "Hyrule Works", "hyrule-works")

	game, page := mustGame(t, services, owner, squatter.ID, "Zelda", "zelda")
	if page.EffectiveSlug() != "zelda" || page.Slug == "zelda" {
		t.Fatalf("expected zelda staged, got %+v", page)
	}

	_, err := services.Ownership.ClaimOwnership(ctx, stranger, page.Slug, official.ID, "")
	expectKind(t, err, apperr.KindForbidden)

	_, err = services.Ownership.ClaimOwnership(ctx, owner, page.Slug, squatter.ID, "")
	expectKind(t, err, apperr.KindBadRequest)

	claim, err := services.Ownership.ClaimOwnership(ctx, claimant, page.Slug, official.ID, "We hold the trademark.")
	if err != nil {
		t.Fatalf("ClaimOwnership: %v", err)
	}
	if claim.ClaimedSlug != "zelda" || claim.Status != ownership.StatusOpen {
		t.Fatalf("unexpected claim %+v", claim)
	}

	_, err = services.Ownership.ClaimOwnership(ctx, claimant, page.Slug, official.ID, "again")
	expectKind(t, err, apperr.KindConflict)

	resolved, err := services.Ownership.Resolve(ctx, moderator, claim.ID, ownership.StatusApproved, true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != ownership.StatusApproved || resolved.HandledBy == nil || *resolved.HandledBy != moderator.ID {
		t.Fatalf("expected approved claim handled by admin, got %+v", resolved)
	}

	storedGame, _ := services.Repository.GetGame(ctx, game.ID)
	if storedGame.OwnerStudioID != official.ID || !storedGame.IsVerified {
		t.Fatalf("expected verified game owned by %s, got %+v", official.ID, storedGame)
	}
	storedPage, _ := services.Repository.GetPage(ctx, page.ID)
	if storedPage.Slug != "zelda" || storedPage.RequestedSlug != nil || storedPage.IsClaimable {
		t.Fatalf("expected promoted unclaimable page, got %+v", storedPage)
	}

	_, err = services.Ownership.ClaimOwnership(ctx, owner, "zelda", squatter.ID, "")
	expectKind(t, err, apperr.KindForbidden)

	_, err = services.Ownership.Resolve(ctx, moderator, claim.ID, ownership.StatusRejected, false)
	expectKind(t, err, apperr.KindBadRequest)
}

func TestScenarioConcurrentPromotionsOfSameSlug(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()

	if _, err := services.Registry.AddProtected(ctx, moderator.ID, slug.KindStudio, "foo", "contested"); err != nil {
		t.Fatalf("AddProtected: %v", err)
	}
	first := mustStudio(t, services, owner, "Foo One", "foo")
	second := mustStudio(t, services, claimant, "Foo Two", "foo")

	var wins, conflicts atomic.Int32
	var group errgroup.Group
	for _, id := range []string{first.ID, second.ID} {
		group.Go(func() error {
			_, err := services.Lifecycle.Promote(ctx, slug.KindStudio, id)
			switch {
			case err == nil:
				wins.Add(1)
			case apperr.IsKind(err, apperr.KindConflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("unexpected promotion error: %v", err)
	}

	if wins.Load() != 1 || conflicts.Load() != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got %d wins and %d conflicts", wins.Load(), conflicts.Load())
	}
}

func TestChangeRequestLifecycle(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Moonlit", "moonlit")
	if _, err := services.Identity.SetStudioVerified(ctx, moderator, studio.ID, true); err != nil {
		t.Fatalf("SetStudioVerified: %v", err)
	}

	_, err := services.ChangeRequests.Create(ctx, owner, slug.KindStudio, studio.ID, changerequest.FieldSlug, "moonlit")
	expectKind(t, err, apperr.KindBadRequest)

	_, err = services.ChangeRequests.Create(ctx, stranger, slug.KindStudio, studio.ID, changerequest.FieldSlug, "sunlit")
	expectKind(t, err, apperr.KindForbidden)

	request, err := services.ChangeRequests.Create(ctx, owner, slug.KindStudio, studio.ID, changerequest.FieldSlug, "Sunlit")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if request.CurrentValue != "moonlit" || request.RequestedValue != "sunlit" {
		t.Fatalf("unexpected request values %+v", request)
	}

	_, err = services.ChangeRequests.Create(ctx, owner, slug.KindStudio, studio.ID, changerequest.FieldSlug, "starlit")
	expectKind(t, err, apperr.KindConflict)

	_, err = services.ChangeRequests.Cancel(ctx, stranger, request.ID)
	expectKind(t, err, apperr.KindForbidden)

	_, err = services.ChangeRequests.Reject(ctx, moderator, request.ID, "  ")
	expectKind(t, err, apperr.KindBadRequest)

	_, err = services.ChangeRequests.Approve(ctx, owner, request.ID, "")
	expectKind(t, err, apperr.KindForbidden)

	approved, err := services.ChangeRequests.Approve(ctx, moderator, request.ID, "")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != changerequest.StatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}

	stored, _ := services.Repository.GetStudio(ctx, studio.ID)
	if stored.Slug != "sunlit" || !stored.IsVerified {
		t.Fatalf("expected sunlit live on a still verified studio, got %+v", stored)
	}

	_, err = services.ChangeRequests.Approve(ctx, moderator, request.ID, "")
	expectKind(t, err, apperr.KindBadRequest)

	_, err = services.ChangeRequests.Cancel(ctx, owner, request.ID)
	expectKind(t, err, apperr.KindBadRequest)

	nameEdit, err := services.Identity.UpdateName(ctx, owner, slug.KindStudio, studio.ID, "Sunlit Studio")
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if nameEdit.ChangeRequest == nil {
		t.Fatalf("expected name edit on a verified studio to need review")
	}
	cancelled, err := services.ChangeRequests.Cancel(ctx, owner, nameEdit.ChangeRequest.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != changerequest.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	pending, err := services.ChangeRequests.List(ctx, moderator, changerequest.StatusPending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending requests, got %d", len(pending))
	}
}

func TestProtectedPageSlugCannotBePublishedUntilVerified(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Block Makers", "block-makers")
	game, page := mustGame(t, services, owner, studio.ID, "Cube World", "cube-world")

	if _, err := services.Identity.PublishPage(ctx, owner, page.ID); err != nil {
		t.Fatalf("PublishPage: %v", err)
	}

	edit, err := services.Identity.UpdateSlug(ctx, owner, slug.KindGamePage, page.ID, "minecraft")
	if err != nil {
		t.Fatalf("UpdateSlug: %v", err)
	}
	if !edit.Staged || len(edit.Unpublished) != 1 {
		t.Fatalf("expected staged slug and unpublished page, got %+v", edit)
	}

	_, err = services.Identity.PublishPage(ctx, owner, page.ID)
	expectKind(t, err, apperr.KindForbidden)

	if _, err := services.Identity.SetGameVerified(ctx, moderator, game.ID, true); err != nil {
		t.Fatalf("SetGameVerified: %v", err)
	}
	published, err := services.Identity.PublishPage(ctx, owner, page.ID)
	if err != nil {
		t.Fatalf("PublishPage after verification: %v", err)
	}
	if published.Slug != "minecraft" || published.Visibility != catalog.VisibilityPublished {
		t.Fatalf("expected minecraft published, got %+v", published)
	}

	if _, err := services.Identity.SetGameVerified(ctx, moderator, game.ID, false); err != nil {
		t.Fatalf("unverifying game: %v", err)
	}
	demoted, _ := services.Repository.GetPage(ctx, page.ID)
	if demoted.Visibility != catalog.VisibilityDraft || !strings.HasPrefix(demoted.Slug, "pending-game-") || demoted.EffectiveSlug() != "minecraft" {
		t.Fatalf("expected demoted draft page with minecraft staged, got %+v", demoted)
	}
}

func TestCheckSlugAvailable(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	mustStudio(t, services, owner, "Moonlit", "moonlit")

	taken, err := services.Identity.CheckSlugAvailable(ctx, slug.KindStudio, "MOONLIT")
	if err != nil {
		t.Fatalf("CheckSlugAvailable: %v", err)
	}
	if taken.Available || taken.RequiresVerification {
		t.Fatalf("expected taken unprotected slug, got %+v", taken)
	}

	free, err := services.Identity.CheckSlugAvailable(ctx, slug.KindGamePage, "moonlit")
	if err != nil {
		t.Fatalf("CheckSlugAvailable: %v", err)
	}
	if !free.Available {
		t.Fatalf("expected slug to be free for game pages")
	}

	_, err = services.Identity.CheckSlugAvailable(ctx, slug.KindStudio, "pending-studio-abcdef")
	expectKind(t, err, apperr.KindBadRequest)
}

func TestAdminBypassesEditCooldown(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Acme", "acme")

	if _, err := services.Identity.UpdateSlug(ctx, owner, slug.KindStudio, studio.ID, "acme-games"); err != nil {
		t.Fatalf("first UpdateSlug: %v", err)
	}
	_, err := services.Identity.UpdateSlug(ctx, owner, slug.KindStudio, studio.ID, "acme-works")
	expectKind(t, err, apperr.KindBadRequest)

	edit, err := services.Identity.UpdateSlug(ctx, moderator, slug.KindStudio, studio.ID, "acme-works")
	if err != nil {
		t.Fatalf("admin UpdateSlug inside the cooldown: %v", err)
	}
	if edit.Holder == nil || edit.Holder.Slug != "acme-works" {
		t.Fatalf("expected acme-works live, got %+v", edit)
	}
}

func TestUnverifyingUnverifiedStudioKeepsPagesPublished(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Fan Studio", "fan-studio")
	_, page := mustGame(t, services, owner, studio.ID, "Tea Shop", "tea-shop")

	if _, err := services.Identity.PublishPage(ctx, owner, page.ID); err != nil {
		t.Fatalf("PublishPage: %v", err)
	}
	edit, err := services.Identity.UpdateSlug(ctx, moderator, slug.KindStudio, studio.ID, "nintendo")
	if err != nil {
		t.Fatalf("UpdateSlug: %v", err)
	}
	if !edit.Staged {
		t.Fatalf("expected nintendo to be staged, got %+v", edit)
	}
	before, _ := services.Repository.GetStudio(ctx, studio.ID)

	after, err := services.Identity.SetStudioVerified(ctx, moderator, studio.ID, false)
	if err != nil {
		t.Fatalf("SetStudioVerified(false): %v", err)
	}
	if after.IsVerified || after.Slug != before.Slug {
		t.Fatalf("expected studio unchanged, got %+v", after)
	}

	stored, _ := services.Repository.GetPage(ctx, page.ID)
	if stored.Visibility != catalog.VisibilityPublished || stored.UnpublishedAt != nil {
		t.Fatalf("expected tea-shop to stay published, got %+v", stored)
	}

	entries, err := services.Repository.ListAuditEntries(ctx, catalogdata.AuditFilter{TargetID: studio.ID, Action: "verification.changed"})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no verification change for a redundant unverify, got %d", len(entries))
	}
}

func TestUnverifyingUnverifiedGameIsNoop(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Block Makers", "block-makers")
	game, page := mustGame(t, services, owner, studio.ID, "Minecraft", "minecraft")

	if _, err := services.Identity.SetGameVerified(ctx, moderator, game.ID, false); err != nil {
		t.Fatalf("SetGameVerified(false): %v", err)
	}

	stored, _ := services.Repository.GetPage(ctx, page.ID)
	if stored.Slug != page.Slug || stored.EffectiveSlug() != "minecraft" {
		t.Fatalf("expected page untouched, got %+v", stored)
	}
	entries, err := services.Repository.ListAuditEntries(ctx, catalogdata.AuditFilter{TargetID: game.ID, Action: "verification.changed"})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no verification change for a redundant unverify, got %d", len(entries))
	}
}

func TestVerifyGameChecksEveryStagedSlugBeforePromoting(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	studio := mustStudio(t, services, owner, "Arcade Club", "arcade-club")
	rival := mustStudio(t, services, claimant, "Plumber Works", "plumber-works")

	game, primary := mustGame(t, services, owner, studio.ID, "Halo", "halo")
	wanted := "mario"
	extra := &catalog.GamePage{
		GameID:        game.ID,
		Title:         "Halo Kart",
		Slug:          "pending-game-extrapage1",
		RequestedSlug: &wanted,
		Visibility:    catalog.VisibilityDraft,
	}
	if err := services.Repository.CreatePage(ctx, extra); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	rivalGame, _ := mustGame(t, services, claimant, rival.ID, "Mario", "mario")
	if _, err := services.Identity.SetGameVerified(ctx, moderator, rivalGame.ID, true); err != nil {
		t.Fatalf("verifying rival game: %v", err)
	}

	_, err := services.Identity.SetGameVerified(ctx, moderator, game.ID, true)
	expectKind(t, err, apperr.KindConflict)

	stored, _ := services.Repository.GetPage(ctx, primary.ID)
	if stored.Slug != primary.Slug || stored.EffectiveSlug() != "halo" {
		t.Fatalf("expected primary page to keep halo staged, got %+v", stored)
	}
	storedGame, _ := services.Repository.GetGame(ctx, game.ID)
	if storedGame.IsVerified {
		t.Fatalf("expected game to stay unverified")
	}
}

func TestResolveConflictKeepsClaimOpen(t *testing.T) {
	t.Parallel()

	services := newServices(t)
	ctx := context.Background()
	squatter := mustStudio(t, services, owner, "Fan Remakes", "fan-remakes")
	official := mustStudio(t, services, claimant, "Hyrule Works", "hyrule-works")
	other := mustStudio(t, services, stranger, "Triforce Labs", "triforce-labs")

	game, page := mustGame(t, services, owner, squatter.ID, "Zelda", "zelda")
	claim, err := services.Ownership.ClaimOwnership(ctx, claimant, page.Slug, official.ID, "")
	if err != nil {
		t.Fatalf("ClaimOwnership: %v", err)
	}

	otherGame, _ := mustGame(t, services, stranger, other.ID, "Zelda Tribute", "zelda")
	if _, err := services.Identity.SetGameVerified(ctx, moderator, otherGame.ID, true); err != nil {
		t.Fatalf("verifying competing game: %v", err)
	}

	_, err = services.Ownership.Resolve(ctx, moderator, claim.ID, ownership.StatusApproved, true)
	expectKind(t, err, apperr.KindConflict)

	open, err := services.Ownership.List(ctx, moderator, ownership.StatusOpen)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open) != 1 || open[0].ID != claim.ID {
		t.Fatalf("expected the claim to stay open, got %+v", open)
	}

	storedPage, _ := services.Repository.GetPage(ctx, page.ID)
	if !storedPage.IsClaimable || storedPage.Slug != page.Slug {
		t.Fatalf("expected page untouched by the failed transfer, got %+v", storedPage)
	}
	storedGame, _ := services.Repository.GetGame(ctx, game.ID)
	if storedGame.IsVerified {
		t.Fatalf("expected game to stay unverified")
	}

	entries, err := services.Repository.ListAuditEntries(ctx, catalogdata.AuditFilter{TargetID: game.ID, Action: "ownership.transferred"})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Metadata["studio_after"] != official.ID {
		t.Fatalf("expected the applied reassignment in the audit trail, got %+v", entries)
	}
}
