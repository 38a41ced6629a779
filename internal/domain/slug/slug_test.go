package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"playshelf/app/internal/domain/apperr"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "  Moonlit-Games ", want: "moonlit-games", ok: true},
		{input: "abc", want: "abc", ok: true},
		{input: "ab", ok: false},
		{input: "", ok: false},
		{input: "double--dash", ok: false},
		{input: "-leading", ok: false},
		{input: "under_score", ok: false},
		{input: "pending-studio-abc123", ok: false},
		{input: "pending-game-abc123", ok: false},
		{input: strings.Repeat("a", 65), ok: false},
	}

	for _, tc := range cases {
		got, err := Validate(tc.input)
		if tc.ok {
			if err != nil {
				t.Fatalf("Validate(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("Validate(%q) = %q, want %q", tc.input, got, tc.want)
			}
			continue
		}
		if !apperr.IsKind(err, apperr.KindBadRequest) {
			t.Fatalf("Validate(%q) expected bad request, got %v", tc.input, err)
		}
	}
}

func TestParseEntityKindAcceptsAliases(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]EntityKind{
		"studio": KindStudio, "Studios": KindStudio,
		"game_page": KindGamePage, "game": KindGamePage, "pages": KindGamePage,
	} {
		got, err := ParseEntityKind(raw)
		if err != nil || got != want {
			t.Fatalf("ParseEntityKind(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}

	if _, err := ParseEntityKind("planet"); !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for unknown kind, got %v", err)
	}
}

func TestRegistryCombinesReservedAndListedSlugs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	ctx := context.Background()

	protected, err := f.registry.IsProtected(ctx, KindStudio, " Nintendo ")
	if err != nil || !protected {
		t.Fatalf("expected reserved studio word to be protected, got %v, %v", protected, err)
	}

	protected, err = f.registry.IsProtected(ctx, KindGamePage, "nintendo")
	if err != nil || protected {
		t.Fatalf("expected studio-only word to be free for game pages, got %v, %v", protected, err)
	}

	protected, err = f.registry.IsProtected(ctx, KindGamePage, "admin")
	if err != nil || !protected {
		t.Fatalf("expected common reserved word to be protected for every kind")
	}

	if _, err := f.registry.AddProtected(ctx, "admin-1", KindStudio, "Moonlit", "trademark"); err != nil {
		t.Fatalf("AddProtected: %v", err)
	}
	if protected, _ := f.registry.IsProtected(ctx, KindStudio, "MOONLIT"); !protected {
		t.Fatalf("expected listed slug to be protected case-insensitively")
	}
	if protected, _ := f.registry.IsProtected(ctx, KindGamePage, "moonlit"); protected {
		t.Fatalf("expected listing to be scoped to its kind")
	}

	if _, err := f.registry.AddProtected(ctx, "admin-1", KindStudio, "moonlit", ""); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on duplicate protection, got %v", err)
	}

	if err := f.registry.RemoveProtected(ctx, "admin-1", "missing"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found removing unknown entry, got %v", err)
	}

	if got := f.sink.count("protected_slug.added"); got != 1 {
		t.Fatalf("expected 1 audit entry for additions, got %d", got)
	}
}

func TestAllocatorSkipsTakenCandidates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []Holder{{ID: "s1", Slug: "pending-studio-aaaaaa"}}, nil)
	f.allocator.random = scriptedSuffixes("aaaaaa", "bbbbbb")

	got, err := f.allocator.Allocate(context.Background(), KindStudio)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != "pending-studio-bbbbbb" {
		t.Fatalf("expected second candidate, got %q", got)
	}
}

func TestAllocatorExhaustsRetries(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, []Holder{{ID: "p1", Slug: "pending-game-zzzzzz"}})
	f.allocator.random = scriptedSuffixes("zzzzzz")

	_, err := f.allocator.Allocate(context.Background(), KindGamePage)
	if !apperr.IsKind(err, apperr.KindExhaustedRetries) {
		t.Fatalf("expected exhausted retries, got %v", err)
	}
}

func TestRandomSuffixUsesAlphabet(t *testing.T) {
	t.Parallel()

	suffix, err := randomSuffix(32)
	if err != nil {
		t.Fatalf("randomSuffix: %v", err)
	}
	if len(suffix) != 32 {
		t.Fatalf("expected 32 characters, got %d", len(suffix))
	}
	for _, r := range suffix {
		if !strings.ContainsRune(suffixAlphabet, r) {
			t.Fatalf("unexpected character %q in %q", r, suffix)
		}
	}
}

func TestDemoteStagesLiveSlugAndIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []Holder{{ID: "s1", Slug: "moonlit"}}, nil)
	ctx := context.Background()

	holder, err := f.lifecycle.Demote(ctx, KindStudio, "s1", nil)
	if err != nil {
		t.Fatalf("Demote: %v", err)
	}
	if !holder.HasTemporarySlug() {
		t.Fatalf("expected temporary slug, got %q", holder.Slug)
	}
	if holder.RequestedSlug == nil || *holder.RequestedSlug != "moonlit" {
		t.Fatalf("expected moonlit staged, got %v", holder.RequestedSlug)
	}
	if holder.LastSlugChange == nil {
		t.Fatalf("expected slug change to be stamped")
	}

	again, err := f.lifecycle.Demote(ctx, KindStudio, "s1", nil)
	if err != nil {
		t.Fatalf("second Demote: %v", err)
	}
	if again.Slug != holder.Slug {
		t.Fatalf("expected repeated demotion to keep %q, got %q", holder.Slug, again.Slug)
	}
	if writes := f.studios.writeCount(); writes != 1 {
		t.Fatalf("expected a single write, got %d", writes)
	}
	if got := f.sink.count("slug.demoted"); got != 1 {
		t.Fatalf("expected one demotion audit entry, got %d", got)
	}
}

func TestDemoteWithDesiredValueReplacesStaged(t *testing.T) {
	t.Parallel()

	staged := "old-wish"
	f := newFixture(t, nil, []Holder{{ID: "p1", Slug: "pending-game-abc123", RequestedSlug: &staged}})

	desired := "Zelda"
	holder, err := f.lifecycle.Demote(context.Background(), KindGamePage, "p1", &desired)
	if err != nil {
		t.Fatalf("Demote: %v", err)
	}
	if holder.RequestedSlug == nil || *holder.RequestedSlug != "zelda" {
		t.Fatalf("expected zelda staged, got %v", holder.RequestedSlug)
	}
}

func TestPromote(t *testing.T) {
	t.Parallel()

	staged := "zelda"
	f := newFixture(t, nil, []Holder{
		{ID: "p1", Slug: "pending-game-aaaaaa", RequestedSlug: &staged},
		{ID: "p2", Slug: "night-owl"},
	})
	ctx := context.Background()

	unchanged, err := f.lifecycle.Promote(ctx, KindGamePage, "p2")
	if err != nil {
		t.Fatalf("Promote without staged slug: %v", err)
	}
	if unchanged.Slug != "night-owl" || f.pages.writeCount() != 0 {
		t.Fatalf("expected promote to be a no-op without a staged slug")
	}

	promoted, err := f.lifecycle.Promote(ctx, KindGamePage, "p1")
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if promoted.Slug != "zelda" || promoted.RequestedSlug != nil {
		t.Fatalf("expected zelda live with nothing staged, got %q / %v", promoted.Slug, promoted.RequestedSlug)
	}
	if got := f.sink.count("slug.promoted"); got != 1 {
		t.Fatalf("expected one promotion audit entry, got %d", got)
	}
}

func TestPromoteConflictLeavesHolderUntouched(t *testing.T) {
	t.Parallel()

	staged := "moonlit"
	f := newFixture(t, []Holder{
		{ID: "s1", Slug: "pending-studio-aaaaaa", RequestedSlug: &staged},
		{ID: "s2", Slug: "moonlit"},
	}, nil)

	_, err := f.lifecycle.Promote(context.Background(), KindStudio, "s1")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	holder, _ := f.studios.GetHolder(context.Background(), "s1")
	if holder.Slug != "pending-studio-aaaaaa" || holder.RequestedSlug == nil || *holder.RequestedSlug != "moonlit" {
		t.Fatalf("expected holder unchanged after conflict, got %+v", holder)
	}
}

func TestAssignRejectsTakenSlug(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []Holder{{ID: "s1", Slug: "alpha"}, {ID: "s2", Slug: "beta"}}, nil)
	ctx := context.Background()

	if _, err := f.lifecycle.Assign(ctx, KindStudio, "s1", "beta"); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	holder, err := f.lifecycle.Assign(ctx, KindStudio, "s1", "Gamma")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if holder.Slug != "gamma" {
		t.Fatalf("expected gamma, got %q", holder.Slug)
	}

	if _, err := f.lifecycle.Assign(ctx, KindStudio, "missing", "delta"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLifecycleSurvivesAuditSinkFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []Holder{{ID: "s1", Slug: "moonlit"}}, nil)
	f.sink.failWith(errors.New("audit store unavailable"))
	ctx := context.Background()

	demoted, err := f.lifecycle.Demote(ctx, KindStudio, "s1", nil)
	if err != nil {
		t.Fatalf("Demote with failing audit sink: %v", err)
	}
	if !demoted.HasTemporarySlug() {
		t.Fatalf("expected demotion to be written, got %q", demoted.Slug)
	}

	promoted, err := f.lifecycle.Promote(ctx, KindStudio, "s1")
	if err != nil {
		t.Fatalf("Promote with failing audit sink: %v", err)
	}
	if promoted.Slug != "moonlit" || promoted.RequestedSlug != nil {
		t.Fatalf("expected moonlit live again, got %+v", promoted)
	}

	stored, _ := f.studios.GetHolder(ctx, "s1")
	if stored.Slug != "moonlit" {
		t.Fatalf("expected stored slug moonlit, got %q", stored.Slug)
	}
	if got := f.sink.count("slug.demoted") + f.sink.count("slug.promoted"); got != 2 {
		t.Fatalf("expected both transitions to reach the sink, got %d", got)
	}
}
