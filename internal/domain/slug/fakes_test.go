package slug

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
)

type memoryHolders struct {
	mu      sync.Mutex
	kind    EntityKind
	holders map[string]*Holder
	writes  int
}

func newMemoryHolders(kind EntityKind, seed ...Holder) *memoryHolders {
	store := &memoryHolders{kind: kind, holders: make(map[string]*Holder)}
	for i := range seed {
		h := seed[i]
		h.Kind = kind
		store.holders[h.ID] = &h
	}
	return store
}

func (m *memoryHolders) GetHolder(_ context.Context, id string) (*Holder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.holders[id]
	if !ok {
		return nil, apperr.NotFound("%s %s not found", m.kind, id)
	}
	copied := *h
	return &copied, nil
}

func (m *memoryHolders) FindBySlug(_ context.Context, slug string) (*Holder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.holders {
		if h.Slug == slug {
			copied := *h
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryHolders) UpdateSlugFields(_ context.Context, id string, update SlugUpdate) (*Holder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.holders[id]
	if !ok {
		return nil, apperr.NotFound("%s %s not found", m.kind, id)
	}
	for otherID, other := range m.holders {
		if otherID != id && other.Slug == update.Slug {
			return nil, apperr.Conflict("slug %q already taken", update.Slug)
		}
	}

	m.writes++
	h.Slug = update.Slug
	h.RequestedSlug = update.RequestedSlug
	if update.StampSlugChange {
		at := update.At
		h.LastSlugChange = &at
	}
	copied := *h
	return &copied, nil
}

func (m *memoryHolders) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memoryProtected struct {
	mu    sync.Mutex
	items map[string]ProtectedSlug
}

func newMemoryProtected() *memoryProtected {
	return &memoryProtected{items: make(map[string]ProtectedSlug)}
}

func (m *memoryProtected) ProtectedExists(_ context.Context, kind EntityKind, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.Kind == kind && item.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryProtected) GetProtected(_ context.Context, id string) (*ProtectedSlug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("protected slug %s not found", id)
	}
	return &item, nil
}

func (m *memoryProtected) CreateProtected(_ context.Context, protected *ProtectedSlug) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.Kind == protected.Kind && item.Slug == protected.Slug {
			return apperr.Conflict("slug %q is already protected", protected.Slug)
		}
	}
	protected.ID = uuid.NewString()
	m.items[protected.ID] = *protected
	return nil
}

func (m *memoryProtected) DeleteProtected(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("protected slug %s not found", id)
	}
	delete(m.items, id)
	return nil
}

func (m *memoryProtected) ListProtected(_ context.Context, kind EntityKind) ([]ProtectedSlug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ProtectedSlug
	for _, item := range m.items {
		if kind == "" || item.Kind == kind {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// memoryAudit keeps every entry it is handed. When err is set, Record still
// keeps the entry but reports err.
type memoryAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (m *memoryAudit) Record(_ context.Context, entry audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *memoryAudit) failWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, entry.Action)
	}
	return out
}

func (m *memoryAudit) count(action string) int {
	n := 0
	for _, got := range m.actions() {
		if got == action {
			n++
		}
	}
	return n
}

// memoryCatalog backs the cascade with games and pages. failPages lists page
// IDs whose visibility writes fail.
type memoryCatalog struct {
	mu        sync.Mutex
	games     map[string]*catalog.Game
	pages     map[string]*catalog.GamePage
	failPages map[string]bool
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		games:     make(map[string]*catalog.Game),
		pages:     make(map[string]*catalog.GamePage),
		failPages: make(map[string]bool),
	}
}

func (m *memoryCatalog) addGame(game catalog.Game, pages ...catalog.GamePage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.games[game.ID] = &game
	for i := range pages {
		page := pages[i]
		m.pages[page.ID] = &page
	}
}

func (m *memoryCatalog) visibility(pageID string) catalog.Visibility {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pages[pageID].Visibility
}

func (m *memoryCatalog) GetGame(_ context.Context, id string) (*catalog.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	game, ok := m.games[id]
	if !ok {
		return nil, apperr.NotFound("game %s not found", id)
	}
	copied := *game
	return &copied, nil
}

func (m *memoryCatalog) CreateGame(_ context.Context, game *catalog.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = game
	return nil
}

func (m *memoryCatalog) ListGameIDsByStudio(_ context.Context, studioID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, game := range m.games {
		if game.OwnerStudioID == studioID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryCatalog) SetGameVerified(_ context.Context, id string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[id].IsVerified = verified
	return nil
}

func (m *memoryCatalog) SetGameOwner(_ context.Context, id, studioID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[id].OwnerStudioID = studioID
	return nil
}

func (m *memoryCatalog) GetPage(_ context.Context, id string) (*catalog.GamePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, ok := m.pages[id]
	if !ok {
		return nil, apperr.NotFound("page %s not found", id)
	}
	copied := *page
	return &copied, nil
}

func (m *memoryCatalog) FindPageBySlug(_ context.Context, slug string) (*catalog.GamePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, page := range m.pages {
		if page.Slug == slug {
			copied := *page
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryCatalog) CreatePage(_ context.Context, page *catalog.GamePage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.ID] = page
	return nil
}

func (m *memoryCatalog) ListPagesByGame(_ context.Context, gameID string) ([]catalog.GamePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []catalog.GamePage
	for _, page := range m.pages {
		if page.GameID == gameID {
			out = append(out, *page)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryCatalog) ListPublishedPrimaryPages(_ context.Context, gameIDs []string) ([]catalog.GamePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[string]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}
	var out []catalog.GamePage
	for _, page := range m.pages {
		if wanted[page.GameID] && page.IsPrimary && page.Visibility == catalog.VisibilityPublished {
			out = append(out, *page)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryCatalog) SetPageVisibility(_ context.Context, id string, visibility catalog.Visibility, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPages[id] {
		return apperr.Internal(nil, "disk full")
	}
	page, ok := m.pages[id]
	if !ok {
		return apperr.NotFound("page %s not found", id)
	}
	page.Visibility = visibility
	if visibility == catalog.VisibilityDraft {
		page.UnpublishedAt = &at
	}
	return nil
}

func (m *memoryCatalog) SetPageClaimable(_ context.Context, id string, claimable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[id].IsClaimable = claimable
	return nil
}

func (m *memoryCatalog) UpdatePageTitle(_ context.Context, id, title string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[id].Title = title
	m.pages[id].LastTitleChange = &changedAt
	return nil
}

// fixture wires every slug component over in-memory stores.
type fixture struct {
	studios   *memoryHolders
	pages     *memoryHolders
	protected *memoryProtected
	sink      *memoryAudit
	catalog   *memoryCatalog
	registry  *Registry
	checker   *UniquenessChecker
	allocator *Allocator
	lifecycle *Lifecycle
	cascade   *Unpublisher
	gate      *Gate
}

func newFixture(t *testing.T, studios, pages []Holder) *fixture {
	t.Helper()

	f := &fixture{
		studios:   newMemoryHolders(KindStudio, studios...),
		pages:     newMemoryHolders(KindGamePage, pages...),
		protected: newMemoryProtected(),
		sink:      &memoryAudit{},
		catalog:   newMemoryCatalog(),
	}
	recorder := audit.NewRecorder(f.sink, nil, nil)
	holders := map[EntityKind]HolderStore{KindStudio: f.studios, KindGamePage: f.pages}

	var err error
	if f.registry, err = NewRegistry(f.protected, recorder, nil); err != nil {
		t.Fatalf("registry: %v", err)
	}
	if f.checker, err = NewUniquenessChecker(holders); err != nil {
		t.Fatalf("checker: %v", err)
	}
	if f.allocator, err = NewAllocator(f.checker, AllocatorOptions{Attempts: 3, SuffixLength: 6}); err != nil {
		t.Fatalf("allocator: %v", err)
	}
	if f.lifecycle, err = NewLifecycle(LifecycleOptions{
		Holders:   holders,
		Checker:   f.checker,
		Allocator: f.allocator,
		Audit:     recorder,
	}); err != nil {
		t.Fatalf("lifecycle: %v", err)
	}
	if f.cascade, err = NewUnpublisher(f.catalog, f.catalog, recorder, nil); err != nil {
		t.Fatalf("cascade: %v", err)
	}
	if f.gate, err = NewGate(f.registry, f.lifecycle, f.cascade, nil); err != nil {
		t.Fatalf("gate: %v", err)
	}
	return f
}

// scriptedSuffixes returns a random source yielding values in order, then repeating the last.
func scriptedSuffixes(values ...string) func(int) (string, error) {
	var mu sync.Mutex
	i := 0
	return func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	}
}
