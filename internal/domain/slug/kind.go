package slug

import (
	"strings"

	"playshelf/app/internal/domain/apperr"
)

// EntityKind selects the table and cooldown fields a slug operation works on.
type EntityKind string

const (
	KindStudio   EntityKind = "studio"
	KindGamePage EntityKind = "game_page"
)

// Kinds lists every supported entity kind.
var Kinds = []EntityKind{KindStudio, KindGamePage}

// Tag is the short form used inside temporary slugs.
func (k EntityKind) Tag() string {
	switch k {
	case KindStudio:
		return "studio"
	case KindGamePage:
		return "game"
	default:
		return string(k)
	}
}

// TemporaryPrefix is the prefix every placeholder slug of this kind carries.
func (k EntityKind) TemporaryPrefix() string {
	return "pending-" + k.Tag() + "-"
}

// Valid reports whether k is a known kind.
func (k EntityKind) Valid() bool {
	return k == KindStudio || k == KindGamePage
}

// ParseEntityKind accepts the canonical names plus the short tags and common plurals.
func ParseEntityKind(raw string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "studio", "studios":
		return KindStudio, nil
	case "game_page", "game-page", "game", "games", "page", "pages":
		return KindGamePage, nil
	default:
		return "", apperr.BadRequest("unknown entity kind %q", raw)
	}
}
