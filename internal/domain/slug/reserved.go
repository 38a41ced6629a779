package slug

// Reserved words shared by every kind: routes, platform roles and impersonation bait.
var reservedCommon = newWordSet(
	"about", "account", "admin", "administrator", "api", "app", "auth", "billing",
	"blog", "dashboard", "docs", "help", "login", "logout", "moderator", "new",
	"official", "playshelf", "root", "security", "settings", "signup", "staff",
	"static", "status", "support", "system", "team", "terms", "privacy",
)

// Studio names of publishers and platform holders.
var reservedStudio = newWordSet(
	"activision", "atari", "bandai-namco", "bethesda", "blizzard", "capcom",
	"electronic-arts", "epic", "epic-games", "microsoft", "nintendo",
	"playstation", "riot", "riot-games", "rockstar", "sega", "sony", "square-enix",
	"steam", "ubisoft", "valve", "xbox",
)

// Well-known game titles.
var reservedGame = newWordSet(
	"call-of-duty", "counter-strike", "dota", "elden-ring", "fortnite", "grand-theft-auto",
	"gta", "halo", "league-of-legends", "mario", "minecraft", "overwatch", "pokemon",
	"roblox", "the-sims", "valorant", "zelda",
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, word := range words {
		set[Normalize(word)] = struct{}{}
	}
	return set
}

func (s wordSet) has(word string) bool {
	_, ok := s[word]
	return ok
}

// IsReserved reports whether normalized is in the compiled-in list for kind.
func IsReserved(kind EntityKind, normalized string) bool {
	if reservedCommon.has(normalized) {
		return true
	}
	switch kind {
	case KindStudio:
		return reservedStudio.has(normalized)
	case KindGamePage:
		return reservedGame.has(normalized)
	default:
		return false
	}
}
