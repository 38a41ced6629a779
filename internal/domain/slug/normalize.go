package slug

import (
	"regexp"
	"strings"

	"playshelf/app/internal/domain/apperr"
)

const (
	minLength = 3
	maxLength = 64
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Normalize trims whitespace and lowercases the value.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Validate normalizes input and checks it is a user-assignable slug.
// Placeholder prefixes are reserved for the allocator.
func Validate(input string) (string, error) {
	normalized := Normalize(input)
	if normalized == "" {
		return "", apperr.BadRequest("slug is required")
	}
	if len(normalized) < minLength || len(normalized) > maxLength {
		return "", apperr.BadRequest("slug must be between %d and %d characters", minLength, maxLength)
	}
	if !slugPattern.MatchString(normalized) {
		return "", apperr.BadRequest("slug %q may only contain lowercase letters, digits and single dashes", input)
	}
	if IsTemporary(normalized) {
		return "", apperr.BadRequest("slug %q uses a reserved prefix", input)
	}
	return normalized, nil
}

// IsTemporary reports whether value is an allocator placeholder of any kind.
func IsTemporary(value string) bool {
	for _, kind := range Kinds {
		if strings.HasPrefix(value, kind.TemporaryPrefix()) {
			return true
		}
	}
	return false
}
