package slug

import (
	"context"
	"crypto/rand"

	"github.com/rotisserie/eris"

	"playshelf/app/internal/domain/apperr"
)

const (
	DefaultTemporaryAttempts     = 10
	DefaultTemporarySuffixLength = 10

	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// AllocatorOptions tunes placeholder generation.
type AllocatorOptions struct {
	Attempts     int
	SuffixLength int
}

// Allocator generates placeholder slugs of the form pending-<tag>-<suffix>
// that are not held by any live row of the kind.
type Allocator struct {
	checker      *UniquenessChecker
	attempts     int
	suffixLength int
	random       func(n int) (string, error)
}

// NewAllocator wires the allocator. Zero options fall back to the defaults.
func NewAllocator(checker *UniquenessChecker, opts AllocatorOptions) (*Allocator, error) {
	if checker == nil {
		return nil, eris.New("uniqueness checker is required")
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultTemporaryAttempts
	}
	if opts.SuffixLength <= 0 {
		opts.SuffixLength = DefaultTemporarySuffixLength
	}
	return &Allocator{
		checker:      checker,
		attempts:     opts.Attempts,
		suffixLength: opts.SuffixLength,
		random:       randomSuffix,
	}, nil
}

// Allocate returns a free placeholder slug for kind or an ExhaustedRetries error.
func (a *Allocator) Allocate(ctx context.Context, kind EntityKind) (string, error) {
	if !kind.Valid() {
		return "", apperr.BadRequest("unknown entity kind %q", kind)
	}

	for attempt := 0; attempt < a.attempts; attempt++ {
		suffix, err := a.random(a.suffixLength)
		if err != nil {
			return "", apperr.Internal(err, "generating temporary slug suffix")
		}

		candidate := kind.TemporaryPrefix() + suffix
		taken, err := a.checker.IsTaken(ctx, kind, candidate, "")
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", apperr.ExhaustedRetries("no free temporary %s slug after %d attempts", kind.Tag(), a.attempts)
}

// randomSuffix draws n characters from suffixAlphabet with rejection sampling
// so every character is equally likely.
func randomSuffix(n int) (string, error) {
	const limit = 256 - (256 % len(suffixAlphabet))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", eris.Wrap(err, "reading random bytes")
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, suffixAlphabet[int(b)%len(suffixAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
