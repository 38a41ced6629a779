package slug

import (
	"context"

	"github.com/rotisserie/eris"

	"playshelf/app/internal/domain/apperr"
)

// UniquenessChecker answers whether a live slug is already held within a kind.
type UniquenessChecker struct {
	holders map[EntityKind]HolderStore
}

// NewUniquenessChecker wires the checker with one store per kind.
func NewUniquenessChecker(holders map[EntityKind]HolderStore) (*UniquenessChecker, error) {
	for _, kind := range Kinds {
		if holders[kind] == nil {
			return nil, eris.Errorf("holder store for %s is required", kind)
		}
	}
	return &UniquenessChecker{holders: holders}, nil
}

// IsTaken reports whether another entity of kind holds slug live.
// excludeID, when set, ignores the entity itself.
func (c *UniquenessChecker) IsTaken(ctx context.Context, kind EntityKind, slug, excludeID string) (bool, error) {
	store, ok := c.holders[kind]
	if !ok {
		return false, apperr.BadRequest("unknown entity kind %q", kind)
	}

	holder, err := store.FindBySlug(ctx, Normalize(slug))
	if err != nil {
		return false, apperr.Internal(err, "looking up %s slug %s", kind, slug)
	}
	if holder == nil {
		return false, nil
	}
	return holder.ID != excludeID, nil
}
