package catalog

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	domaincatalog "playshelf/app/internal/domain/catalog"
)

// GetGame returns the game or a NotFound error.
func (r *Repository) GetGame(ctx context.Context, id string) (*domaincatalog.Game, error) {
	var record GameRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"game_id": id}, "fetching game "+id)
	}
	return toDomainGame(&record), nil
}

// CreateGame inserts a game and assigns its ID.
func (r *Repository) CreateGame(ctx context.Context, game *domaincatalog.Game) error {
	if game == nil {
		return eris.New("game is nil")
	}

	record := &GameRecord{
		ID:            game.ID,
		OwnerStudioID: game.OwnerStudioID,
		Name:          strings.TrimSpace(game.Name),
		IsVerified:    game.IsVerified,
		CreatedAt:     game.CreatedAt,
		UpdatedAt:     game.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return r.classify(err, logrus.Fields{"studio_id": game.OwnerStudioID}, "creating game")
	}

	game.ID = record.ID
	game.CreatedAt = record.CreatedAt
	game.UpdatedAt = record.UpdatedAt
	return nil
}

// ListGameIDsByStudio returns the IDs of every game the studio owns.
func (r *Repository) ListGameIDsByStudio(ctx context.Context, studioID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&GameRecord{}).
		Where("owner_studio_id = ?", studioID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, r.classify(err, logrus.Fields{"studio_id": studioID}, "listing games of studio")
	}
	return ids, nil
}

// SetGameVerified writes the verified flag.
func (r *Repository) SetGameVerified(ctx context.Context, id string, verified bool) error {
	result := r.db.WithContext(ctx).Model(&GameRecord{}).Where("id = ?", id).Update("is_verified", verified)
	if err := requireAffected(result, "game %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"game_id": id}, "updating game verification")
	}
	return nil
}

// SetGameOwner reassigns the game to another studio.
func (r *Repository) SetGameOwner(ctx context.Context, id, studioID string) error {
	result := r.db.WithContext(ctx).Model(&GameRecord{}).Where("id = ?", id).Update("owner_studio_id", studioID)
	if err := requireAffected(result, "game %s not found", id); err != nil {
		return r.classify(err, logrus.Fields{"game_id": id, "studio_id": studioID}, "reassigning game owner")
	}
	return nil
}

func toDomainGame(record *GameRecord) *domaincatalog.Game {
	if record == nil {
		return nil
	}

	return &domaincatalog.Game{
		ID:            record.ID,
		OwnerStudioID: record.OwnerStudioID,
		Name:          record.Name,
		IsVerified:    record.IsVerified,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
