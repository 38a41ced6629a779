package http

import (
	"time"

	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/ownership"
	"playshelf/app/internal/domain/slug"
)

type studioDTO struct {
	ID             string     `json:"id"`
	OwnerUserID    string     `json:"owner_user_id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	RequestedSlug  *string    `json:"requested_slug,omitempty"`
	IsVerified     bool       `json:"is_verified"`
	LastSlugChange *time.Time `json:"last_slug_change,omitempty"`
	LastNameChange *time.Time `json:"last_name_change,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type gameDTO struct {
	ID            string    `json:"id"`
	OwnerStudioID string    `json:"owner_studio_id"`
	Name          string    `json:"name"`
	IsVerified    bool      `json:"is_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type pageDTO struct {
	ID            string     `json:"id"`
	GameID        string     `json:"game_id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	RequestedSlug *string    `json:"requested_slug,omitempty"`
	Visibility    string     `json:"visibility"`
	IsPrimary     bool       `json:"is_primary"`
	IsClaimable   bool       `json:"is_claimable"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	UnpublishedAt *time.Time `json:"unpublished_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type holderDTO struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Slug          string  `json:"slug"`
	RequestedSlug *string `json:"requested_slug,omitempty"`
	IsVerified    bool    `json:"is_verified"`
	Visibility    string  `json:"visibility,omitempty"`
}

type changeRequestDTO struct {
	ID             string     `json:"id"`
	Kind           string     `json:"kind"`
	EntityID       string     `json:"entity_id"`
	Field          string     `json:"field"`
	CurrentValue   string     `json:"current_value"`
	RequestedValue string     `json:"requested_value"`
	Status         string     `json:"status"`
	RequestedBy    string     `json:"requested_by"`
	ReviewedBy     *string    `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes    string     `json:"review_notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type claimDTO struct {
	ID                string     `json:"id"`
	PageID            string     `json:"page_id"`
	GameID            string     `json:"game_id"`
	CurrentStudioID   string     `json:"current_studio_id"`
	RequestedStudioID string     `json:"requested_studio_id"`
	ClaimedSlug       string     `json:"claimed_slug"`
	Details           string     `json:"details,omitempty"`
	Status            string     `json:"status"`
	ClaimedBy         string     `json:"claimed_by"`
	HandledBy         *string    `json:"handled_by,omitempty"`
	HandledAt         *time.Time `json:"handled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type protectedSlugDTO struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Slug      string    `json:"slug"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toStudioDTO(studio *catalog.Studio) studioDTO {
	return studioDTO{
		ID:             studio.ID,
		OwnerUserID:    studio.OwnerUserID,
		Name:           studio.Name,
		Slug:           studio.Slug,
		RequestedSlug:  studio.RequestedSlug,
		IsVerified:     studio.IsVerified,
		LastSlugChange: studio.LastSlugChange,
		LastNameChange: studio.LastNameChange,
		CreatedAt:      studio.CreatedAt,
		UpdatedAt:      studio.UpdatedAt,
	}
}

func toGameDTO(game *catalog.Game) gameDTO {
	return gameDTO{
		ID:            game.ID,
		OwnerStudioID: game.OwnerStudioID,
		Name:          game.Name,
		IsVerified:    game.IsVerified,
		CreatedAt:     game.CreatedAt,
		UpdatedAt:     game.UpdatedAt,
	}
}

func toPageDTO(page *catalog.GamePage) pageDTO {
	return pageDTO{
		ID:            page.ID,
		GameID:        page.GameID,
		Title:         page.Title,
		Slug:          page.Slug,
		RequestedSlug: page.RequestedSlug,
		Visibility:    string(page.Visibility),
		IsPrimary:     page.IsPrimary,
		IsClaimable:   page.IsClaimable,
		PublishedAt:   page.PublishedAt,
		UnpublishedAt: page.UnpublishedAt,
		CreatedAt:     page.CreatedAt,
		UpdatedAt:     page.UpdatedAt,
	}
}

func toHolderDTO(holder *slug.Holder) *holderDTO {
	if holder == nil {
		return nil
	}
	return &holderDTO{
		ID:            holder.ID,
		Kind:          string(holder.Kind),
		Slug:          holder.Slug,
		RequestedSlug: holder.RequestedSlug,
		IsVerified:    holder.IsVerified,
		Visibility:    string(holder.Visibility),
	}
}

func toChangeRequestDTO(request *changerequest.ChangeRequest) changeRequestDTO {
	return changeRequestDTO{
		ID:             request.ID,
		Kind:           string(request.Kind),
		EntityID:       request.EntityID,
		Field:          string(request.Field),
		CurrentValue:   request.CurrentValue,
		RequestedValue: request.RequestedValue,
		Status:         string(request.Status),
		RequestedBy:    request.RequestedBy,
		ReviewedBy:     request.ReviewedBy,
		ReviewedAt:     request.ReviewedAt,
		ReviewNotes:    request.ReviewNotes,
		CreatedAt:      request.CreatedAt,
	}
}

func toChangeRequestDTOPtr(request *changerequest.ChangeRequest) *changeRequestDTO {
	if request == nil {
		return nil
	}
	dto := toChangeRequestDTO(request)
	return &dto
}

func toClaimDTO(claim *ownership.Claim) claimDTO {
	return claimDTO{
		ID:                claim.ID,
		PageID:            claim.PageID,
		GameID:            claim.GameID,
		CurrentStudioID:   claim.CurrentStudioID,
		RequestedStudioID: claim.RequestedStudioID,
		ClaimedSlug:       claim.ClaimedSlug,
		Details:           claim.Details,
		Status:            string(claim.Status),
		ClaimedBy:         claim.ClaimedBy,
		HandledBy:         claim.HandledBy,
		HandledAt:         claim.HandledAt,
		CreatedAt:         claim.CreatedAt,
	}
}

func toProtectedSlugDTO(protected *slug.ProtectedSlug) protectedSlugDTO {
	return protectedSlugDTO{
		ID:        protected.ID,
		Kind:      string(protected.Kind),
		Slug:      protected.Slug,
		Reason:    protected.Reason,
		CreatedBy: protected.CreatedBy,
		CreatedAt: protected.CreatedAt,
	}
}
