package catalog

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/ownership"
	"playshelf/app/internal/domain/slug"
)

// CreateChangeRequest inserts a change request and assigns its ID.
func (r *Repository) CreateChangeRequest(ctx context.Context, request *changerequest.ChangeRequest) error {
	if request == nil {
		return eris.New("change request is nil")
	}

	record := &ChangeRequestRecord{
		ID:             request.ID,
		EntityKind:     string(request.Kind),
		EntityID:       request.EntityID,
		FieldName:      string(request.Field),
		CurrentValue:   request.CurrentValue,
		RequestedValue: request.RequestedValue,
		Status:         string(request.Status),
		RequestedBy:    request.RequestedBy,
		CreatedAt:      request.CreatedAt,
		UpdatedAt:      request.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return r.classify(err, logrus.Fields{"entity_kind": request.Kind, "entity_id": request.EntityID}, "creating change request")
	}

	request.ID = record.ID
	request.CreatedAt = record.CreatedAt
	request.UpdatedAt = record.UpdatedAt
	return nil
}

// GetChangeRequest returns the request or a NotFound error.
func (r *Repository) GetChangeRequest(ctx context.Context, id string) (*changerequest.ChangeRequest, error) {
	var record ChangeRequestRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"change_request_id": id}, "fetching change request "+id)
	}
	return toDomainChangeRequest(&record), nil
}

// PendingChangeRequestExists reports whether a pending request exists for the field.
func (r *Repository) PendingChangeRequestExists(ctx context.Context, kind slug.EntityKind, entityID string, field changerequest.Field) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ChangeRequestRecord{}).
		Where("entity_kind = ? AND entity_id = ? AND field_name = ? AND status = ?",
			string(kind), entityID, string(field), string(changerequest.StatusPending)).
		Count(&count).Error
	if err != nil {
		return false, r.classify(err, logrus.Fields{"entity_kind": kind, "entity_id": entityID}, "checking pending change requests")
	}
	return count > 0, nil
}

// ReviewChangeRequest moves a pending request to a terminal status. A request
// that is no longer pending yields BadRequest.
func (r *Repository) ReviewChangeRequest(ctx context.Context, id string, review changerequest.Review) error {
	result := r.db.WithContext(ctx).Model(&ChangeRequestRecord{}).
		Where("id = ? AND status = ?", id, string(changerequest.StatusPending)).
		Updates(map[string]any{
			"status":       string(review.Status),
			"reviewed_by":  review.ReviewedBy,
			"reviewed_at":  review.At,
			"review_notes": review.Notes,
			"updated_at":   review.At,
		})
	if result.Error != nil {
		return r.classify(result.Error, logrus.Fields{"change_request_id": id}, "reviewing change request")
	}
	if result.RowsAffected == 0 {
		return apperr.BadRequest("change request %s is no longer pending", id)
	}
	return nil
}

// ListChangeRequests returns requests in status, or all when empty, newest first.
func (r *Repository) ListChangeRequests(ctx context.Context, status changerequest.Status) ([]changerequest.ChangeRequest, error) {
	query := r.db.WithContext(ctx).Model(&ChangeRequestRecord{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var records []ChangeRequestRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"status": status}, "listing change requests")
	}

	items := make([]changerequest.ChangeRequest, 0, len(records))
	for i := range records {
		items = append(items, *toDomainChangeRequest(&records[i]))
	}
	return items, nil
}

// CreateClaim inserts an ownership claim and assigns its ID.
func (r *Repository) CreateClaim(ctx context.Context, claim *ownership.Claim) error {
	if claim == nil {
		return eris.New("ownership claim is nil")
	}

	record := &OwnershipClaimRecord{
		ID:                claim.ID,
		PageID:            claim.PageID,
		GameID:            claim.GameID,
		CurrentStudioID:   claim.CurrentStudioID,
		RequestedStudioID: claim.RequestedStudioID,
		ClaimedSlug:       claim.ClaimedSlug,
		Details:           claim.Details,
		Status:            string(claim.Status),
		ClaimedBy:         claim.ClaimedBy,
		CreatedAt:         claim.CreatedAt,
		UpdatedAt:         claim.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return r.classify(err, logrus.Fields{"page_id": claim.PageID, "studio_id": claim.RequestedStudioID}, "creating ownership claim")
	}

	claim.ID = record.ID
	claim.CreatedAt = record.CreatedAt
	claim.UpdatedAt = record.UpdatedAt
	return nil
}

// GetClaim returns the claim or a NotFound error.
func (r *Repository) GetClaim(ctx context.Context, id string) (*ownership.Claim, error) {
	var record OwnershipClaimRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"claim_id": id}, "fetching ownership claim "+id)
	}
	return toDomainClaim(&record), nil
}

// OpenClaimExists reports whether an open claim exists for the page and studio.
func (r *Repository) OpenClaimExists(ctx context.Context, pageID, requestedStudioID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OwnershipClaimRecord{}).
		Where("page_id = ? AND requested_studio_id = ? AND status = ?", pageID, requestedStudioID, string(ownership.StatusOpen)).
		Count(&count).Error
	if err != nil {
		return false, r.classify(err, logrus.Fields{"page_id": pageID, "studio_id": requestedStudioID}, "checking open claims")
	}
	return count > 0, nil
}

// ResolveClaim moves an open claim to a terminal status. A claim that is no
// longer open yields BadRequest.
func (r *Repository) ResolveClaim(ctx context.Context, id string, resolution ownership.Resolution) error {
	result := r.db.WithContext(ctx).Model(&OwnershipClaimRecord{}).
		Where("id = ? AND status = ?", id, string(ownership.StatusOpen)).
		Updates(map[string]any{
			"status":     string(resolution.Status),
			"handled_by": resolution.HandledBy,
			"handled_at": resolution.At,
			"updated_at": resolution.At,
		})
	if result.Error != nil {
		return r.classify(result.Error, logrus.Fields{"claim_id": id}, "resolving ownership claim")
	}
	if result.RowsAffected == 0 {
		return apperr.BadRequest("ownership claim %s is no longer open", id)
	}
	return nil
}

// ListClaims returns claims in status, or all when empty, newest first.
func (r *Repository) ListClaims(ctx context.Context, status ownership.Status) ([]ownership.Claim, error) {
	query := r.db.WithContext(ctx).Model(&OwnershipClaimRecord{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var records []OwnershipClaimRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"status": status}, "listing ownership claims")
	}

	items := make([]ownership.Claim, 0, len(records))
	for i := range records {
		items = append(items, *toDomainClaim(&records[i]))
	}
	return items, nil
}

func toDomainChangeRequest(record *ChangeRequestRecord) *changerequest.ChangeRequest {
	return &changerequest.ChangeRequest{
		ID:             record.ID,
		Kind:           slug.EntityKind(record.EntityKind),
		EntityID:       record.EntityID,
		Field:          changerequest.Field(record.FieldName),
		CurrentValue:   record.CurrentValue,
		RequestedValue: record.RequestedValue,
		Status:         changerequest.Status(record.Status),
		RequestedBy:    record.RequestedBy,
		ReviewedBy:     record.ReviewedBy,
		ReviewedAt:     record.ReviewedAt,
		ReviewNotes:    record.ReviewNotes,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func toDomainClaim(record *OwnershipClaimRecord) *ownership.Claim {
	return &ownership.Claim{
		ID:                record.ID,
		PageID:            record.PageID,
		GameID:            record.GameID,
		CurrentStudioID:   record.CurrentStudioID,
		RequestedStudioID: record.RequestedStudioID,
		ClaimedSlug:       record.ClaimedSlug,
		Details:           record.Details,
		Status:            ownership.Status(record.Status),
		ClaimedBy:         record.ClaimedBy,
		HandledBy:         record.HandledBy,
		HandledAt:         record.HandledAt,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}
