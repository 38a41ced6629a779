package changerequest

import (
	"context"
	"time"

	"playshelf/app/internal/domain/slug"
)

// Field names the attribute a request changes.
type Field string

const (
	FieldSlug Field = "slug"
	FieldName Field = "name"
)

// Status is the lifecycle state of a request. Only pending is non-terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ChangeRequest is an approval-gated edit of a verified entity's slug or name.
type ChangeRequest struct {
	ID             string
	Kind           slug.EntityKind
	EntityID       string
	Field          Field
	CurrentValue   string
	RequestedValue string
	Status         Status
	RequestedBy    string
	ReviewedBy     *string
	ReviewedAt     *time.Time
	ReviewNotes    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Review is the terminal-state write for a request.
type Review struct {
	Status     Status
	ReviewedBy string
	Notes      string
	At         time.Time
}

// Store persists change requests. Get returns a NotFound apperr when absent.
type Store interface {
	CreateChangeRequest(ctx context.Context, request *ChangeRequest) error
	GetChangeRequest(ctx context.Context, id string) (*ChangeRequest, error)
	PendingChangeRequestExists(ctx context.Context, kind slug.EntityKind, entityID string, field Field) (bool, error)
	ReviewChangeRequest(ctx context.Context, id string, review Review) error
	ListChangeRequests(ctx context.Context, status Status) ([]ChangeRequest, error)
}

// ParseField validates a field name.
func ParseField(raw string) (Field, bool) {
	switch Field(raw) {
	case FieldSlug, FieldName:
		return Field(raw), true
	default:
		return "", false
	}
}
