package ownership

import (
	"context"
	"time"
)

// Status is the state of a claim. Only open is non-terminal.
type Status string

const (
	StatusOpen     Status = "open"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Claim asserts that a game page belongs to a different studio.
type Claim struct {
	ID                string
	PageID            string
	GameID            string
	CurrentStudioID   string
	RequestedStudioID string
	ClaimedSlug       string
	Details           string
	Status            Status
	ClaimedBy         string
	HandledBy         *string
	HandledAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Resolution is the terminal-state write for a claim.
type Resolution struct {
	Status    Status
	HandledBy string
	At        time.Time
}

// Store persists claims. Get returns a NotFound apperr when absent.
type Store interface {
	CreateClaim(ctx context.Context, claim *Claim) error
	GetClaim(ctx context.Context, id string) (*Claim, error)
	OpenClaimExists(ctx context.Context, pageID, requestedStudioID string) (bool, error)
	ResolveClaim(ctx context.Context, id string, resolution Resolution) error
	ListClaims(ctx context.Context, status Status) ([]Claim, error)
}

// ParseStatus accepts the terminal statuses an admin may resolve to.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusApproved, StatusRejected:
		return Status(raw), true
	default:
		return "", false
	}
}
