package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudioRecord is a persisted studio. Slug is unique across studios.
type StudioRecord struct {
	ID             string  `gorm:"primaryKey;size:36"`
	OwnerUserID    string  `gorm:"size:64;index;not null"`
	Name           string  `gorm:"size:255;not null"`
	Slug           string  `gorm:"size:96;uniqueIndex:idx_studios_slug;not null"`
	RequestedSlug  *string `gorm:"size:96"`
	IsVerified     bool    `gorm:"not null;default:false"`
	LastSlugChange *time.Time
	LastNameChange *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName defines the table name for studios.
func (StudioRecord) TableName() string {
	return "studios"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *StudioRecord) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// GameRecord is a persisted game.
type GameRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	OwnerStudioID string `gorm:"size:36;index;not null"`
	Name          string `gorm:"size:255;not null"`
	IsVerified    bool   `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName defines the table name for games.
func (GameRecord) TableName() string {
	return "games"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *GameRecord) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// GamePageRecord is a persisted game page. Slug is unique across pages.
type GamePageRecord struct {
	ID              string  `gorm:"primaryKey;size:36"`
	GameID          string  `gorm:"size:36;index;not null"`
	Title           string  `gorm:"size:255;not null"`
	Slug            string  `gorm:"size:96;uniqueIndex:idx_game_pages_slug;not null"`
	RequestedSlug   *string `gorm:"size:96"`
	Visibility      string  `gorm:"size:16;index;not null"`
	IsPrimary       bool    `gorm:"not null;default:false"`
	IsClaimable     bool    `gorm:"not null;default:false"`
	LastSlugChange  *time.Time
	LastTitleChange *time.Time
	PublishedAt     *time.Time
	UnpublishedAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName defines the table name for game pages.
func (GamePageRecord) TableName() string {
	return "game_pages"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *GamePageRecord) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// ProtectedSlugRecord is an admin-curated protected slug, unique per kind.
type ProtectedSlugRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Kind      string `gorm:"size:16;uniqueIndex:idx_protected_slugs_kind_slug;not null"`
	Slug      string `gorm:"size:96;uniqueIndex:idx_protected_slugs_kind_slug;not null"`
	Reason    string `gorm:"type:text"`
	CreatedBy string `gorm:"size:64"`
	CreatedAt time.Time
}

// TableName defines the table name for protected slugs.
func (ProtectedSlugRecord) TableName() string {
	return "protected_slugs"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *ProtectedSlugRecord) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// ChangeRequestRecord is a persisted change request. Pending uniqueness per
// entity and field is checked before insert, not by an index.
type ChangeRequestRecord struct {
	ID             string  `gorm:"primaryKey;size:36"`
	EntityKind     string  `gorm:"size:16;index:idx_change_requests_entity;not null"`
	EntityID       string  `gorm:"size:36;index:idx_change_requests_entity;not null"`
	FieldName      string  `gorm:"size:16;index:idx_change_requests_entity;not null"`
	CurrentValue   string  `gorm:"size:255"`
	RequestedValue string  `gorm:"size:255;not null"`
	Status         string  `gorm:"size:16;index;not null"`
	RequestedBy    string  `gorm:"size:64;not null"`
	ReviewedBy     *string `gorm:"size:64"`
	ReviewedAt     *time.Time
	ReviewNotes    string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName defines the table name for change requests.
func (ChangeRequestRecord) TableName() string {
	return "change_requests"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *ChangeRequestRecord) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// OwnershipClaimRecord is a persisted ownership claim.
type OwnershipClaimRecord struct {
	ID                string  `gorm:"primaryKey;size:36"`
	PageID            string  `gorm:"size:36;index:idx_ownership_claims_page;not null"`
	GameID            string  `gorm:"size:36;not null"`
	CurrentStudioID   string  `gorm:"size:36;not null"`
	RequestedStudioID string  `gorm:"size:36;index:idx_ownership_claims_page;not null"`
	ClaimedSlug       string  `gorm:"size:96"`
	Details           string  `gorm:"type:text"`
	Status            string  `gorm:"size:16;index;not null"`
	ClaimedBy         string  `gorm:"size:64;not null"`
	HandledBy         *string `gorm:"size:64"`
	HandledAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName defines the table name for ownership claims.
func (OwnershipClaimRecord) TableName() string {
	return "ownership_claims"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *OwnershipClaimRecord) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// AuditLogRecord is one audit entry.
type AuditLogRecord struct {
	ID         string         `gorm:"primaryKey;size:36"`
	ActorID    string         `gorm:"size:64;index"`
	Action     string         `gorm:"size:64;index;not null"`
	TargetType string         `gorm:"size:32;index:idx_audit_logs_target"`
	TargetID   string         `gorm:"size:36;index:idx_audit_logs_target"`
	Metadata   datatypes.JSON `gorm:"type:json"`
	OccurredAt time.Time      `gorm:"index;not null"`
}

// TableName defines the table name for audit entries.
func (AuditLogRecord) TableName() string {
	return "audit_logs"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *AuditLogRecord) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

// Models lists every record type for schema migration.
func Models() []any {
	return []any{
		&StudioRecord{},
		&GameRecord{},
		&GamePageRecord{},
		&ProtectedSlugRecord{},
		&ChangeRequestRecord{},
		&OwnershipClaimRecord{},
		&AuditLogRecord{},
	}
}

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
