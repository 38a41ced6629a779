package catalog

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"playshelf/app/internal/domain/audit"
)

const defaultAuditLimit = 100

// AuditFilter narrows ListAuditEntries. Empty fields match everything.
type AuditFilter struct {
	TargetType string
	TargetID   string
	Action     string
	Limit      int
}

// Record persists an audit entry.
func (r *Repository) Record(ctx context.Context, entry audit.Entry) error {
	var metadata datatypes.JSON
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return eris.Wrap(err, "encoding audit metadata")
		}
		metadata = datatypes.JSON(encoded)
	}

	record := &AuditLogRecord{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Metadata:   metadata,
		OccurredAt: entry.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logError(logrus.Fields{"action": entry.Action, "target_id": entry.TargetID}, err, "writing audit entry")
		return eris.Wrap(err, "writing audit entry")
	}
	return nil
}

// ListAuditEntries returns matching entries, newest first.
func (r *Repository) ListAuditEntries(ctx context.Context, filter AuditFilter) ([]audit.Entry, error) {
	query := r.db.WithContext(ctx).Model(&AuditLogRecord{})
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	var records []AuditLogRecord
	if err := query.Order("occurred_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, r.classify(err, logrus.Fields{"target_id": filter.TargetID}, "listing audit entries")
	}

	entries := make([]audit.Entry, 0, len(records))
	for _, record := range records {
		entry := audit.Entry{
			ActorID:    record.ActorID,
			Action:     record.Action,
			TargetType: record.TargetType,
			TargetID:   record.TargetID,
			OccurredAt: record.OccurredAt,
		}
		if len(record.Metadata) > 0 {
			if err := json.Unmarshal(record.Metadata, &entry.Metadata); err != nil {
				return nil, eris.Wrapf(err, "decoding audit metadata for %s", record.ID)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
