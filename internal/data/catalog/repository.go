package catalog

import (
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"playshelf/app/internal/data/database"
	"playshelf/app/internal/domain/apperr"
	"playshelf/app/internal/domain/audit"
	domaincatalog "playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/ownership"
	"playshelf/app/internal/domain/slug"
)

// Repository persists the catalog using a Gorm database connection.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &Repository{db: db, logger: logger}, nil
}

var (
	_ domaincatalog.StudioStore = (*Repository)(nil)
	_ domaincatalog.GameStore   = (*Repository)(nil)
	_ domaincatalog.PageStore   = (*Repository)(nil)
	_ slug.ProtectedSlugStore   = (*Repository)(nil)
	_ changerequest.Store       = (*Repository)(nil)
	_ ownership.Store           = (*Repository)(nil)
	_ audit.Sink                = (*Repository)(nil)
)

// DB exposes the underlying connection for health checks.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Holders returns the per-kind slug stores backed by this repository.
func (r *Repository) Holders() map[slug.EntityKind]slug.HolderStore {
	return map[slug.EntityKind]slug.HolderStore{
		slug.KindStudio:   &StudioHolders{repo: r},
		slug.KindGamePage: &PageHolders{repo: r},
	}
}

// classify maps a storage error onto the error kinds callers branch on.
func (r *Repository) classify(err error, fields logrus.Fields, message string) error {
	switch {
	case err == nil:
		return nil
	case apperr.KindOf(err) != apperr.KindInternal:
		return err
	case database.IsNotFound(err):
		return apperr.NotFound("%s: not found", message)
	case database.IsUniqueViolation(err):
		r.logWarn(fields, err, message)
		return apperr.Conflict("%s: value already in use", message)
	default:
		r.logError(fields, err, message)
		return apperr.Internal(eris.Wrap(err, message), "%s", message)
	}
}

func (r *Repository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func (r *Repository) logWarn(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Warn(message)
}

func requireAffected(result *gorm.DB, format string, args ...any) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound(format, args...)
	}
	return nil
}
