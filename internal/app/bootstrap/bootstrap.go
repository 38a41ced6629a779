package bootstrap

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	catalogdata "playshelf/app/internal/data/catalog"
	"playshelf/app/internal/data/database"
	"playshelf/app/internal/data/migrations"
	"playshelf/app/internal/domain/audit"
	"playshelf/app/internal/domain/catalog"
	"playshelf/app/internal/domain/changerequest"
	"playshelf/app/internal/domain/identity"
	"playshelf/app/internal/domain/ownership"
	"playshelf/app/internal/domain/slug"
	"playshelf/app/internal/platform/config"
	presentationhttp "playshelf/app/internal/presentation/http"
)

type Dependencies struct {
	Config    config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Services is the wired domain layer shared by the HTTP server and the CLI.
type Services struct {
	Repository     *catalogdata.Repository
	Audit          *audit.Recorder
	Registry       *slug.Registry
	Lifecycle      *slug.Lifecycle
	Gate           *slug.Gate
	Identity       *identity.Service
	ChangeRequests *changerequest.Workflow
	Ownership      *ownership.Workflow
}

type Result struct {
	Services   *Services
	HTTPServer *presentationhttp.Server
	Database   *gorm.DB
	Cleanup    func() error
}

// Build composes the Playshelf application layers and returns the constructed components.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	db, err := OpenDatabase(ctx, deps)
	if err != nil {
		return Result{}, err
	}

	closeOnError := func(wrapper error) (Result, error) {
		if closeErr := database.Close(db); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing database after bootstrap failure")
		}
		return Result{}, wrapper
	}

	services, err := BuildServices(db, deps)
	if err != nil {
		return closeOnError(err)
	}

	httpServer, err := presentationhttp.NewServer(presentationhttp.Options{
		Identity:       services.Identity,
		Registry:       services.Registry,
		ChangeRequests: services.ChangeRequests,
		Ownership:      services.Ownership,
		Health:         func(ctx context.Context) error { return database.Ping(ctx, db) },
		Logger:         deps.Logger,
		SentryHub:      deps.SentryHub,
		RateLimiter: presentationhttp.RateLimiterSettings{
			Burst:             deps.Config.RateLimit.Burst,
			RequestsPerSecond: deps.Config.RateLimit.RequestsPerSecond,
			ClientTTL:         deps.Config.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "initialising http server"))
	}

	cleanup := func() error {
		return database.Close(db)
	}

	return Result{
		Services:   services,
		HTTPServer: httpServer,
		Database:   db,
		Cleanup:    cleanup,
	}, nil
}

// OpenDatabase opens the configured database and applies the catalog schema.
func OpenDatabase(ctx context.Context, deps Dependencies) (*gorm.DB, error) {
	db, err := database.Open(database.Options{Path: deps.Config.DBPath})
	if err != nil {
		return nil, eris.Wrap(err, "opening database")
	}

	if err := migrations.MigrateCatalog(ctx, db, deps.Logger); err != nil {
		if closeErr := database.Close(db); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing database after migration failure")
		}
		return nil, eris.Wrap(err, "running catalog migrations")
	}

	return db, nil
}

// BuildServices wires repositories and domain services on an open database.
func BuildServices(db *gorm.DB, deps Dependencies) (*Services, error) {
	repo, err := catalogdata.NewRepository(db, deps.Logger)
	if err != nil {
		return nil, eris.Wrap(err, "creating catalog repository")
	}

	recorder := audit.NewRecorder(repo, deps.Logger, deps.SentryHub)

	access, err := catalog.NewAccessPolicy(repo, repo, repo)
	if err != nil {
		return nil, eris.Wrap(err, "creating access policy")
	}

	registry, err := slug.NewRegistry(repo, recorder, deps.Logger)
	if err != nil {
		return nil, eris.Wrap(err, "creating slug registry")
	}

	holders := repo.Holders()
	checker, err := slug.NewUniquenessChecker(holders)
	if err != nil {
		return nil, eris.Wrap(err, "creating uniqueness checker")
	}

	allocator, err := slug.NewAllocator(checker, slug.AllocatorOptions{
		Attempts:     deps.Config.Slugs.TemporaryAttempts,
		SuffixLength: deps.Config.Slugs.TemporarySuffixLength,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating temporary slug allocator")
	}

	lifecycle, err := slug.NewLifecycle(slug.LifecycleOptions{
		Holders:   holders,
		Checker:   checker,
		Allocator: allocator,
		Audit:     recorder,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating slug lifecycle")
	}

	cascade, err := slug.NewUnpublisher(repo, repo, recorder, deps.Logger)
	if err != nil {
		return nil, eris.Wrap(err, "creating cascade unpublisher")
	}

	gate, err := slug.NewGate(registry, lifecycle, cascade, deps.Logger)
	if err != nil {
		return nil, eris.Wrap(err, "creating verification gate")
	}

	changeRequests, err := changerequest.NewWorkflow(changerequest.Options{
		Store:     repo,
		Studios:   repo,
		Games:     repo,
		Pages:     repo,
		Access:    access,
		Registry:  registry,
		Lifecycle: lifecycle,
		Cascade:   cascade,
		Audit:     recorder,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating change request workflow")
	}

	ownershipWorkflow, err := ownership.NewWorkflow(ownership.Options{
		Store:     repo,
		Games:     repo,
		Pages:     repo,
		Access:    access,
		Gate:      gate,
		Audit:     recorder,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating ownership workflow")
	}

	identityService, err := identity.NewService(identity.Options{
		Studios:        repo,
		Games:          repo,
		Pages:          repo,
		Access:         access,
		Registry:       registry,
		Checker:        checker,
		Allocator:      allocator,
		Lifecycle:      lifecycle,
		Gate:           gate,
		ChangeRequests: changeRequests,
		Audit:          recorder,
		Logger:         deps.Logger,
		SentryHub:      deps.SentryHub,
		EditCooldown:   deps.Config.Slugs.EditCooldown,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating identity service")
	}

	return &Services{
		Repository:     repo,
		Audit:          recorder,
		Registry:       registry,
		Lifecycle:      lifecycle,
		Gate:           gate,
		Identity:       identityService,
		ChangeRequests: changeRequests,
		Ownership:      ownershipWorkflow,
	}, nil
}
