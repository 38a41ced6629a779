// Package main provides slugadmin, the operator CLI for protected slugs,
// slug availability checks, schema migration and the audit trail.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"playshelf/app/internal/app/bootstrap"
	"playshelf/app/internal/data/database"
	"playshelf/app/internal/platform/config"
	applog "playshelf/app/internal/platform/log"
)

// Global flags
var (
	jsonOutput bool
	dbPath     string
	actorID    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "slugadmin",
	Short: "Operate the Playshelf slug registry",
	Long: `slugadmin manages protected slugs and inspects slug state directly against
the Playshelf database. It reads the same environment as the server.

Examples:
  slugadmin migrate                              # Apply the catalog schema
  slugadmin protect add studio nintendo          # Protect a studio slug
  slugadmin protect list --kind game_page        # List protected game slugs
  slugadmin check studio moonlit                 # Check slug availability
  slugadmin audit --target-type studio --limit 20`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "system", "Actor ID recorded in the audit log")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(protectCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(auditCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

// loadDependencies reads configuration the way the server does, with CLI flag overrides.
func loadDependencies() (bootstrap.Dependencies, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return bootstrap.Dependencies{}, eris.Wrap(err, "loading configuration")
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := applog.NewLoggerTo(os.Stderr, level)
	if err != nil {
		return bootstrap.Dependencies{}, eris.Wrap(err, "initialising logger")
	}

	return bootstrap.Dependencies{Config: *cfg, Logger: logger}, nil
}

// withServices opens the database, wires the domain layer and runs fn.
func withServices(ctx context.Context, fn func(ctx context.Context, services *bootstrap.Services) error) error {
	deps, err := loadDependencies()
	if err != nil {
		return err
	}

	db, err := bootstrap.OpenDatabase(ctx, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			deps.Logger.WithError(closeErr).Error("closing database")
		}
	}()

	services, err := bootstrap.BuildServices(db, deps)
	if err != nil {
		return err
	}
	return fn(ctx, services)
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
