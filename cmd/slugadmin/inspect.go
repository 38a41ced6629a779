package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"playshelf/app/internal/app/bootstrap"
	catalogdata "playshelf/app/internal/data/catalog"
	"playshelf/app/internal/domain/slug"
)

var (
	auditTargetType string
	auditTargetID   string
	auditAction     string
	auditLimit      int
)

var checkCmd = &cobra.Command{
	Use:   "check <kind> <slug>",
	Short: "Report whether a slug is free and whether it needs verification",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheck,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the catalog schema to the configured database",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent audit log entries",
	Long: `Show recent audit log entries, newest first.

Examples:
  slugadmin audit --action slug.demoted
  slugadmin audit --target-type studio --target-id <id>`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditTargetType, "target-type", "", "Filter by target type")
	auditCmd.Flags().StringVar(&auditTargetID, "target-id", "", "Filter by target ID")
	auditCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action")
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 50, "Maximum entries to show")
}

func runCheck(cmd *cobra.Command, args []string) error {
	kind, err := slug.ParseEntityKind(args[0])
	if err != nil {
		return err
	}

	return withServices(cmd.Context(), func(ctx context.Context, services *bootstrap.Services) error {
		result, err := services.Identity.CheckSlugAvailable(ctx, kind, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), result)
		}

		state := "available"
		if !result.Available {
			state = "taken"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %q: %s", kind, result.Slug, state)
		if result.RequiresVerification {
			fmt.Fprint(cmd.OutOrStdout(), ", protected (requires verification)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	})
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	return withServices(cmd.Context(), func(context.Context, *bootstrap.Services) error {
		fmt.Fprintln(cmd.OutOrStdout(), "catalog schema is up to date")
		return nil
	})
}

func runAudit(cmd *cobra.Command, _ []string) error {
	return withServices(cmd.Context(), func(ctx context.Context, services *bootstrap.Services) error {
		entries, err := services.Repository.ListAuditEntries(ctx, catalogdata.AuditFilter{
			TargetType: auditTargetType,
			TargetID:   auditTargetID,
			Action:     auditAction,
			Limit:      auditLimit,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), entries)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tACTOR\tACTION\tTARGET")
		for _, entry := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\n",
				entry.OccurredAt.Format(time.RFC3339), entry.ActorID, entry.Action, entry.TargetType, entry.TargetID)
		}
		return tw.Flush()
	})
}
