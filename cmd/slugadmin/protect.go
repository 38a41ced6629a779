package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"playshelf/app/internal/app/bootstrap"
	"playshelf/app/internal/domain/slug"
)

var (
	protectReason string
	protectKind   string
)

var protectCmd = &cobra.Command{
	Use:   "protect",
	Short: "Manage the protected slug list",
}

var protectAddCmd = &cobra.Command{
	Use:   "add <kind> <slug>",
	Short: "Protect a slug for studios or game pages",
	Long: `Add a slug to the protected list. Entities requesting it afterwards are held
behind a temporary slug until verified. Existing holders are not affected.

Examples:
  slugadmin protect add studio nintendo --reason trademark
  slugadmin protect add game_page zelda`,
	Args: cobra.ExactArgs(2),
	RunE: runProtectAdd,
}

var protectRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a protected slug entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runProtectRemove,
}

var protectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List protected slugs",
	Args:  cobra.NoArgs,
	RunE:  runProtectList,
}

func init() {
	protectAddCmd.Flags().StringVarP(&protectReason, "reason", "r", "", "Why the slug is protected")
	protectListCmd.Flags().StringVarP(&protectKind, "kind", "k", "", "Filter by kind (studio, game_page)")

	protectCmd.AddCommand(protectAddCmd)
	protectCmd.AddCommand(protectRemoveCmd)
	protectCmd.AddCommand(protectListCmd)
}

func runProtectAdd(cmd *cobra.Command, args []string) error {
	kind, err := slug.ParseEntityKind(args[0])
	if err != nil {
		return err
	}

	return withServices(cmd.Context(), func(ctx context.Context, services *bootstrap.Services) error {
		protected, err := services.Registry.AddProtected(ctx, actorID, kind, args[1], protectReason)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), protected)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "protected %s slug %q (%s)\n", protected.Kind, protected.Slug, protected.ID)
		return nil
	})
}

func runProtectRemove(cmd *cobra.Command, args []string) error {
	return withServices(cmd.Context(), func(ctx context.Context, services *bootstrap.Services) error {
		if err := services.Registry.RemoveProtected(ctx, actorID, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed protected slug %s\n", args[0])
		return nil
	})
}

func runProtectList(cmd *cobra.Command, _ []string) error {
	var kind slug.EntityKind
	if protectKind != "" {
		parsed, err := slug.ParseEntityKind(protectKind)
		if err != nil {
			return err
		}
		kind = parsed
	}

	return withServices(cmd.Context(), func(ctx context.Context, services *bootstrap.Services) error {
		items, err := services.Registry.ListProtected(ctx, kind)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), items)
		}

		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no protected slugs")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tSLUG\tREASON\tCREATED BY")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Kind, item.Slug, item.Reason, item.CreatedBy)
		}
		return tw.Flush()
	})
}
