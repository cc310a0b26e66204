// ABOUTME: CLI command to delete an activity
// ABOUTME: Soft deletes so the row stays for history
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates delete command
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an activity",
		Long: `Delete an activity. It is hidden from listings but kept in the
database.

Examples:
  activities delete 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	ctx := commandContext(cmd)

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	existing, err := a.store.Activities.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.IsDeleted {
		return fmt.Errorf("activity not found: %s", id)
	}

	if err := a.store.Activities.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}

	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s %q\n", existing.Type, existing.Title)
	}
	return nil
}
