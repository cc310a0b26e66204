// ABOUTME: CLI command to list activities
// ABOUTME: Shows the most recent non-deleted activities as a table or JSON
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	listLimit int
)

// NewListCmd creates list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent activities",
		Long: `List the most recent activities, newest first.

Deleted activities are hidden. Expenses show their amount and
currency; FILES counts attachments.

Examples:
  activities list
  activities list --limit 5
  activities list --format json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum activities to show (defaults to ACTIVITIES_LIST_LIMIT)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("limit") {
		if err := validatePositiveInt(listLimit, "--limit"); err != nil {
			return err
		}
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	limit := listLimit
	if limit == 0 {
		limit = a.cfg.ListLimit
	}

	activities := a.store.Activities.ListRecent(commandContext(cmd), a.cfg.UserID, limit)

	if outputFormat == "json" {
		return printJSON(cmd, activities)
	}

	if len(activities) == 0 {
		if !quiet {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No activities found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "TYPE\tTITLE\tAMOUNT\tFILES\tCREATED\tID\n")
	_, _ = fmt.Fprintf(w, "----\t-----\t------\t-----\t-------\t--\n")
	for _, act := range activities {
		title := act.Title
		if act.Recurrence != nil {
			title += " ↻"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			act.Type,
			truncate(title, 40),
			formatAmount(act),
			act.AttachmentCount,
			humanize.Time(act.CreatedAt),
			act.ID)
	}
	_ = w.Flush()

	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d activit%s\n", len(activities), pluralY(len(activities)))
	}
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
