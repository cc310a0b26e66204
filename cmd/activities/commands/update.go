// ABOUTME: CLI command to update an activity in place
// ABOUTME: Only flags that are given change; --clear-* flags set fields to NULL
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/activities/internal/models"
)

var (
	updateTitle            string
	updateDescription      string
	updateCategory         string
	updateAmount           float64
	updateCurrency         string
	updateClearDescription bool
	updateClearCategory    bool
	updateClearRepeat      bool
)

// NewUpdateCmd creates update command
func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an activity",
		Long: `Update fields of an existing activity.

Only the flags you pass are changed. Amount and currency apply to
expenses only.

Examples:
  activities update 3f2a... --title "Flat white" --amount 150
  activities update 3f2a... --repeat monthly
  activities update 3f2a... --clear-repeat --clear-category`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	cmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&updateCategory, "category", "c", "", "New category")
	cmd.Flags().Float64Var(&updateAmount, "amount", 0, "New expense amount")
	cmd.Flags().StringVar(&updateCurrency, "currency", "", "New expense currency")
	cmd.Flags().BoolVar(&updateClearDescription, "clear-description", false, "Remove the description")
	cmd.Flags().BoolVar(&updateClearCategory, "clear-category", false, "Remove the category")
	cmd.Flags().BoolVar(&updateClearRepeat, "clear-repeat", false, "Stop repeating")
	addRecurrenceFlags(cmd)

	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	cmd.MarkFlagsMutuallyExclusive("category", "clear-category")
	cmd.MarkFlagsMutuallyExclusive("repeat", "clear-repeat")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]
	ctx := commandContext(cmd)

	rule, err := recurrenceFromFlags(cmd)
	if err != nil {
		return err
	}

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

	patch := patchFromFlags(cmd, existing.Type, rule)
	if patch.Empty() {
		return fmt.Errorf("nothing to update")
	}

	if err := a.store.Activities.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}

	if outputFormat == "json" {
		updated, err := a.store.Activities.Get(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cmd, updated)
	}
	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s\n", id)
	}
	return nil
}

func patchFromFlags(cmd *cobra.Command, activityType models.ActivityType, rule *models.RecurrenceRule) models.ActivityPatch {
	flags := cmd.Flags()
	patch := models.ActivityPatch{Type: activityType}

	if flags.Changed("title") {
		patch.Title = models.Set(updateTitle)
	}

	switch {
	case updateClearDescription:
		patch.Description = models.Null[string]()
	case flags.Changed("description"):
		patch.Description = models.Set(updateDescription)
	}

	switch {
	case updateClearCategory:
		patch.Category = models.Null[string]()
	case flags.Changed("category"):
		patch.Category = models.Set(updateCategory)
	}

	switch {
	case updateClearRepeat:
		patch.Recurrence = models.Null[models.RecurrenceRule]()
	case rule != nil:
		patch.Recurrence = models.Set(*rule)
	}

	if flags.Changed("amount") {
		patch.Amount = models.Set(updateAmount)
	}
	if flags.Changed("currency") {
		patch.Currency = models.Set(strings.ToUpper(updateCurrency))
	}

	return patch
}
