// ABOUTME: CLI command to add new activities
// ABOUTME: Creates notes, tasks, expenses and reminders with optional recurrence
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/activities/internal/models"
)

var (
	addType        string
	addDescription string
	addCategory    string
	addAmount      float64
	addCurrency    string
)

// NewAddCmd creates add command
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new activity",
		Long: `Add a new note, task, expense or reminder.

Examples:
  activities add "Call the plumber"
  activities add --type expense --amount 120 "Coffee"
  activities add --type task --repeat weekly --every 2 "Water plants"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().StringVarP(&addType, "type", "t", "note", "Activity type: note, task, expense or reminder")
	cmd.Flags().StringVarP(&addDescription, "description", "d", "", "Longer description")
	cmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category")
	cmd.Flags().Float64Var(&addAmount, "amount", 0, "Expense amount")
	cmd.Flags().StringVar(&addCurrency, "currency", "", "Expense currency (defaults to ACTIVITIES_DEFAULT_CURRENCY)")
	addRecurrenceFlags(cmd)

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return fmt.Errorf("no title provided")
	}

	activityType, err := models.ParseActivityType(strings.ToLower(addType))
	if err != nil {
		return err
	}

	rule, err := recurrenceFromFlags(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("amount") && activityType != models.ActivityExpense {
		return fmt.Errorf("--amount only applies to expenses")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	in := models.NewActivity{
		Type:        activityType,
		Title:       title,
		Description: addDescription,
		Category:    addCategory,
		Recurrence:  rule,
	}
	if cmd.Flags().Changed("amount") {
		amount := addAmount
		in.Amount = &amount
		in.Currency = strings.ToUpper(addCurrency)
		if in.Currency == "" {
			in.Currency = a.cfg.DefaultCurrency
		}
	}

	id, err := a.store.Activities.Create(commandContext(cmd), a.cfg.UserID, in)
	if err != nil {
		return fmt.Errorf("adding activity: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(cmd, map[string]string{"id": id, "type": string(activityType)})
	}
	if quiet {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s %s\n", activityType, id)
	return nil
}
