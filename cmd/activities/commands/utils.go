// ABOUTME: Shared helpers for CLI commands
// ABOUTME: Storage setup, output formatting and recurrence flag parsing
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/activities/internal/config"
	"github.com/harper/activities/internal/logging"
	"github.com/harper/activities/internal/models"
	"github.com/harper/activities/internal/storage"
	"github.com/harper/activities/internal/storage/sqlite"
)

// app bundles what a command needs once storage is open
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *sqlite.Storage
}

func (a *app) Close() error {
	return a.store.Close()
}

// openApp loads configuration and opens storage, running migrations
func openApp(cmd *cobra.Command) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "info"
	} else if quiet {
		level = "error"
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	store, err := storage.Open(commandContext(cmd), cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatAmount renders an expense amount with its currency, or "-"
func formatAmount(a models.Activity) string {
	if a.Amount == nil {
		return "-"
	}
	return humanize.CommafWithDigits(*a.Amount, 2) + " " + a.Currency
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// Recurrence flags shared by add and update
var (
	repeatFrequency string
	repeatEvery     int
	repeatUntil     string
)

func addRecurrenceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&repeatFrequency, "repeat", "", "Repeat: none, daily, weekly, monthly, yearly or custom")
	cmd.Flags().IntVar(&repeatEvery, "every", 1, "Repeat interval (with --repeat)")
	cmd.Flags().StringVar(&repeatUntil, "until", "", "Last repeat date, YYYY-MM-DD (with --repeat)")
}

// recurrenceFromFlags returns the rule described by the recurrence flags,
// or nil when --repeat was not given.
func recurrenceFromFlags(cmd *cobra.Command) (*models.RecurrenceRule, error) {
	flags := cmd.Flags()
	if !flags.Changed("repeat") {
		if flags.Changed("every") || flags.Changed("until") {
			return nil, fmt.Errorf("--every and --until require --repeat")
		}
		return nil, nil
	}

	rule := models.RecurrenceRule{Frequency: models.Frequency(strings.ToLower(repeatFrequency))}
	if flags.Changed("every") {
		every := repeatEvery
		rule.Interval = &every
	}
	if repeatUntil != "" {
		until, err := time.Parse("2006-01-02", repeatUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid --until date %q: %w", repeatUntil, err)
		}
		rule.EndDate = &until
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &rule, nil
}
