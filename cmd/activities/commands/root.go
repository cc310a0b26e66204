// ABOUTME: Root command and global flags for the activities CLI
// ABOUTME: Registers every subcommand and validates shared flags
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Local-first notes, tasks, expenses and reminders",
		Long: `Activities keeps notes, tasks, expenses and reminders in a local
SQLite database, with file attachments copied into private storage.

Data lives under $XDG_DATA_HOME/activities unless ACTIVITIES_DATA_DIR
or ACTIVITIES_DB_PATH say otherwise. A .env file in the working
directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "table", "json":
				return nil
			default:
				return fmt.Errorf("unknown --format %q (want auto, table or json)", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log storage diagnostics")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors and requested data")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")

	cmd.AddCommand(
		NewAddCmd(),
		NewListCmd(),
		NewUpdateCmd(),
		NewDeleteCmd(),
		NewAttachCmd(),
		NewAttachmentsCmd(),
		NewDetachCmd(),
		NewMigrateCmd(),
		NewExportCmd(),
		NewCallsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}
