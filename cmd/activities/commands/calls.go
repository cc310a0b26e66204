// ABOUTME: CLI command to show logged language-model calls
// ABOUTME: Lists token usage, latency and status, newest first
package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	callsLimit int
)

// NewCallsCmd creates calls command
func NewCallsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Show recent language-model calls",
		Long: `Show recent language-model calls recorded in the local database,
with token usage and latency.

Examples:
  activities calls
  activities calls --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: runCalls,
	}

	cmd.Flags().IntVarP(&callsLimit, "limit", "n", 20, "Maximum calls to show")

	return cmd
}

func runCalls(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(callsLimit, "--limit"); err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	calls := a.store.LLMCalls.ListRecent(commandContext(cmd), callsLimit)

	if outputFormat == "json" {
		return printJSON(cmd, calls)
	}

	if len(calls) == 0 {
		if !quiet {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No calls recorded\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "MODEL\tSTATUS\tTOKENS\tLATENCY\tWHEN\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t------\t-------\t----\n")
	for _, c := range calls {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(c.Model, 30),
			c.Status,
			humanize.Comma(int64(c.TotalTokens)),
			(time.Duration(c.LatencyMS) * time.Millisecond).String(),
			humanize.Time(c.CreatedAt))
	}
	return w.Flush()
}
