// ABOUTME: CLI command to export activities to YAML or Markdown
// ABOUTME: Writes a file, or prints the export as JSON with --format json
package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewExportCmd creates export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export activities to YAML or Markdown",
		Long: `Write every activity of the configured user, with attachment
metadata, to a file. The format follows the file extension (.yaml, .yml
or .md) unless --as is given.

With --format json the export is printed to stdout instead.`,
		Example: `  activities export
  activities export backup.yaml
  activities export --as markdown --include-deleted journal.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	cmd.Flags().String("as", "", "Export format: yaml or markdown")
	cmd.Flags().Bool("include-deleted", false, "Include soft-deleted activities")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	as, _ := cmd.Flags().GetString("as")
	includeDeleted, _ := cmd.Flags().GetBool("include-deleted")

	outputPath := ""
	if len(args) == 1 {
		outputPath = args[0]
	}

	kind, err := exportKind(as, outputPath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		ext := ".yaml"
		if kind == "markdown" {
			ext = ".md"
		}
		outputPath = "activities-export-" + time.Now().Format("2006-01-02") + ext
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := commandContext(cmd)

	if outputFormat == "json" {
		data, err := a.store.Export(ctx, a.cfg.UserID, includeDeleted)
		if err != nil {
			return err
		}
		return printJSON(cmd, data)
	}

	switch kind {
	case "markdown":
		err = a.store.ExportToMarkdown(ctx, a.cfg.UserID, includeDeleted, outputPath)
	default:
		err = a.store.ExportToYAML(ctx, a.cfg.UserID, includeDeleted, outputPath)
	}
	if err != nil {
		return err
	}

	if quiet {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), outputPath)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", outputPath)
	return nil
}

// exportKind resolves the file format from --as, falling back to the extension
func exportKind(as, outputPath string) (string, error) {
	switch strings.ToLower(as) {
	case "yaml", "yml":
		return "yaml", nil
	case "markdown", "md":
		return "markdown", nil
	case "":
	default:
		return "", fmt.Errorf("unknown export format %q (want yaml or markdown)", as)
	}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".md", ".markdown":
		return "markdown", nil
	default:
		return "yaml", nil
	}
}
