// ABOUTME: CLI commands for activity attachments
// ABOUTME: attach copies a file in, attachments lists them, detach removes one
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/harper/activities/internal/files"
	"github.com/harper/activities/internal/models"
)

var (
	attachType string
)

// NewAttachCmd creates attach command
func NewAttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach <activity-id> <file>",
		Short: "Attach a file to an activity",
		Long: `Copy a file into private storage and link it to an activity.

The type is guessed from the file extension unless --type is given.

Examples:
  activities attach 3f2a... ~/Downloads/receipt.jpg
  activities attach 3f2a... file:///tmp/scan.pdf --type pdf`,
		Args: cobra.ExactArgs(2),
		RunE: runAttach,
	}

	cmd.Flags().StringVar(&attachType, "type", "", "Attachment type: image, pdf, document or video")

	return cmd
}

func runAttach(cmd *cobra.Command, args []string) error {
	activityID, source := args[0], args[1]
	ctx := commandContext(cmd)

	typ := models.GuessAttachmentType(files.PathFromURI(source))
	if attachType != "" {
		parsed, err := models.ParseAttachmentType(attachType)
		if err != nil {
			return err
		}
		typ = parsed
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	activity, err := a.store.Activities.Get(ctx, activityID)
	if err != nil {
		return err
	}
	if activity == nil || activity.IsDeleted {
		return fmt.Errorf("activity not found: %s", activityID)
	}

	att, err := a.store.Attachments.Save(ctx, activityID, source, typ)
	if err != nil {
		return fmt.Errorf("attaching file: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(cmd, att)
	}
	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Attached %s (%s, %s) as %s\n",
			att.FileName, att.Type, humanize.Bytes(uint64(att.FileSize)), att.ID)
	}
	return nil
}

// NewAttachmentsCmd creates attachments command
func NewAttachmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attachments <activity-id>",
		Short: "List an activity's attachments",
		Long: `List the files attached to an activity, newest first.

Examples:
  activities attachments 3f2a...
  activities attachments 3f2a... --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runAttachments,
	}

	return cmd
}

func runAttachments(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	attachments := a.store.Attachments.ListForActivity(commandContext(cmd), args[0])

	if outputFormat == "json" {
		return printJSON(cmd, attachments)
	}

	if len(attachments) == 0 {
		if !quiet {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No attachments found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "TYPE\tNAME\tSIZE\tUPLOADED\tID\n")
	_, _ = fmt.Fprintf(w, "----\t----\t----\t--------\t--\n")
	for _, att := range attachments {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			att.Type,
			truncate(att.FileName, 40),
			humanize.Bytes(uint64(att.FileSize)),
			humanize.Time(att.UploadedAt),
			att.ID)
	}
	return w.Flush()
}

// NewDetachCmd creates detach command
func NewDetachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detach <attachment-id>",
		Short: "Remove an attachment",
		Long: `Remove an attachment record and delete its stored file.

Examples:
  activities detach 9c1e...`,
		Args: cobra.ExactArgs(1),
		RunE: runDetach,
	}

	return cmd
}

func runDetach(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.store.Attachments.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("removing attachment: %w", err)
	}

	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed attachment %s\n", args[0])
	}
	return nil
}
