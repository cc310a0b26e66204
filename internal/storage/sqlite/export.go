// ABOUTME: Export functionality for activity data
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/harper/activities/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string           `yaml:"version" json:"version"`
	ExportedAt string           `yaml:"exported_at" json:"exported_at"`
	Tool       string           `yaml:"tool" json:"tool"`
	User       *ExportUser      `yaml:"user,omitempty" json:"user,omitempty"`
	Activities []ExportActivity `yaml:"activities" json:"activities"`
	Migrations []string         `yaml:"migrations,omitempty" json:"migrations,omitempty"`
}

// ExportUser represents the owning user for export
type ExportUser struct {
	ID          string `yaml:"id" json:"id"`
	Email       string `yaml:"email,omitempty" json:"email,omitempty"`
	DisplayName string `yaml:"display_name,omitempty" json:"display_name,omitempty"`
}

// ExportActivity represents an activity for export
type ExportActivity struct {
	ID          string             `yaml:"id" json:"id"`
	Type        string             `yaml:"type" json:"type"`
	Title       string             `yaml:"title" json:"title"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string             `yaml:"category,omitempty" json:"category,omitempty"`
	Recurrence  string             `yaml:"recurrence,omitempty" json:"recurrence,omitempty"`
	Amount      *float64           `yaml:"amount,omitempty" json:"amount,omitempty"`
	Currency    string             `yaml:"currency,omitempty" json:"currency,omitempty"`
	Deleted     bool               `yaml:"deleted,omitempty" json:"deleted,omitempty"`
	CreatedAt   string             `yaml:"created_at" json:"created_at"`
	UpdatedAt   string             `yaml:"updated_at" json:"updated_at"`
	Attachments []ExportAttachment `yaml:"attachments,omitempty" json:"attachments,omitempty"`
}

// ExportAttachment represents an attachment for export. File bytes are not
// included; LocalPath points at the stored copy.
type ExportAttachment struct {
	ID         string `yaml:"id" json:"id"`
	Type       string `yaml:"type" json:"type"`
	FileName   string `yaml:"file_name" json:"file_name"`
	FileSize   int64  `yaml:"file_size" json:"file_size"`
	LocalPath  string `yaml:"local_path" json:"local_path"`
	UploadedAt string `yaml:"uploaded_at" json:"uploaded_at"`
	OCRText    string `yaml:"ocr_text,omitempty" json:"ocr_text,omitempty"`
}

// Export collects a user's activities with their attachments
func (s *Storage) Export(ctx context.Context, userID string, includeDeleted bool) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Tool:       "activities",
		Activities: []ExportActivity{},
	}

	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		data.User = &ExportUser{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName}
	}

	activities, err := s.Activities.ListAll(ctx, userID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	for _, a := range activities {
		exported := ExportActivity{
			ID:          a.ID,
			Type:        string(a.Type),
			Title:       a.Title,
			Description: a.Description,
			Category:    a.Category,
			Amount:      a.Amount,
			Currency:    a.Currency,
			Deleted:     a.IsDeleted,
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
		}
		if a.Recurrence != nil {
			exported.Recurrence = formatRecurrence(*a.Recurrence)
		}

		if a.AttachmentCount > 0 {
			attachments, err := s.Attachments.queryForActivity(ctx, a.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list attachments for %s: %w", a.ID, err)
			}
			for _, att := range attachments {
				exported.Attachments = append(exported.Attachments, ExportAttachment{
					ID:         att.ID,
					Type:       string(att.Type),
					FileName:   att.FileName,
					FileSize:   att.FileSize,
					LocalPath:  att.LocalPath,
					UploadedAt: att.UploadedAt.Format(time.RFC3339),
					OCRText:    att.OCRText,
				})
			}
		}

		data.Activities = append(data.Activities, exported)
	}

	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	for _, entry := range ledger {
		data.Migrations = append(data.Migrations, entry.ID)
	}

	return data, nil
}

// ExportToYAML exports data to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, userID string, includeDeleted bool, outputPath string) error {
	data, err := s.Export(ctx, userID, includeDeleted)
	if err != nil {
		return err
	}

	return writeExportFile(outputPath, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	})
}

// ExportToMarkdown exports data to a Markdown file
func (s *Storage) ExportToMarkdown(ctx context.Context, userID string, includeDeleted bool, outputPath string) error {
	data, err := s.Export(ctx, userID, includeDeleted)
	if err != nil {
		return err
	}

	return writeExportFile(outputPath, func(w io.Writer) error {
		writeMarkdown(w, data)
		return nil
	})
}

func writeExportFile(outputPath string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

var markdownSections = []struct {
	typ     models.ActivityType
	heading string
}{
	{models.ActivityNote, "Notes"},
	{models.ActivityTask, "Tasks"},
	{models.ActivityExpense, "Expenses"},
	{models.ActivityReminder, "Reminders"},
}

func writeMarkdown(w io.Writer, data *ExportData) {
	_, _ = fmt.Fprintf(w, "# Activities Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	if data.User != nil && data.User.DisplayName != "" {
		_, _ = fmt.Fprintf(w, "Owner: %s\n\n", data.User.DisplayName)
	}

	for _, section := range markdownSections {
		var items []ExportActivity
		for _, a := range data.Activities {
			if a.Type == string(section.typ) {
				items = append(items, a)
			}
		}
		if len(items) == 0 {
			continue
		}

		_, _ = fmt.Fprintf(w, "## %s\n\n", section.heading)

		if section.typ == models.ActivityExpense {
			_, _ = fmt.Fprintln(w, "| Date | Title | Amount | Category |")
			_, _ = fmt.Fprintln(w, "|------|-------|--------|----------|")
			for _, a := range items {
				amount := "-"
				if a.Amount != nil {
					amount = strconv.FormatFloat(*a.Amount, 'f', 2, 64) + " " + a.Currency
				}
				_, _ = fmt.Fprintf(w, "| %s | %s | %s | %s |\n", a.CreatedAt[:10], a.Title, amount, a.Category)
			}
			_, _ = fmt.Fprintln(w)
			continue
		}

		for _, a := range items {
			line := "- **" + a.Title + "**"
			if a.Category != "" {
				line += " _(" + a.Category + ")_"
			}
			if a.Recurrence != "" {
				line += " - repeats " + a.Recurrence
			}
			if a.Deleted {
				line += " ~~deleted~~"
			}
			_, _ = fmt.Fprintln(w, line)
			if a.Description != "" {
				_, _ = fmt.Fprintf(w, "  %s\n", a.Description)
			}
			for _, att := range a.Attachments {
				_, _ = fmt.Fprintf(w, "  - attachment: %s (%s)\n", att.FileName, att.Type)
			}
		}
		_, _ = fmt.Fprintln(w)
	}
}

func formatRecurrence(r models.RecurrenceRule) string {
	out := string(r.Frequency)
	if r.Interval != nil && *r.Interval > 1 {
		out = fmt.Sprintf("every %d (%s)", *r.Interval, r.Frequency)
	}
	if r.EndDate != nil {
		out += " until " + r.EndDate.Format("2006-01-02")
	}
	return out
}
