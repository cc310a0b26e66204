// ABOUTME: Attachment storage operations for SQLite
// ABOUTME: Coordinates copied files in private storage with attachment rows
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/activities/internal/files"
	"github.com/harper/activities/internal/models"
)

// AttachmentsVideoSupport rebuilds attachments to allow the video type and
// to carry OCR results.
var AttachmentsVideoSupport = RebuildMigration{
	ID:    "attachments_video_support_v1",
	Table: "attachments",
	CreateSQL: `CREATE TABLE attachments (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		type TEXT NOT NULL CHECK (type IN ('image', 'pdf', 'document', 'video')),
		local_path TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		uploaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ocr_text TEXT,
		ocr_processed_at TIMESTAMP
	)`,
	Columns: []string{"id", "activity_id", "type", "local_path", "file_name", "file_size", "uploaded_at"},
	Indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_attachments_activity ON attachments(activity_id)`,
	},
}

var attachmentMigrations = []RebuildMigration{
	AttachmentsVideoSupport,
}

// FileSystem is the file capability attachments need
type FileSystem interface {
	Stat(path string) (files.Info, error)
	MakeDir(path string) error
	Copy(ctx context.Context, sourceURI, dest string) error
	Remove(path string) error
}

// AttachmentStore handles attachment persistence
type AttachmentStore struct {
	db       *DB
	fs       FileSystem
	dir      string
	migrator *Migrator
	now      func() time.Time
	newID    func() string

	migrateOnce sync.Once
}

// NewAttachmentStore creates a new AttachmentStore writing files under dir
func NewAttachmentStore(db *DB, fs FileSystem, dir string) *AttachmentStore {
	return &AttachmentStore{
		db:       db,
		fs:       fs,
		dir:      dir,
		migrator: NewMigrator(db),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Dir returns the directory attachment files are copied into
func (s *AttachmentStore) Dir() string {
	return s.dir
}

// Migrate runs the store's table rebuilds once per process. A failed rebuild
// is logged, leaves the old table in place and is retried on the next start.
func (s *AttachmentStore) Migrate(ctx context.Context) {
	s.migrateOnce.Do(func() {
		for _, r := range attachmentMigrations {
			if _, err := s.migrator.Rebuild(ctx, r); err != nil {
				s.db.logger.Error("attachment migration failed", "migration", r.ID, "err", err)
			}
		}
	})
}

// Save copies sourceURI into the attachments directory and records it.
// If the row cannot be inserted the copied file is removed again.
func (s *AttachmentStore) Save(ctx context.Context, activityID, sourceURI string, typ models.AttachmentType) (*models.Attachment, error) {
	s.Migrate(ctx)

	if err := s.ensureDir(); err != nil {
		s.db.logger.Error("save attachment failed", "activity", activityID, "err", err)
		return nil, fmt.Errorf("save attachment: %w", err)
	}

	id := s.newID()
	fileName := filepath.Base(files.PathFromURI(sourceURI))
	dest := filepath.Join(s.dir, id+filepath.Ext(fileName))

	if err := s.fs.Copy(ctx, sourceURI, dest); err != nil {
		s.db.logger.Error("save attachment failed", "activity", activityID, "source", sourceURI, "err", err)
		return nil, fmt.Errorf("save attachment: copy: %w", err)
	}

	var size int64
	if info, err := s.fs.Stat(dest); err == nil && info.Exists {
		size = info.Size
	}

	att := &models.Attachment{
		ID:         id,
		ActivityID: activityID,
		Type:       typ,
		LocalPath:  dest,
		FileName:   fileName,
		FileSize:   size,
		UploadedAt: s.now().UTC(),
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO attachments (id, activity_id, type, local_path, file_name, file_size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, att.ID, att.ActivityID, string(att.Type), att.LocalPath, att.FileName, att.FileSize, att.UploadedAt)
	if err != nil {
		if rmErr := s.fs.Remove(dest); rmErr != nil {
			s.db.logger.Warn("failed to remove orphaned attachment file", "path", dest, "err", rmErr)
		}
		s.db.logger.Error("save attachment failed", "activity", activityID, "err", err)
		return nil, fmt.Errorf("save attachment: insert: %w", err)
	}

	return att, nil
}

func (s *AttachmentStore) ensureDir() error {
	info, err := s.fs.Stat(s.dir)
	if err == nil && info.Exists {
		return nil
	}
	if err := s.fs.MakeDir(s.dir); err != nil {
		return fmt.Errorf("create attachments directory: %w", err)
	}
	return nil
}

// ListForActivity returns an activity's attachments, newest first.
// Query failures are logged and yield an empty list.
func (s *AttachmentStore) ListForActivity(ctx context.Context, activityID string) []models.Attachment {
	attachments, err := s.queryForActivity(ctx, activityID)
	if err != nil {
		s.db.logger.Error("list attachments failed", "activity", activityID, "err", err)
		return []models.Attachment{}
	}
	return attachments
}

func (s *AttachmentStore) queryForActivity(ctx context.Context, activityID string) ([]models.Attachment, error) {
	s.Migrate(ctx)

	rows, err := s.db.Query(ctx, `
		SELECT id, activity_id, type, local_path, file_name, file_size, uploaded_at, ocr_text, ocr_processed_at
		FROM attachments
		WHERE activity_id = ?
		ORDER BY uploaded_at DESC, id DESC
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	attachments := []models.Attachment{}
	for rows.Next() {
		var (
			att          models.Attachment
			typ          string
			ocrText      sql.NullString
			ocrProcessed sql.NullTime
		)
		err := rows.Scan(&att.ID, &att.ActivityID, &typ, &att.LocalPath, &att.FileName,
			&att.FileSize, &att.UploadedAt, &ocrText, &ocrProcessed)
		if err != nil {
			return nil, err
		}
		att.Type = models.AttachmentType(typ)
		att.OCRText = ocrText.String
		if ocrProcessed.Valid {
			t := ocrProcessed.Time
			att.OCRProcessedAt = &t
		}
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attachments, nil
}

// SetOCRText records text recognized from an attachment. It is the write
// path for an external OCR worker; nothing in this module runs OCR itself.
func (s *AttachmentStore) SetOCRText(ctx context.Context, id, text string) error {
	s.Migrate(ctx)

	_, err := s.db.Exec(ctx, `
		UPDATE attachments SET ocr_text = ?, ocr_processed_at = ? WHERE id = ?
	`, text, s.now().UTC(), id)
	if err != nil {
		s.db.logger.Error("set ocr text failed", "id", id, "err", err)
		return fmt.Errorf("set ocr text: %w", err)
	}
	return nil
}

// Delete removes the attachment row, then its file if still present.
// Deleting an unknown id is a no-op; a missing file is not an error.
func (s *AttachmentStore) Delete(ctx context.Context, id string) error {
	s.Migrate(ctx)

	var path string
	err := s.db.QueryRow(ctx, `SELECT local_path FROM attachments WHERE id = ?`, id).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.db.logger.Error("delete attachment failed", "id", id, "err", err)
		return fmt.Errorf("delete attachment: lookup: %w", err)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM attachments WHERE id = ?`, id); err != nil {
		s.db.logger.Error("delete attachment failed", "id", id, "err", err)
		return fmt.Errorf("delete attachment: %w", err)
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		s.db.logger.Error("delete attachment file failed", "id", id, "path", path, "err", err)
		return fmt.Errorf("delete attachment: stat file: %w", err)
	}
	if !info.Exists {
		s.db.logger.Warn("attachment file already missing", "id", id, "path", path)
		return nil
	}
	if err := s.fs.Remove(path); err != nil {
		s.db.logger.Error("delete attachment file failed", "id", id, "path", path, "err", err)
		return fmt.Errorf("delete attachment: remove file: %w", err)
	}
	return nil
}
