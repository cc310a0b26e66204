// ABOUTME: Tests for additive column migrations and ledgered table rebuilds
// ABOUTME: Covers idempotence, missing tables, rollback on failure and the attachments rebuild
package sqlite

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLegacyAttachment(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	seedUser(t, db, "u1")

	_, err := db.Exec(ctx, `INSERT INTO activities (id, user_id, type, title) VALUES ('a1', 'u1', 'note', 'Receipt')`)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `
		INSERT INTO attachments (id, activity_id, type, local_path, file_name, file_size)
		VALUES ('att1', 'a1', 'image', '/data/att1.png', 'receipt.png', 2048)
	`)
	require.NoError(t, err)
}

func TestAddColumnIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db)
	ctx := context.Background()

	c := ColumnMigration{Table: "activities", Column: "recurrence_rule", Definition: "TEXT"}

	added, err := m.AddColumn(ctx, c)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.AddColumn(ctx, c)
	require.NoError(t, err)
	assert.False(t, added)

	columns, err := m.Columns(ctx, "activities")
	require.NoError(t, err)
	assert.Equal(t, 1, countOf(columns, "recurrence_rule"))
}

func TestAddColumnKeepsExistingRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1")

	_, err := db.Exec(ctx, `INSERT INTO activities (id, user_id, type, title) VALUES ('a1', 'u1', 'task', 'Water plants')`)
	require.NoError(t, err)

	added, err := NewMigrator(db).AddColumn(ctx, ColumnMigration{Table: "activities", Column: "recurrence_rule", Definition: "TEXT"})
	require.NoError(t, err)
	require.True(t, added)

	var title string
	require.NoError(t, db.QueryRow(ctx, `SELECT title FROM activities WHERE id = 'a1' AND recurrence_rule IS NULL`).Scan(&title))
	assert.Equal(t, "Water plants", title)
}

func TestAddColumnMissingTableIsSuppressed(t *testing.T) {
	db := newTestDB(t)

	added, err := NewMigrator(db).AddColumn(context.Background(),
		ColumnMigration{Table: "no_such_table", Column: "x", Definition: "TEXT"})
	assert.NoError(t, err)
	assert.False(t, added)
}

func TestColumnsMissingTable(t *testing.T) {
	db := newTestDB(t)

	_, err := NewMigrator(db).Columns(context.Background(), "no_such_table")
	assert.ErrorContains(t, err, "does not exist")
}

func TestRebuildAttachmentsAllowsVideo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedLegacyAttachment(t, db)

	_, err := db.Exec(ctx, `
		INSERT INTO attachments (id, activity_id, type, local_path, file_name)
		VALUES ('vid0', 'a1', 'video', '/data/vid0.mp4', 'clip.mp4')
	`)
	require.Error(t, err, "legacy table should reject video")

	m := NewMigrator(db)
	ran, err := m.Rebuild(ctx, AttachmentsVideoSupport)
	require.NoError(t, err)
	assert.True(t, ran)

	var (
		fileName string
		size     int64
	)
	require.NoError(t, db.QueryRow(ctx, `SELECT file_name, file_size FROM attachments WHERE id = 'att1'`).Scan(&fileName, &size))
	assert.Equal(t, "receipt.png", fileName)
	assert.Equal(t, int64(2048), size)

	_, err = db.Exec(ctx, `
		INSERT INTO attachments (id, activity_id, type, local_path, file_name)
		VALUES ('vid1', 'a1', 'video', '/data/vid1.mp4', 'clip.mp4')
	`)
	assert.NoError(t, err)

	columns, err := m.Columns(ctx, "attachments")
	require.NoError(t, err)
	assert.Contains(t, columns, "ocr_text")
	assert.Contains(t, columns, "ocr_processed_at")

	assert.Equal(t, 1, countRows(t, db,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_attachments_activity'`))
	assert.Equal(t, 0, countRows(t, db,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='attachments_old'`))

	applied, err := m.Applied(ctx, AttachmentsVideoSupport.ID)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestRebuildRunsOnce(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db)
	ctx := context.Background()

	ran, err := m.Rebuild(ctx, AttachmentsVideoSupport)
	require.NoError(t, err)
	require.True(t, ran)

	ran, err = m.Rebuild(ctx, AttachmentsVideoSupport)
	require.NoError(t, err)
	assert.False(t, ran)

	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM migrations WHERE id = ?`, AttachmentsVideoSupport.ID))
}

func TestRebuildFailureRollsBack(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db)
	ctx := context.Background()
	seedLegacyAttachment(t, db)

	broken := AttachmentsVideoSupport
	broken.Columns = append(slices.Clone(AttachmentsVideoSupport.Columns), "no_such_column")

	ran, err := m.Rebuild(ctx, broken)
	require.Error(t, err)
	assert.False(t, ran)
	assert.Contains(t, err.Error(), "copy step")

	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM attachments WHERE id = 'att1'`))
	assert.Equal(t, 0, countRows(t, db,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='attachments_old'`))

	applied, err := m.Applied(ctx, broken.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	columns, err := m.Columns(ctx, "attachments")
	require.NoError(t, err)
	assert.NotContains(t, columns, "ocr_text")

	ran, err = m.Rebuild(ctx, AttachmentsVideoSupport)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM attachments WHERE id = 'att1'`))
}

func TestLedger(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	entries, err := m.Ledger(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = m.Rebuild(ctx, AttachmentsVideoSupport)
	require.NoError(t, err)

	entries, err = m.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, AttachmentsVideoSupport.ID, entries[0].ID)
	assert.True(t, entries[0].AppliedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"activities"`, quoteIdent("activities"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
	assert.Equal(t, `"a", "b"`, joinIdents([]string{"a", "b"}))
}

func countOf(values []string, want string) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}

func TestConcurrentFirstCallersShareOneMigrationPass(t *testing.T) {
	logger := &recordingLogger{}
	db := newTestDB(t, WithLogger(logger))
	seedLegacyAttachment(t, db)

	store := NewStorage(db, newFakeFS(), testAttachmentsDir)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				assert.NoError(t, store.Init(ctx))
			case 1:
				store.Activities.ListRecent(ctx, "u1", 10)
			default:
				store.Attachments.ListForActivity(ctx, "a1")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM migrations WHERE id = ?`, AttachmentsVideoSupport.ID))
	assert.Equal(t, 1, logger.count("info", "applied table rebuild"))
	assert.Equal(t, 1, logger.count("info", "added column"))
	assert.Empty(t, logger.errors())

	columns, err := NewMigrator(db).Columns(ctx, "activities")
	require.NoError(t, err)
	assert.Equal(t, 1, countOf(columns, "recurrence_rule"))

	assert.Len(t, store.Attachments.ListForActivity(ctx, "a1"), 1)
}
