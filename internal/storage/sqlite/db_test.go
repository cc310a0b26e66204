// ABOUTME: Tests for SQLite database lifecycle and schema initialization
// ABOUTME: Verifies lazy init, single-flight opens, failure reset and schema contents
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	db := newTestDB(t)

	conn, err := db.Handle()
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, ":memory:", db.Path())
}

func TestSchemaInitialization(t *testing.T) {
	db := newTestDB(t)

	for _, table := range Tables {
		var name string
		err := db.QueryRow(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s does not exist", table)
	}
}

func TestSchemaParentsBeforeChildren(t *testing.T) {
	position := map[string]int{}
	for i, table := range Tables {
		position[table] = i
	}

	children := map[string]string{
		"activities":       "users",
		"notes":            "activities",
		"tasks":            "activities",
		"task_templates":   "users",
		"task_completions": "tasks",
		"attachments":      "activities",
		"expenses":         "activities",
		"reminders":        "activities",
		"llm_call_logs":    "users",
	}
	for child, parent := range children {
		assert.Less(t, position[parent], position[child], "%s must be created before %s", parent, child)
	}
}

func TestIndexesExist(t *testing.T) {
	db := newTestDB(t)

	indexes := []string{
		"idx_activities_user_created",
		"idx_activities_type",
		"idx_attachments_activity",
		"idx_reminders_remind_at",
		"idx_sync_queue_created",
		"idx_llm_call_logs_created",
	}
	for _, idx := range indexes {
		var name string
		err := db.QueryRow(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		assert.NoError(t, err, "index %s does not exist", idx)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var enabled int
	require.NoError(t, db.QueryRow(context.Background(), "PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestOpenCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "activities.db")

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created")
}

func TestOpenExistingDatabaseIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activities.db")

	for i := 0; i < 3; i++ {
		db, err := Open(dbPath)
		require.NoError(t, err, "open %d", i)
		require.NoError(t, db.Close())
	}
}

func TestDefaultDBPath(t *testing.T) {
	assert.NotEmpty(t, DefaultDataDir())
	assert.Equal(t, "activities.db", filepath.Base(DefaultDBPath()))
}

func TestHandleBeforeInit(t *testing.T) {
	db := New(":memory:")

	_, err := db.Handle()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestExecInitializesLazily(t *testing.T) {
	db := New(":memory:")
	defer func() { _ = db.Close() }()

	_, err := db.Exec(context.Background(), `INSERT INTO users (id) VALUES ('u1')`)
	require.NoError(t, err)

	_, err = db.Handle()
	assert.NoError(t, err)
}

func TestConcurrentInitOpensOnce(t *testing.T) {
	var opens int32
	opener := func(driver, dsn string) (*sql.DB, error) {
		atomic.AddInt32(&opens, 1)
		return sql.Open(driver, dsn)
	}

	db := New(filepath.Join(t.TempDir(), "activities.db"), WithOpener(opener))
	defer func() { _ = db.Close() }()

	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Init(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&opens))
}

func TestInitSchemaFailureResets(t *testing.T) {
	db := New(":memory:", WithSchema([]string{
		`CREATE TABLE IF NOT EXISTS ok (id TEXT)`,
		`CREATE TABLE broken (`,
	}))

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Init(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.Error(t, err, "caller %d", i)
	}

	_, err := db.Handle()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitRetriesAfterOpenFailure(t *testing.T) {
	var attempts int32
	opener := func(driver, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("disk unavailable")
		}
		return sql.Open(driver, dsn)
	}

	db := New(":memory:", WithOpener(opener))
	defer func() { _ = db.Close() }()

	err := db.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk unavailable")

	require.NoError(t, db.Init(context.Background()))
	_, err = db.Handle()
	assert.NoError(t, err)
}

func TestQueryRowReportsInitError(t *testing.T) {
	opener := func(driver, dsn string) (*sql.DB, error) {
		return nil, errors.New("no database for you")
	}
	db := New(":memory:", WithOpener(opener))

	var n int
	err := db.QueryRow(context.Background(), "SELECT 1").Scan(&n)
	assert.ErrorContains(t, err, "no database for you")
}

func TestCloseMultipleTimes(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.NoError(t, db.Close())

	_, err = db.Handle()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id) VALUES ('u1')`); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM users`))
}
