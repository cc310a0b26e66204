// ABOUTME: Shared fixtures for SQLite store tests
// ABOUTME: In-memory databases, seeded users, a deterministic clock and a fake file system
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harper/activities/internal/files"
	"github.com/harper/activities/internal/models"
	"github.com/stretchr/testify/require"
)

// newTestDB creates an initialized in-memory database
func newTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db, err := OpenInMemory(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedUser inserts a user row so activities can reference it
func seedUser(t *testing.T, db *DB, id string) {
	t.Helper()
	require.NoError(t, NewUserStore(db).Upsert(context.Background(), models.User{ID: id}))
}

// stepClock returns a clock that advances one second per call
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func countRows(t *testing.T, db *DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

// recordingLogger keeps every message logged through it
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
}

func (l *recordingLogger) record(level string, msg interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: fmt.Sprint(msg)})
}

func (l *recordingLogger) Info(msg interface{}, _ ...interface{})  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg interface{}, _ ...interface{})  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg interface{}, _ ...interface{}) { l.record("error", msg) }

// count returns how many entries match level and msg
func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			n++
		}
	}
	return n
}

func (l *recordingLogger) errors() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

// fakeFS is an in-memory FileSystem
type fakeFS struct {
	mu      sync.Mutex
	files   map[string]int64
	dirs    map[string]bool
	sources map[string]int64

	copyErr   error
	statErr   error
	removeErr error
	removed   []string
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		files:   map[string]int64{},
		dirs:    map[string]bool{},
		sources: map[string]int64{},
	}
}

func (f *fakeFS) Stat(path string) (files.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dirs[path] {
		return files.Info{Exists: true}, nil
	}
	if f.statErr != nil {
		return files.Info{}, f.statErr
	}
	size, ok := f.files[path]
	return files.Info{Exists: ok, Size: size}, nil
}

func (f *fakeFS) MakeDir(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs[path] = true
	return nil
}

func (f *fakeFS) Copy(_ context.Context, sourceURI, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return f.copyErr
	}
	size, ok := f.sources[files.PathFromURI(sourceURI)]
	if !ok {
		return errors.New("source not found")
	}
	if !f.dirs[filepath.Dir(dest)] {
		return errors.New("destination directory missing")
	}
	f.files[dest] = size
	return nil
}

func (f *fakeFS) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.files, path)
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeFS) exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}
