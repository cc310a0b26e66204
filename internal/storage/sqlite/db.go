// ABOUTME: SQLite database connection and lifecycle management
// ABOUTME: Lazily opens the file once, shares in-flight opens, applies Schema in order
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned by Handle before Init has succeeded
var ErrNotInitialized = errors.New("sqlite: database not initialized")

const memoryPath = ":memory:"

// Logger is the structured logger the storage layer writes to.
// *charmlog.Logger satisfies it; implementations must not panic.
type Logger interface {
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// OpenFunc opens a database handle; sql.Open by default
type OpenFunc func(driverName, dsn string) (*sql.DB, error)

// DB wraps a SQLite database connection
type DB struct {
	path   string
	logger Logger
	open   OpenFunc
	schema []string

	mu    sync.RWMutex
	conn  *sql.DB
	group singleflight.Group
}

// Option configures a DB
type Option func(*DB)

// WithLogger sets the logger used for lifecycle and migration diagnostics
func WithLogger(l Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithOpener replaces sql.Open
func WithOpener(fn OpenFunc) Option {
	return func(db *DB) {
		if fn != nil {
			db.open = fn
		}
	}
}

// WithSchema replaces the statements applied on Init
func WithSchema(statements []string) Option {
	return func(db *DB) {
		db.schema = statements
	}
}

// DefaultDataDir returns the default data directory under $XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/activities"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "activities")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "activities.db")
}

// New creates an unopened DB for path. Nothing touches disk until Init.
func New(path string, opts ...Option) *DB {
	db := &DB{
		path:   path,
		logger: charmlog.New(io.Discard),
		open:   sql.Open,
		schema: Schema,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Open creates a DB for path and initializes it
func Open(path string, opts ...Option) (*DB, error) {
	db := New(path, opts...)
	if err := db.Init(context.Background()); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenInMemory creates an initialized in-memory database (for testing)
func OpenInMemory(opts ...Option) (*DB, error) {
	return Open(memoryPath, opts...)
}

// Init opens the database and applies Schema if that has not happened yet.
// Concurrent callers share one attempt and all receive its result. On
// failure the handle is discarded so a later call can retry.
func (db *DB) Init(ctx context.Context) error {
	if db.initialized() {
		return nil
	}

	_, err, _ := db.group.Do("init", func() (interface{}, error) {
		if db.initialized() {
			return nil, nil
		}

		conn, err := db.openAndApply(ctx)
		if err != nil {
			db.logger.Error("database init failed", "path", db.path, "err", err)
			return nil, err
		}

		db.mu.Lock()
		db.conn = conn
		db.mu.Unlock()

		db.logger.Info("database initialized", "path", db.path, "statements", len(db.schema))
		return nil, nil
	})
	return err
}

func (db *DB) openAndApply(ctx context.Context) (*sql.DB, error) {
	if db.path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	conn, err := db.open("sqlite", db.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps :memory: shared.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for i, stmt := range db.schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}

	return conn, nil
}

func (db *DB) dsn() string {
	if db.path == memoryPath {
		return memoryPath + "?_pragma=foreign_keys(ON)"
	}
	return db.path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
}

func (db *DB) initialized() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn != nil
}

// Handle returns the live connection. Calling it before Init has succeeded
// is a programming error and returns ErrNotInitialized.
func (db *DB) Handle() (*sql.DB, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.conn == nil {
		return nil, ErrNotInitialized
	}
	return db.conn, nil
}

func (db *DB) ready(ctx context.Context) (*sql.DB, error) {
	if err := db.Init(ctx); err != nil {
		return nil, err
	}
	return db.Handle()
}

// Close closes the database connection and resets to not initialized
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Exec executes a statement without returning rows
func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	conn, err := db.ready(ctx)
	if err != nil {
		return nil, err
	}
	return conn.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	conn, err := db.ready(ctx)
	if err != nil {
		return nil, err
	}
	return conn.QueryContext(ctx, query, args...)
}

// Row is the result of QueryRow; Scan reports initialization errors too
type Row struct {
	row *sql.Row
	err error
}

// Scan copies the row's columns into dest
func (r *Row) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	return r.row.Scan(dest...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(ctx context.Context, query string, args ...interface{}) *Row {
	conn, err := db.ready(ctx)
	if err != nil {
		return &Row{err: err}
	}
	return &Row{row: conn.QueryRowContext(ctx, query, args...)}
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	conn, err := db.ready(ctx)
	if err != nil {
		return nil, err
	}
	return conn.BeginTx(ctx, nil)
}

// WithTx runs fn inside a transaction, committing when fn returns nil
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
