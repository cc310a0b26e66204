// ABOUTME: In-place schema migrations for existing databases
// ABOUTME: Additive column checks via PRAGMA table_info, ledger-tracked table rebuilds
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ColumnMigration adds a column when it is missing. The column's presence
// is the completion marker; no ledger row is written.
type ColumnMigration struct {
	Table      string
	Column     string
	Definition string
}

// RebuildMigration recreates a table with a new shape, for changes ALTER
// cannot express (e.g. widening a CHECK constraint). ID is recorded in the
// migrations ledger once applied.
type RebuildMigration struct {
	ID    string
	Table string
	// CreateSQL creates Table (under its original name) with the new shape.
	CreateSQL string
	// Columns are copied from the old table; each must exist in both shapes.
	Columns []string
	// Indexes are recreated after the old table is dropped.
	Indexes []string
}

// LedgerEntry is one row of the migrations ledger
type LedgerEntry struct {
	ID        string    `json:"id"`
	AppliedAt time.Time `json:"applied_at"`
}

// Migrator applies migrations against a DB
type Migrator struct {
	db  *DB
	now func() time.Time
}

// NewMigrator creates a Migrator
func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db, now: time.Now}
}

// Columns returns the column names of table. A table with no columns does
// not exist and is reported as an error.
func (m *Migrator) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := m.db.Query(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to get table info for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return columns, nil
}

// AddColumn issues ALTER TABLE ... ADD COLUMN when the column is missing and
// reports whether it did. A failed structure check is logged and treated as
// "nothing to do" so startup is never blocked by the check itself.
func (m *Migrator) AddColumn(ctx context.Context, c ColumnMigration) (bool, error) {
	columns, err := m.Columns(ctx, c.Table)
	if err != nil {
		m.db.logger.Error("column migration check failed", "table", c.Table, "column", c.Column, "err", err)
		return false, nil
	}
	if slices.Contains(columns, c.Column) {
		return false, nil
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(c.Table), quoteIdent(c.Column), c.Definition)
	if _, err := m.db.Exec(ctx, stmt); err != nil {
		return false, fmt.Errorf("add column %s.%s: %w", c.Table, c.Column, err)
	}

	m.db.logger.Info("added column", "table", c.Table, "column", c.Column)
	return true, nil
}

// Applied reports whether the ledger records migration id
func (m *Migrator) Applied(ctx context.Context, id string) (bool, error) {
	var count int
	err := m.db.QueryRow(ctx, `SELECT COUNT(*) FROM migrations WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ledger lists applied migrations, oldest first
func (m *Migrator) Ledger(ctx context.Context) ([]LedgerEntry, error) {
	rows, err := m.db.Query(ctx, `SELECT id, applied_at FROM migrations ORDER BY applied_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.AppliedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Rebuild applies r unless the ledger already records it, and reports
// whether it ran. All steps share one transaction: on any failure the
// original table is left untouched and the ledger unmarked.
func (m *Migrator) Rebuild(ctx context.Context, r RebuildMigration) (bool, error) {
	applied, err := m.Applied(ctx, r.ID)
	if err != nil {
		return false, fmt.Errorf("migration %s: check ledger: %w", r.ID, err)
	}
	if applied {
		return false, nil
	}

	temp := r.Table + "_old"
	columns := joinIdents(r.Columns)

	type step struct {
		name string
		stmt string
		args []interface{}
	}
	steps := []step{
		{"rename", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quoteIdent(r.Table), quoteIdent(temp)), nil},
		{"create", r.CreateSQL, nil},
		{"copy", fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", quoteIdent(r.Table), columns, columns, quoteIdent(temp)), nil},
		{"drop", "DROP TABLE " + quoteIdent(temp), nil},
	}
	for _, idx := range r.Indexes {
		steps = append(steps, step{"index", idx, nil})
	}
	steps = append(steps, step{"ledger", `INSERT INTO migrations (id, applied_at) VALUES (?, ?)`, []interface{}{r.ID, m.now().UTC()}})

	err = m.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, s := range steps {
			if _, err := tx.ExecContext(ctx, s.stmt, s.args...); err != nil {
				return fmt.Errorf("%s step: %w", s.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("migration %s: %w", r.ID, err)
	}

	m.db.logger.Info("applied table rebuild", "migration", r.ID, "table", r.Table)
	return true, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func joinIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
