// ABOUTME: Activity storage operations for SQLite
// ABOUTME: Create/list/update/soft-delete over activities with paired expense rows
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/activities/internal/models"
)

// DefaultListLimit caps ListRecent when no positive limit is given
const DefaultListLimit = 50

var activityMigrations = []ColumnMigration{
	{Table: "activities", Column: "recurrence_rule", Definition: "TEXT"},
}

const activitySelect = `
	SELECT a.id, a.user_id, a.type, a.title, a.description, a.category,
		a.created_at, a.updated_at, a.is_deleted, a.recurrence_rule,
		e.amount, e.currency,
		(SELECT COUNT(*) FROM attachments t WHERE t.activity_id = a.id) AS attachment_count
	FROM activities a
	LEFT JOIN expenses e ON e.activity_id = a.id`

// ActivityStore handles activity and expense persistence
type ActivityStore struct {
	db       *DB
	migrator *Migrator
	now      func() time.Time
	newID    func() string

	migrateOnce sync.Once
}

// NewActivityStore creates a new ActivityStore
func NewActivityStore(db *DB) *ActivityStore {
	return &ActivityStore{
		db:       db,
		migrator: NewMigrator(db),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Migrate runs the store's migrations once per process. Failures are logged
// and never block callers; a broken schema surfaces on the next read/write.
func (s *ActivityStore) Migrate(ctx context.Context) {
	s.migrateOnce.Do(func() {
		for _, c := range activityMigrations {
			if _, err := s.migrator.AddColumn(ctx, c); err != nil {
				s.db.logger.Error("activity migration failed", "table", c.Table, "column", c.Column, "err", err)
			}
		}
	})
}

// Create inserts an activity and, for expenses with an amount, its paired
// expense row. Both inserts share one transaction. Returns the new id.
func (s *ActivityStore) Create(ctx context.Context, userID string, in models.NewActivity) (string, error) {
	s.Migrate(ctx)

	var recurrence sql.NullString
	if in.Recurrence != nil {
		data, err := in.Recurrence.Serialize()
		if err != nil {
			s.db.logger.Error("create activity failed", "user", userID, "err", err)
			return "", fmt.Errorf("create activity: %w", err)
		}
		recurrence = sql.NullString{String: data, Valid: true}
	}

	id := s.newID()
	now := s.now().UTC()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activities
			(id, user_id, type, title, description, category, created_at, updated_at, is_deleted, recurrence_rule)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		`, id, userID, string(in.Type), in.Title, nullString(in.Description), nullString(in.Category),
			now, now, recurrence)
		if err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}

		if !in.HasExpense() {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expenses (id, activity_id, amount, currency)
			VALUES (?, ?, ?, ?)
		`, s.newID(), id, *in.Amount, in.CurrencyOrDefault())
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		return nil
	})
	if err != nil {
		s.db.logger.Error("create activity failed", "user", userID, "type", in.Type, "err", err)
		return "", fmt.Errorf("create activity: %w", err)
	}

	return id, nil
}

// ListRecent returns a user's non-deleted activities, newest first.
// Query failures are logged and yield an empty list.
func (s *ActivityStore) ListRecent(ctx context.Context, userID string, limit int) []models.Activity {
	s.Migrate(ctx)

	if limit <= 0 {
		limit = DefaultListLimit
	}

	activities, err := s.queryActivities(ctx, activitySelect+`
		WHERE a.user_id = ? AND a.is_deleted = 0
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		s.db.logger.Error("list activities failed", "user", userID, "err", err)
		return []models.Activity{}
	}
	return activities
}

// ListAll returns every activity of a user, oldest first. Soft-deleted rows
// are included only when includeDeleted is set. Unlike ListRecent, failures
// are returned.
func (s *ActivityStore) ListAll(ctx context.Context, userID string, includeDeleted bool) ([]models.Activity, error) {
	s.Migrate(ctx)

	query := activitySelect + ` WHERE a.user_id = ?`
	if !includeDeleted {
		query += ` AND a.is_deleted = 0`
	}
	query += ` ORDER BY a.created_at ASC, a.id ASC`

	activities, err := s.queryActivities(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list all activities: %w", err)
	}
	return activities, nil
}

func (s *ActivityStore) queryActivities(ctx context.Context, query string, args ...interface{}) ([]models.Activity, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

// Get retrieves an activity by id, including soft-deleted rows.
// Returns nil when no row exists.
func (s *ActivityStore) Get(ctx context.Context, id string) (*models.Activity, error) {
	s.Migrate(ctx)

	a, err := scanActivity(s.db.QueryRow(ctx, activitySelect+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

// Update applies the fields present in p. Activity and expense changes share
// one transaction. An empty patch is a no-op.
func (s *ActivityStore) Update(ctx context.Context, id string, p models.ActivityPatch) error {
	s.Migrate(ctx)

	if p.Empty() {
		return nil
	}

	activitySet, err := compileActivityPatch(p)
	if err != nil {
		s.db.logger.Error("update activity failed", "id", id, "err", err)
		return fmt.Errorf("update activity: %w", err)
	}
	expenseSet, err := compileExpensePatch(p)
	if err != nil {
		s.db.logger.Error("update activity failed", "id", id, "err", err)
		return fmt.Errorf("update activity: %w", err)
	}
	activitySet.add("updated_at", s.now().UTC())

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		args := append(activitySet.args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE activities SET "+activitySet.clause()+" WHERE id = ?", args...); err != nil {
			return fmt.Errorf("update activities: %w", err)
		}

		if len(expenseSet.cols) == 0 {
			return nil
		}
		return s.updateExpense(ctx, tx, id, p, expenseSet)
	})
	if err != nil {
		s.db.logger.Error("update activity failed", "id", id, "err", err)
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// updateExpense patches the expense row of an expense-typed activity,
// creating the row when the activity has none yet and an amount is given.
func (s *ActivityStore) updateExpense(ctx context.Context, tx *sql.Tx, id string, p models.ActivityPatch, set assignments) error {
	var stored string
	err := tx.QueryRowContext(ctx, `SELECT type FROM activities WHERE id = ?`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup activity type: %w", err)
	}
	if models.ActivityType(stored) != models.ActivityExpense {
		s.db.logger.Warn("ignoring expense fields for non-expense activity", "id", id, "type", stored)
		return nil
	}

	args := append(set.args, id)
	result, err := tx.ExecContext(ctx, "UPDATE expenses SET "+set.clause()+" WHERE activity_id = ?", args...)
	if err != nil {
		return fmt.Errorf("update expenses: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expenses: rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	amount, ok := p.Amount.Value()
	if !ok {
		return nil
	}
	currency, ok := p.Currency.Value()
	if !ok || currency == "" {
		currency = models.DefaultCurrency
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (id, activity_id, amount, currency)
		VALUES (?, ?, ?, ?)
	`, s.newID(), id, amount, currency); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// SoftDelete marks an activity deleted. Rows are never physically removed.
func (s *ActivityStore) SoftDelete(ctx context.Context, id string) error {
	s.Migrate(ctx)

	_, err := s.db.Exec(ctx, `
		UPDATE activities SET is_deleted = 1, updated_at = ? WHERE id = ?
	`, s.now().UTC(), id)
	if err != nil {
		s.db.logger.Error("soft delete failed", "id", id, "err", err)
		return fmt.Errorf("soft delete activity: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var (
		a           models.Activity
		activityTyp string
		description sql.NullString
		category    sql.NullString
		recurrence  sql.NullString
		amount      sql.NullFloat64
		currency    sql.NullString
	)

	err := row.Scan(&a.ID, &a.UserID, &activityTyp, &a.Title, &description, &category,
		&a.CreatedAt, &a.UpdatedAt, &a.IsDeleted, &recurrence,
		&amount, &currency, &a.AttachmentCount)
	if err != nil {
		return nil, err
	}

	a.Type = models.ActivityType(activityTyp)
	a.Description = description.String
	a.Category = category.String
	if recurrence.Valid {
		a.Recurrence = models.ParseRecurrence(recurrence.String)
	}
	if amount.Valid {
		v := amount.Float64
		a.Amount = &v
	}
	a.Currency = currency.String

	return &a, nil
}

// assignments is a compiled list of "col = ?" clauses and their arguments
type assignments struct {
	cols []string
	args []interface{}
}

func (a *assignments) add(col string, v interface{}) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, v)
}

func (a assignments) clause() string {
	return strings.Join(a.cols, ", ")
}

func setField[T any](a *assignments, col string, f models.Field[T]) {
	if !f.IsSet() {
		return
	}
	if v, ok := f.Value(); ok {
		a.add(col, v)
		return
	}
	a.add(col, nil)
}

func compileActivityPatch(p models.ActivityPatch) (assignments, error) {
	var set assignments
	setField(&set, "title", p.Title)
	setField(&set, "description", p.Description)
	setField(&set, "category", p.Category)

	if p.Recurrence.IsSet() {
		rule, ok := p.Recurrence.Value()
		if !ok {
			set.add("recurrence_rule", nil)
		} else {
			data, err := rule.Serialize()
			if err != nil {
				return assignments{}, err
			}
			set.add("recurrence_rule", data)
		}
	}
	return set, nil
}

func compileExpensePatch(p models.ActivityPatch) (assignments, error) {
	var set assignments
	if !p.HasExpenseFields() {
		return set, nil
	}
	if p.Amount.IsNull() {
		return assignments{}, errors.New("expense amount cannot be cleared")
	}
	if p.Currency.IsNull() {
		return assignments{}, errors.New("expense currency cannot be cleared")
	}
	setField(&set, "amount", p.Amount)
	setField(&set, "currency", p.Currency)
	return set, nil
}

// nullString converts an empty string to sql.NullString
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
