// ABOUTME: User storage operations for SQLite
// ABOUTME: Owner rows referenced by activities; upserted from the auth layer
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/activities/internal/models"
)

// UserStore handles user persistence
type UserStore struct {
	db  *DB
	now func() time.Time
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db, now: time.Now}
}

// Upsert saves a user. Empty fields and created_at never overwrite stored values.
func (s *UserStore) Upsert(ctx context.Context, u models.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, display_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = COALESCE(excluded.email, users.email),
			display_name = COALESCE(excluded.display_name, users.display_name)
	`, u.ID, nullString(u.Email), nullString(u.DisplayName), createdAt.UTC())
	if err != nil {
		s.db.logger.Error("upsert user failed", "id", u.ID, "err", err)
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Get retrieves a user by id, returning nil if not found
func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	var (
		u           models.User
		email       sql.NullString
		displayName sql.NullString
	)

	err := s.db.QueryRow(ctx, `
		SELECT id, email, display_name, created_at
		FROM users
		WHERE id = ?
	`, id).Scan(&u.ID, &email, &displayName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.Email = email.String
	u.DisplayName = displayName.String
	return &u, nil
}
