// ABOUTME: Composition root for the activity store
// ABOUTME: Builds the database, stores and file system from configuration
package storage

import (
	"context"
	"fmt"

	"github.com/harper/activities/internal/config"
	"github.com/harper/activities/internal/files"
	"github.com/harper/activities/internal/models"
	"github.com/harper/activities/internal/storage/sqlite"
)

// Open constructs the stores described by cfg, initializes the database,
// runs migrations and makes sure the configured user exists.
func Open(ctx context.Context, cfg *config.Config, logger sqlite.Logger) (*sqlite.Storage, error) {
	db := sqlite.New(cfg.DBPath, sqlite.WithLogger(logger))
	store := sqlite.NewStorage(db, files.Local{}, cfg.AttachmentsDir)

	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := store.Users.Upsert(ctx, models.User{ID: cfg.UserID}); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return store, nil
}
