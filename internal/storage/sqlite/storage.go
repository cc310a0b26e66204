// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Holds the shared DB handle and one instance of each store
package sqlite

import "context"

// Storage groups the stores that share one database
type Storage struct {
	DB          *DB
	Users       *UserStore
	Activities  *ActivityStore
	Attachments *AttachmentStore
	LLMCalls    *LLMCallLogStore
}

// NewStorage wires every store to db. Nothing is opened until first use.
func NewStorage(db *DB, fs FileSystem, attachmentsDir string) *Storage {
	return &Storage{
		DB:          db,
		Users:       NewUserStore(db),
		Activities:  NewActivityStore(db),
		Attachments: NewAttachmentStore(db, fs, attachmentsDir),
		LLMCalls:    NewLLMCallLogStore(db),
	}
}

// Init opens the database and runs every store's migrations
func (s *Storage) Init(ctx context.Context) error {
	if err := s.DB.Init(ctx); err != nil {
		return err
	}
	s.Activities.Migrate(ctx)
	s.Attachments.Migrate(ctx)
	return nil
}

// Ledger returns the applied structural migrations
func (s *Storage) Ledger(ctx context.Context) ([]LedgerEntry, error) {
	return NewMigrator(s.DB).Ledger(ctx)
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
