// ABOUTME: SQLite baseline schema for the activity store
// ABOUTME: Ordered DDL statements; parent tables must precede their children
package sqlite

// Schema is applied statement by statement, in order, on every Init.
// Every statement is idempotent. Foreign keys require parents first.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT,
		display_name TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL CHECK (type IN ('note', 'task', 'expense', 'reminder')),
		title TEXT NOT NULL CHECK (length(trim(title)) > 0),
		description TEXT,
		category TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_deleted INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL UNIQUE REFERENCES activities(id) ON DELETE CASCADE,
		content TEXT,
		is_pinned INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL UNIQUE REFERENCES activities(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed', 'cancelled')),
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
		due_date TIMESTAMP,
		completed_at TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS task_templates (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT,
		recurrence_rule TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS task_completions (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		occurrence_date TIMESTAMP NOT NULL,
		completed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (task_id, occurrence_date)
	)`,

	`CREATE TABLE IF NOT EXISTS attachments (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		type TEXT NOT NULL CHECK (type IN ('image', 'pdf', 'document')),
		local_path TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		uploaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL UNIQUE REFERENCES activities(id) ON DELETE CASCADE,
		amount REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'INR'
	)`,

	`CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		remind_at TIMESTAMP NOT NULL,
		notification_id TEXT,
		is_sent INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS sync_queue (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		operation TEXT NOT NULL CHECK (operation IN ('create', 'update', 'delete')),
		payload TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS llm_call_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL CHECK (status IN ('success', 'error')),
		error_message TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS migrations (
		id TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_user_created ON activities(user_id, is_deleted, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,
	`CREATE INDEX IF NOT EXISTS idx_attachments_activity ON attachments(activity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_remind_at ON reminders(remind_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_queue_created ON sync_queue(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_call_logs_created ON llm_call_logs(created_at)`,
}

// Tables lists every table created by Schema, in creation order
var Tables = []string{
	"users",
	"activities",
	"notes",
	"tasks",
	"task_templates",
	"task_completions",
	"attachments",
	"expenses",
	"reminders",
	"sync_queue",
	"llm_call_logs",
	"migrations",
}
