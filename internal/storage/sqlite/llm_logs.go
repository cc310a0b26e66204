// ABOUTME: LLM call log storage for SQLite
// ABOUTME: Persists token usage and latency of chat completions made for a user
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/activities/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// LLMCallLogStore handles llm_call_logs persistence
type LLMCallLogStore struct {
	db    *DB
	now   func() time.Time
	newID func() string
}

// NewLLMCallLogStore creates a new LLMCallLogStore
func NewLLMCallLogStore(db *DB) *LLMCallLogStore {
	return &LLMCallLogStore{db: db, now: time.Now, newID: uuid.NewString}
}

// Record saves a call log and returns its id
func (s *LLMCallLogStore) Record(ctx context.Context, l models.LLMCallLog) (string, error) {
	if l.ID == "" {
		l.ID = s.newID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
	}
	if l.Status == "" {
		l.Status = models.LLMCallSuccess
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO llm_call_logs
		(id, user_id, provider, model, prompt_tokens, completion_tokens, total_tokens,
		 latency_ms, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, nullString(l.UserID), l.Provider, l.Model, l.PromptTokens, l.CompletionTokens,
		l.TotalTokens, l.LatencyMS, string(l.Status), nullString(l.ErrorMessage), l.CreatedAt.UTC())
	if err != nil {
		s.db.logger.Error("record llm call failed", "model", l.Model, "err", err)
		return "", fmt.Errorf("record llm call: %w", err)
	}
	return l.ID, nil
}

// RecordChat logs one chat completion call. callErr is the error returned by
// the client, if any; resp is ignored in that case.
// Callers are the LLM integrations that sit outside this module, such as an
// assistant that turns free text into activities; `activities calls` reads
// what they record.
func (s *LLMCallLogStore) RecordChat(
	ctx context.Context,
	userID string,
	req openai.ChatCompletionRequest,
	resp openai.ChatCompletionResponse,
	latency time.Duration,
	callErr error,
) (string, error) {
	l := models.LLMCallLog{
		UserID:    userID,
		Provider:  "openai",
		Model:     req.Model,
		LatencyMS: latency.Milliseconds(),
		Status:    models.LLMCallSuccess,
	}
	if callErr != nil {
		l.Status = models.LLMCallError
		l.ErrorMessage = callErr.Error()
	} else {
		if resp.Model != "" {
			l.Model = resp.Model
		}
		l.PromptTokens = resp.Usage.PromptTokens
		l.CompletionTokens = resp.Usage.CompletionTokens
		l.TotalTokens = resp.Usage.TotalTokens
	}
	return s.Record(ctx, l)
}

// ListRecent returns the newest call logs. Query failures yield an empty list.
func (s *LLMCallLogStore) ListRecent(ctx context.Context, limit int) []models.LLMCallLog {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, provider, model, prompt_tokens, completion_tokens, total_tokens,
			latency_ms, status, error_message, created_at
		FROM llm_call_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		s.db.logger.Error("list llm calls failed", "err", err)
		return []models.LLMCallLog{}
	}
	defer func() { _ = rows.Close() }()

	logs := []models.LLMCallLog{}
	for rows.Next() {
		var (
			l       models.LLMCallLog
			userID  sql.NullString
			status  string
			message sql.NullString
		)
		err := rows.Scan(&l.ID, &userID, &l.Provider, &l.Model, &l.PromptTokens, &l.CompletionTokens,
			&l.TotalTokens, &l.LatencyMS, &status, &message, &l.CreatedAt)
		if err != nil {
			s.db.logger.Error("list llm calls failed", "err", err)
			return []models.LLMCallLog{}
		}
		l.UserID = userID.String
		l.Status = models.LLMCallStatus(status)
		l.ErrorMessage = message.String
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		s.db.logger.Error("list llm calls failed", "err", err)
		return []models.LLMCallLog{}
	}
	return logs
}
