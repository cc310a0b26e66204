// ABOUTME: Tests for LLM call log storage
// ABOUTME: Verifies recording raw logs and chat completions, and newest-first listing
package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/activities/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLMCallLogStore(t *testing.T) *LLMCallLogStore {
	t.Helper()
	db := newTestDB(t)
	seedUser(t, db, "u1")
	store := NewLLMCallLogStore(db)
	store.now = stepClock(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	return store
}

func TestRecordDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestLLMCallLogStore(t)

	id, err := store.Record(ctx, models.LLMCallLog{Provider: "openai", Model: "gpt-4o-mini", TotalTokens: 42})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	logs := store.ListRecent(ctx, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].ID)
	assert.Equal(t, models.LLMCallSuccess, logs[0].Status)
	assert.Empty(t, logs[0].UserID)
	assert.Equal(t, 42, logs[0].TotalTokens)
}

func TestRecordChatSuccess(t *testing.T) {
	ctx := context.Background()
	store := newTestLLMCallLogStore(t)

	req := openai.ChatCompletionRequest{Model: openai.GPT4oMini}
	resp := openai.ChatCompletionResponse{
		Model: "gpt-4o-mini-2024-07-18",
		Usage: openai.Usage{PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42},
	}

	_, err := store.RecordChat(ctx, "u1", req, resp, 850*time.Millisecond, nil)
	require.NoError(t, err)

	logs := store.ListRecent(ctx, 0)
	require.Len(t, logs, 1)
	l := logs[0]
	assert.Equal(t, "u1", l.UserID)
	assert.Equal(t, "openai", l.Provider)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", l.Model)
	assert.Equal(t, 30, l.PromptTokens)
	assert.Equal(t, 12, l.CompletionTokens)
	assert.Equal(t, 42, l.TotalTokens)
	assert.Equal(t, int64(850), l.LatencyMS)
	assert.Equal(t, models.LLMCallSuccess, l.Status)
}

func TestRecordChatError(t *testing.T) {
	ctx := context.Background()
	store := newTestLLMCallLogStore(t)

	req := openai.ChatCompletionRequest{Model: openai.GPT4oMini}
	_, err := store.RecordChat(ctx, "u1", req, openai.ChatCompletionResponse{}, time.Second, errors.New("rate limited"))
	require.NoError(t, err)

	logs := store.ListRecent(ctx, 1)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LLMCallError, logs[0].Status)
	assert.Equal(t, "rate limited", logs[0].ErrorMessage)
	assert.Equal(t, openai.GPT4oMini, logs[0].Model)
	assert.Zero(t, logs[0].TotalTokens)
}

func TestListRecentCallsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestLLMCallLogStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Record(ctx, models.LLMCallLog{Provider: "openai", Model: "m"})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	logs := store.ListRecent(ctx, 2)
	require.Len(t, logs, 2)
	assert.Equal(t, ids[2], logs[0].ID)
	assert.Equal(t, ids[1], logs[1].ID)
}

func TestRecordUnknownUserFails(t *testing.T) {
	store := newTestLLMCallLogStore(t)

	_, err := store.Record(context.Background(), models.LLMCallLog{UserID: "ghost", Provider: "openai", Model: "m"})
	assert.Error(t, err)
}
