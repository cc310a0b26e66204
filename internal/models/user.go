// ABOUTME: User owns activities; rows mirror the authenticated account
// ABOUTME: LLMCallLog records one language-model request made on a user's behalf
package models

import "time"

// User is an account that owns activities
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LLMCallStatus is the outcome of a language-model call
type LLMCallStatus string

const (
	LLMCallSuccess LLMCallStatus = "success"
	LLMCallError   LLMCallStatus = "error"
)

// LLMCallLog is one logged language-model call
type LLMCallLog struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id,omitempty"`
	Provider         string        `json:"provider"`
	Model            string        `json:"model"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	TotalTokens      int           `json:"total_tokens"`
	LatencyMS        int64         `json:"latency_ms"`
	Status           LLMCallStatus `json:"status"`
	ErrorMessage     string        `json:"error_message,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}
