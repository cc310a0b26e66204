// ABOUTME: Activity is the universal record type (note, task, expense, reminder)
// ABOUTME: Also defines the input shape used when creating a new activity
package models

import (
	"fmt"
	"time"
)

// ActivityType identifies which variant an activity is
type ActivityType string

const (
	ActivityNote     ActivityType = "note"
	ActivityTask     ActivityType = "task"
	ActivityExpense  ActivityType = "expense"
	ActivityReminder ActivityType = "reminder"
)

// DefaultCurrency is used for expenses created without an explicit currency
const DefaultCurrency = "INR"

// Valid reports whether t is one of the known activity types
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityNote, ActivityTask, ActivityExpense, ActivityReminder:
		return true
	}
	return false
}

// ParseActivityType converts a string into an ActivityType
func ParseActivityType(s string) (ActivityType, error) {
	t := ActivityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown activity type %q", s)
	}
	return t, nil
}

// Activity is a stored activity row, optionally joined with its expense
// fields and attachment count.
type Activity struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        ActivityType    `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	IsDeleted   bool            `json:"is_deleted"`
	Recurrence  *RecurrenceRule `json:"recurrence_rule,omitempty"`

	Amount          *float64 `json:"amount,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	AttachmentCount int      `json:"attachment_count"`
}

// NewActivity carries the fields needed to create an activity.
// Amount and Currency only matter when Type is ActivityExpense.
type NewActivity struct {
	Type        ActivityType
	Title       string
	Description string
	Category    string
	Recurrence  *RecurrenceRule
	Amount      *float64
	Currency    string
}

// HasExpense reports whether creating this activity also inserts an expense row
func (a NewActivity) HasExpense() bool {
	return a.Type == ActivityExpense && a.Amount != nil
}

// CurrencyOrDefault returns the currency, falling back to DefaultCurrency
func (a NewActivity) CurrencyOrDefault() string {
	if a.Currency == "" {
		return DefaultCurrency
	}
	return a.Currency
}
