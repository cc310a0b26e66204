// ABOUTME: RecurrenceRule describes how often a task or reminder repeats
// ABOUTME: Serialized as JSON on the activity row; malformed data parses to nil
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frequency is the repeat cadence of a recurrence rule
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

// Valid reports whether f is a known frequency
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyNone, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// RecurrenceRule is the repeat configuration for an activity
type RecurrenceRule struct {
	Frequency Frequency  `json:"frequency"`
	Interval  *int       `json:"interval,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Validate checks the frequency and interval
func (r RecurrenceRule) Validate() error {
	if !r.Frequency.Valid() {
		return fmt.Errorf("invalid recurrence frequency %q", r.Frequency)
	}
	if r.Interval != nil && *r.Interval < 1 {
		return fmt.Errorf("recurrence interval must be >= 1, got %d", *r.Interval)
	}
	return nil
}

// Serialize encodes the rule for storage
func (r RecurrenceRule) Serialize() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal recurrence rule: %w", err)
	}
	return string(data), nil
}

// ParseRecurrence decodes a stored rule. Empty, malformed or invalid input
// yields nil ("no recurrence") instead of an error.
func ParseRecurrence(s string) *RecurrenceRule {
	if s == "" {
		return nil
	}
	var r RecurrenceRule
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil
	}
	if r.Validate() != nil {
		return nil
	}
	return &r
}
