// ABOUTME: Tests for the tagged patch field and ActivityPatch helpers
// ABOUTME: Verifies absent, set and null states and expense gating
package models

import "testing"

func TestField(t *testing.T) {
	var absent Field[string]
	if absent.IsSet() || absent.IsNull() {
		t.Error("zero Field should be absent")
	}
	if _, ok := absent.Value(); ok {
		t.Error("absent Field should have no value")
	}

	set := Set("hello")
	if !set.IsSet() || set.IsNull() {
		t.Error("Set should be present and non-null")
	}
	if v, ok := set.Value(); !ok || v != "hello" {
		t.Errorf("Value() = %q, %v", v, ok)
	}

	empty := Set("")
	if v, ok := empty.Value(); !ok || v != "" {
		t.Error("Set(\"\") is a value, not a clear")
	}

	null := Null[float64]()
	if !null.IsSet() || !null.IsNull() {
		t.Error("Null should be present and null")
	}
	if _, ok := null.Value(); ok {
		t.Error("Null should have no value")
	}
}

func TestActivityPatchEmpty(t *testing.T) {
	tests := []struct {
		name      string
		patch     ActivityPatch
		wantEmpty bool
		expense   bool
	}{
		{"nothing", ActivityPatch{Type: ActivityNote}, true, false},
		{"title", ActivityPatch{Type: ActivityNote, Title: Set("x")}, false, false},
		{"clear category", ActivityPatch{Type: ActivityNote, Category: Null[string]()}, false, false},
		{"recurrence", ActivityPatch{Type: ActivityTask, Recurrence: Set(RecurrenceRule{Frequency: FrequencyDaily})}, false, false},
		{"amount on expense", ActivityPatch{Type: ActivityExpense, Amount: Set(5.0)}, false, true},
		{"currency on expense", ActivityPatch{Type: ActivityExpense, Currency: Set("USD")}, false, true},
		{"amount on note", ActivityPatch{Type: ActivityNote, Amount: Set(5.0)}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.Empty(); got != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", got, tt.wantEmpty)
			}
			if got := tt.patch.HasExpenseFields(); got != tt.expense {
				t.Errorf("HasExpenseFields() = %v, want %v", got, tt.expense)
			}
		})
	}
}
