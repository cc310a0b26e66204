// ABOUTME: Tagged patch type for partial activity updates
// ABOUTME: Field distinguishes "absent" from "set to a value" and "set to NULL"
package models

// Field is an optional patch value. The zero Field is absent.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Set returns a present Field holding v
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Null returns a present Field that clears the column
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// IsSet reports whether the field takes part in the update
func (f Field[T]) IsSet() bool { return f.set }

// IsNull reports whether the field clears the column
func (f Field[T]) IsNull() bool { return f.set && f.null }

// Value returns the held value and whether it is a non-null value
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set && !f.null
}

// ActivityPatch lists the updatable fields of an activity and its expense.
//
// Type is a discriminator, not an update: activity type is immutable.
// Amount and Currency are only applied when Type is ActivityExpense.
type ActivityPatch struct {
	Type        ActivityType
	Title       Field[string]
	Description Field[string]
	Category    Field[string]
	Recurrence  Field[RecurrenceRule]

	Amount   Field[float64]
	Currency Field[string]
}

// HasActivityFields reports whether any activities column is patched
func (p ActivityPatch) HasActivityFields() bool {
	return p.Title.IsSet() || p.Description.IsSet() || p.Category.IsSet() || p.Recurrence.IsSet()
}

// HasExpenseFields reports whether the expenses row is patched
func (p ActivityPatch) HasExpenseFields() bool {
	return p.Type == ActivityExpense && (p.Amount.IsSet() || p.Currency.IsSet())
}

// Empty reports whether the patch would change nothing
func (p ActivityPatch) Empty() bool {
	return !p.HasActivityFields() && !p.HasExpenseFields()
}
