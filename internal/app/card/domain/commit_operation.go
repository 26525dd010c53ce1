package domain

import "fmt"

// PreviewValueLimit caps how many characters of a value are shown in the
// progress field label.
const PreviewValueLimit = 30

// CommitOperation is a single-field write. One operation maps to exactly one
// remote write call.
type CommitOperation struct {
	EntityKey  string   `json:"entityKey"`
	EntityType CardType `json:"entityType"`
	EntityID   int64    `json:"entityId"`
	FieldName  string   `json:"fieldName"`
	Value      string   `json:"value"`
	Label      string   `json:"label"`
}

// Preview renders "field: value" with the value truncated for display.
func (op CommitOperation) Preview() string {
	return fmt.Sprintf("%s: %s", op.FieldName, TruncateValue(op.Value, PreviewValueLimit))
}

// Change is the registry field value this operation writes.
func (op CommitOperation) Change() FieldChange {
	return FieldChange{Name: op.FieldName, Value: op.Value}
}

// TruncateValue cuts s to limit characters and appends "..." when it was
// longer. Counting is done in runes so multi-byte text is not split.
func TruncateValue(s string, limit int) string {
	r := []rune(s)
	if limit < 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
