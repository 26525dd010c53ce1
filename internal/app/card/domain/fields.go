package domain

import "sort"

// FieldsFromMap converts a field map into changes ordered by field name, so
// a single registration has a stable field order.
func FieldsFromMap(fields map[string]string) []FieldChange {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FieldChange, 0, len(names))
	for _, name := range names {
		out = append(out, FieldChange{Name: name, Value: fields[name]})
	}
	return out
}
