package commit_changes

import "fmt"

// errorList collects the failures of one run. It is append-only and a new
// list is created for every run.
type errorList struct {
	items []string
}

func (l *errorList) Add(msg string) {
	l.items = append(l.items, msg)
}

func (l *errorList) Len() int {
	return len(l.items)
}

func (l *errorList) Items() []string {
	return append([]string(nil), l.items...)
}

// FormatError renders the user-visible description of a failed field write.
func FormatError(label, field, reason string) string {
	return fmt.Sprintf("Error in %s - %s: %s", label, field, reason)
}
