package task

import "strings"

// Filter selects tasks by text and priority. The zero Filter matches everything.
type Filter struct {
	Query    string
	Priority *Priority
}

// IsActive reports whether f narrows the task set at all.
func (f Filter) IsActive() bool {
	return strings.TrimSpace(f.Query) != "" || f.Priority != nil
}

// Matches reports whether t passes the filter. Text search is case-insensitive
// over the name and description.
func (f Filter) Matches(t Task) bool {
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), query) ||
		strings.Contains(strings.ToLower(t.Description), query)
}
