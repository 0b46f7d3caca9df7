package task

import "strings"

// Filter selects tasks from the in-memory collection. Empty fields are inactive;
// active fields are combined with AND.
type Filter struct {
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Search   string   `json:"search,omitempty"`
}

// Active reports whether any predicate is set.
func (f Filter) Active() bool {
	return f.Status != "" || f.Priority != "" || f.Assignee != "" || strings.TrimSpace(f.Search) != ""
}

// Match reports whether t satisfies every active predicate.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Assignee != "" && t.AssigneeID != f.Assignee {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the tasks matching f, preserving order.
func Apply(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
