package task

import "strings"

// Filter returns the tasks matching query, preserving snapshot order. The
// query is trimmed and case-folded; an empty query passes the snapshot
// through unchanged. A task matches when the folded query is a substring of
// its folded title, or of its folded description when one is present.
func Filter(snapshot []Task, query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return snapshot
	}
	matched := make([]Task, 0, len(snapshot))
	for _, t := range snapshot {
		if strings.Contains(strings.ToLower(t.Title), q) {
			matched = append(matched, t)
			continue
		}
		if t.Description != "" && strings.Contains(strings.ToLower(t.Description), q) {
			matched = append(matched, t)
		}
	}
	return matched
}
