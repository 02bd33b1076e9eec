// Package timeutil holds the pure date arithmetic and classification
// predicates used by the reconciliation engine. No dependencies.
package timeutil

import "time"

// Timestamp layouts accepted from the switch, tried in order
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"20060102T150405Z",
	"2006-01-02 15:04:05",
}

// ParseDate parses a switch timestamp. Unparseable or empty input degrades
// to nil, never an error: one bad field must not block the rest of a batch.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// DiffSeconds returns to-from in whole seconds
func DiffSeconds(from, to time.Time) int {
	return int(to.Sub(from).Seconds())
}

// InQueue reports whether a record is waiting for agent pickup: queued but
// neither connected nor ended.
func InQueue(queueDate, connectedDate, endDate *time.Time) bool {
	return queueDate != nil && connectedDate == nil && endDate == nil
}

// IsAbandoned reports whether the caller hung up before being connected
// to an agent.
func IsAbandoned(connectedDate, endDate *time.Time) bool {
	return connectedDate == nil && endDate != nil
}

// IsCompleted reports whether the call reached an agent and finished.
// A connected call with no end date yet is neither in queue, abandoned,
// nor completed.
func IsCompleted(connectedDate, endDate *time.Time) bool {
	return connectedDate != nil && endDate != nil
}

// WithinDays reports whether t falls inside the trailing window of the
// given number of days ending at now.
func WithinDays(t, now time.Time, days int) bool {
	cutoff := now.AddDate(0, 0, -days)
	return t.After(cutoff) && !t.After(now)
}

// StartOfDay returns local midnight for t
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
