package domain

import "time"

// ActivitySeverity grades an activity log entry.
type ActivitySeverity string

const (
	SeverityInfo    ActivitySeverity = "INFO"
	SeverityWarning ActivitySeverity = "WARNING"
	SeverityError   ActivitySeverity = "ERROR"
)

// ActivityLogEntry is an append-only audit record. Entries are never updated
// or deleted by the core; retention pruning is an external concern.
type ActivityLogEntry struct {
	ID        string
	AccountID *string
	Channel   string
	Operation string
	Severity  ActivitySeverity
	Message   string
	Detail    map[string]any
	Duration  time.Duration
	CreatedAt time.Time
}
