package domain

import "time"

// Audit target types recorded in activity log entries.
const (
	TargetUser  = "user"
	TargetGame  = "game"
	TargetOrder = "order"
)

// ActivityLog is an immutable audit record of an administrative action.
// Entries are append-only; nothing in the service updates or deletes them.
// AdminID and TargetID are plain identifiers, not enforced references, so a
// log entry survives deletion of its subject.
type ActivityLog struct {
	ID         string
	AdminID    string
	Action     string
	TargetType string
	TargetID   string
	Details    *string
	CreatedAt  time.Time
}
