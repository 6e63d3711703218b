package models

import "time"

// NotificationKind distinguishes the notification records written by the core
type NotificationKind string

const (
	NotificationEventCancelled NotificationKind = "EVENT_CANCELLED"
)

// Notification is a best-effort side record written when an event is
// cancelled. Failures writing it never roll back the status change.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	EventID   int64            `json:"eventId" db:"event_id"`
	Message   string           `json:"message" db:"message"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
