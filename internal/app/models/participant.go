package models

import "time"

// ServiceChoice is a participant's answer for one enabled extra service
type ServiceChoice string

const (
	ChoiceYes ServiceChoice = "yes"
	ChoiceNo  ServiceChoice = "no"
)

// Valid reports whether the choice is one of the two accepted answers
func (c ServiceChoice) Valid() bool {
	return c == ChoiceYes || c == ChoiceNo
}

// Participant is a self-registered sign-up, one row per (event, user) based on
// the 'event_participants' table. DisplayName is a snapshot taken at join time;
// the live profile wins for the viewing user's own row.
type Participant struct {
	ID          int64                    `json:"id" db:"id"`
	EventID     int64                    `json:"eventId" db:"event_id"`
	UserID      int64                    `json:"userId" db:"user_id"`
	DisplayName string                   `json:"displayName" db:"display_name"`
	Note        *string                  `json:"note,omitempty" db:"note"`
	Services    map[string]ServiceChoice `json:"services,omitempty" db:"services"`
	JoinedAt    *time.Time               `json:"joinedAt,omitempty" db:"joined_at"`

	// Related entities
	User *User `json:"user,omitempty"`
}
