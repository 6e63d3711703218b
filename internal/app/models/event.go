package models

import (
	"time"
)

// EventKind discriminates the event variants the club schedules
type EventKind string

const (
	KindRide   EventKind = "RIDE"
	KindTrek   EventKind = "TREK"
	KindTrip   EventKind = "TRIP"
	KindSocial EventKind = "SOCIAL"
)

// Valid reports whether the kind is one of the known discriminants
func (k EventKind) Valid() bool {
	switch k {
	case KindRide, KindTrek, KindTrip, KindSocial:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	StatusActive    EventStatus = "ACTIVE"
	StatusCancelled EventStatus = "CANCELLED"
	StatusArchived  EventStatus = "ARCHIVED"
)

// Valid reports whether the status is a known lifecycle state
func (s EventStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status change is legal. Cancelled and
// archived events can only be restored to active; active events can move to
// either terminal-ish state.
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	if s == target {
		return false
	}
	switch s {
	case StatusActive:
		return target == StatusCancelled || target == StatusArchived
	case StatusCancelled, StatusArchived:
		return target == StatusActive
	}
	return false
}

// ServiceConfig is the per-event configuration of one extra service key
type ServiceConfig struct {
	Enabled bool    `json:"enabled"`
	Label   *string `json:"label,omitempty"`
}

// ExtraServices maps a service key (lunch, dinner, overnight) to its config
type ExtraServices map[string]ServiceConfig

// EnabledKeys returns the set of keys currently enabled
func (es ExtraServices) EnabledKeys() map[string]bool {
	enabled := make(map[string]bool)
	for key, cfg := range es {
		if cfg.Enabled {
			enabled[key] = true
		}
	}
	return enabled
}

// LabelFor returns the display label for a key, falling back to the key itself
func (es ExtraServices) LabelFor(key string) string {
	if cfg, ok := es[key]; ok && cfg.Label != nil && *cfg.Label != "" {
		return *cfg.Label
	}
	return key
}

// ManualParticipant is an admin-entered stand-in for someone without an
// account, embedded in the event row. The ID is assigned once at insert and is
// the only handle used for removal.
type ManualParticipant struct {
	ID       string                   `json:"id"`
	Name     string                   `json:"name"`
	Note     *string                  `json:"note,omitempty"`
	Services map[string]ServiceChoice `json:"services,omitempty"`
	AddedBy  int64                    `json:"addedBy"`
	AddedAt  time.Time                `json:"addedAt"`
}

// TrekDetails carries the trek-specific payload block
type TrekDetails struct {
	Difficulty    *string  `json:"difficulty,omitempty"`
	ElevationGain *int     `json:"elevationGain,omitempty"`
	DistanceKm    *float64 `json:"distanceKm,omitempty"`
}

// TripDetails carries the multi-day trip payload block
type TripDetails struct {
	EndsAt   *time.Time `json:"endsAt,omitempty"`
	Location *string    `json:"location,omitempty"`
}

// Event defines the event model based on the 'events' table
type Event struct {
	ID                 int64               `json:"id" db:"id"`
	Title              string              `json:"title" db:"title"`
	Description        *string             `json:"description,omitempty" db:"description"`
	Kind               EventKind           `json:"kind" db:"kind"`
	MeetingPoint       string              `json:"meetingPoint" db:"meeting_point"`
	StartsAt           time.Time           `json:"startsAt" db:"starts_at"`
	MaxParticipants    *int                `json:"maxParticipants,omitempty" db:"max_participants"`
	Status             EventStatus         `json:"status" db:"status"`
	ExtraServices      ExtraServices       `json:"extraServices" db:"extra_services"`
	ManualParticipants []ManualParticipant `json:"manualParticipants" db:"manual_participants"`
	TrekDetails        *TrekDetails        `json:"trekDetails,omitempty" db:"trek_details"`
	TripDetails        *TripDetails        `json:"tripDetails,omitempty" db:"trip_details"`
	TrackFileURL       *string             `json:"trackFileUrl,omitempty" db:"track_file_url"`
	CreatedBy          int64               `json:"createdBy" db:"created_by"`
	CreatedAt          time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time           `json:"updatedAt" db:"updated_at"`
}

// CanModifyParticipation reports whether joins, leaves, participant edits and
// manual entries are currently allowed. Only active events accept them.
func (e *Event) CanModifyParticipation() bool {
	return e.Status == StatusActive
}

// IsFull reports whether the event has reached capacity given the unified
// roster size. Events without a capacity are never full.
func (e *Event) IsFull(totalCount int) bool {
	return e.MaxParticipants != nil && totalCount >= *e.MaxParticipants
}

// HasParticipants reports whether anyone is booked, counting both the
// self-registered count and embedded manual entries. It drives the extra
// service enable lock.
func (e *Event) HasParticipants(selfCount int) bool {
	return selfCount > 0 || len(e.ManualParticipants) > 0
}

// ManualParticipantByID finds an embedded manual entry by its stable id
func (e *Event) ManualParticipantByID(id string) (ManualParticipant, bool) {
	for _, mp := range e.ManualParticipants {
		if mp.ID == id {
			return mp, true
		}
	}
	return ManualParticipant{}, false
}
