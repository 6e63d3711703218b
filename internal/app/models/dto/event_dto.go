package dto

import (
	"time"

	"github.com/matteo/veloclub/internal/app/models"
)

// ServiceConfigRequest configures one extra service key on create/update
type ServiceConfigRequest struct {
	Enabled bool    `json:"enabled"`
	Label   *string `json:"label,omitempty" binding:"omitempty,max=100"`
}

// CreateEventRequest represents the payload for creating an event
type CreateEventRequest struct {
	Title           string                          `json:"title" binding:"required,min=3,max=200"`
	Description     *string                         `json:"description,omitempty" binding:"omitempty,max=2000"`
	Kind            string                          `json:"kind" binding:"required,oneof=RIDE TREK TRIP SOCIAL"`
	MeetingPoint    string                          `json:"meetingPoint" binding:"required,max=300"`
	StartsAt        time.Time                       `json:"startsAt" binding:"required"`
	MaxParticipants *int                            `json:"maxParticipants,omitempty" binding:"omitempty,min=1"`
	ExtraServices   map[string]ServiceConfigRequest `json:"extraServices,omitempty"`
	TrekDetails     *models.TrekDetails             `json:"trekDetails,omitempty"`
	TripDetails     *models.TripDetails             `json:"tripDetails,omitempty"`
}

// UpdateEventRequest represents the payload for updating an event. The set of
// enabled service keys is diffed server-side against the stored event before
// persisting; enabling a new key is rejected once the event has participants.
type UpdateEventRequest struct {
	Title           *string                         `json:"title,omitempty" binding:"omitempty,min=3,max=200"`
	Description     *string                         `json:"description,omitempty" binding:"omitempty,max=2000"`
	MeetingPoint    *string                         `json:"meetingPoint,omitempty" binding:"omitempty,max=300"`
	StartsAt        *time.Time                      `json:"startsAt,omitempty"`
	MaxParticipants *int                            `json:"maxParticipants,omitempty" binding:"omitempty,min=1"`
	ExtraServices   map[string]ServiceConfigRequest `json:"extraServices,omitempty"`
	TrekDetails     *models.TrekDetails             `json:"trekDetails,omitempty"`
	TripDetails     *models.TripDetails             `json:"tripDetails,omitempty"`
}

// EventFilterRequest carries the list filters
type EventFilterRequest struct {
	Status   *string
	Kind     *string
	From     *time.Time
	Page     int
	PageSize int
}

// EventResponse represents an event in list responses
type EventResponse struct {
	ID               int64                `json:"id"`
	Title            string               `json:"title"`
	Description      *string              `json:"description,omitempty"`
	Kind             string               `json:"kind" enums:"RIDE,TREK,TRIP,SOCIAL"`
	MeetingPoint     string               `json:"meetingPoint"`
	StartsAt         time.Time            `json:"startsAt"`
	MaxParticipants  *int                 `json:"maxParticipants,omitempty"`
	Status           string               `json:"status" enums:"ACTIVE,CANCELLED,ARCHIVED"`
	ExtraServices    models.ExtraServices `json:"extraServices"`
	TrekDetails      *models.TrekDetails  `json:"trekDetails,omitempty"`
	TripDetails      *models.TripDetails  `json:"tripDetails,omitempty"`
	TrackFileURL     *string              `json:"trackFileUrl,omitempty"`
	CreatedBy        int64                `json:"createdBy"`
	ParticipantCount int                  `json:"participantCount"`
	IsFull           bool                 `json:"isFull"`
	HasJoined        bool                 `json:"hasJoined"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// FromEvent converts a models.Event to an EventResponse with the given
// unified participant count
func FromEvent(event *models.Event, participantCount int) EventResponse {
	if event == nil {
		return EventResponse{}
	}
	return EventResponse{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		Kind:             string(event.Kind),
		MeetingPoint:     event.MeetingPoint,
		StartsAt:         event.StartsAt,
		MaxParticipants:  event.MaxParticipants,
		Status:           string(event.Status),
		ExtraServices:    event.ExtraServices,
		TrekDetails:      event.TrekDetails,
		TripDetails:      event.TripDetails,
		TrackFileURL:     event.TrackFileURL,
		CreatedBy:        event.CreatedBy,
		ParticipantCount: participantCount,
		IsFull:           event.IsFull(participantCount),
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}
}

// RosterEntryResponse is one row of the unified roster
type RosterEntryResponse struct {
	ID       string                          `json:"id"`
	Origin   string                          `json:"origin" enums:"self,manual"`
	UserID   *int64                          `json:"userId,omitempty"`
	Name     string                          `json:"name"`
	Note     *string                         `json:"note,omitempty"`
	Services map[string]models.ServiceChoice `json:"services,omitempty"`
	JoinedAt *time.Time                      `json:"joinedAt,omitempty"`
}

// ServiceTallyResponse aggregates the yes/no answers for one service key
type ServiceTallyResponse struct {
	Label string `json:"label"`
	Yes   int    `json:"yes"`
	No    int    `json:"no"`
}

// EventDetailResponse is the full detail payload: event, unified roster,
// per-service tallies and the capability flags for the viewing user
type EventDetailResponse struct {
	EventResponse
	Roster  []RosterEntryResponse           `json:"roster"`
	Tallies map[string]ServiceTallyResponse `json:"tallies"`
	CanJoin bool                            `json:"canJoin"`
}

// EventListResponse represents a paginated list of events
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	PaginationInfo
}

// NotificationResponse is one cancellation record in the notifications feed
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	EventID   int64     `json:"eventId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
