package dto

import "github.com/matteo/veloclub/internal/app/models"

// JoinEventRequest represents the payload for joining an event. Services must
// carry a yes/no answer for every enabled extra service key.
type JoinEventRequest struct {
	Note     *string           `json:"note,omitempty"`
	Services map[string]string `json:"services,omitempty" example:"lunch:yes,overnight:no"`
}

// UpdateParticipationRequest represents a participant editing their own
// note/services, or an admin editing any participant
type UpdateParticipationRequest struct {
	Note     *string           `json:"note,omitempty"`
	Services map[string]string `json:"services,omitempty"`
}

// AddManualParticipantRequest represents an admin adding a stand-in for
// someone without an account
type AddManualParticipantRequest struct {
	Name     string            `json:"name" binding:"required,min=2,max=100"`
	Note     *string           `json:"note,omitempty"`
	Services map[string]string `json:"services,omitempty"`
}

// ParticipantResponse represents one self-registered participant row
type ParticipantResponse struct {
	ID          int64                           `json:"id"`
	UserID      int64                           `json:"userId"`
	DisplayName string                          `json:"displayName"`
	Note        *string                         `json:"note,omitempty"`
	Services    map[string]models.ServiceChoice `json:"services,omitempty"`
	JoinedAt    *string                         `json:"joinedAt,omitempty"`
}
