package services

import (
	"strconv"
	"strings"

	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
)

// fallbackParticipantName is shown when no usable name survives the fallback
// chain. It matches what the club app has always displayed.
const fallbackParticipantName = "Utente"

// BuildRoster merges the two participant sources into the single list the
// detail view renders: self-registered rows first in join order, then manual
// entries in the order admins added them. The viewer's own row uses their live
// profile name; every other self row keeps the snapshot taken at join time.
func BuildRoster(event *models.Event, participants []*models.Participant, viewer *models.User) []dto.RosterEntryResponse {
	roster := make([]dto.RosterEntryResponse, 0, len(participants)+len(event.ManualParticipants))

	for _, p := range participants {
		name := strings.TrimSpace(p.DisplayName)
		if viewer != nil && p.UserID == viewer.ID {
			name = viewer.ResolvedName()
		}
		if name == "" {
			name = fallbackParticipantName
		}
		userID := p.UserID
		roster = append(roster, dto.RosterEntryResponse{
			ID:       "self-" + strconv.FormatInt(p.ID, 10),
			Origin:   "self",
			UserID:   &userID,
			Name:     name,
			Note:     p.Note,
			Services: p.Services,
			JoinedAt: p.JoinedAt,
		})
	}

	for _, mp := range event.ManualParticipants {
		name := strings.TrimSpace(mp.Name)
		if name == "" {
			name = fallbackParticipantName
		}
		addedAt := mp.AddedAt
		roster = append(roster, dto.RosterEntryResponse{
			ID:       mp.ID,
			Origin:   "manual",
			Name:     name,
			Note:     mp.Note,
			Services: mp.Services,
			JoinedAt: &addedAt,
		})
	}

	return roster
}

// ComputeServiceTallies aggregates the yes/no answers per enabled service key
// across the whole unified roster. Keys with no enabled config produce no tally.
func ComputeServiceTallies(event *models.Event, roster []dto.RosterEntryResponse) map[string]dto.ServiceTallyResponse {
	tallies := make(map[string]dto.ServiceTallyResponse)
	for key := range event.ExtraServices.EnabledKeys() {
		tally := dto.ServiceTallyResponse{Label: event.ExtraServices.LabelFor(key)}
		for _, entry := range roster {
			switch entry.Services[key] {
			case models.ChoiceYes:
				tally.Yes++
			case models.ChoiceNo:
				tally.No++
			}
		}
		tallies[key] = tally
	}
	return tallies
}

// CanJoin reports whether the viewing user may sign up right now. Admins may
// join past capacity; nobody joins twice, an inactive event, or before
// approval.
func CanJoin(event *models.Event, totalCount int, viewer *models.User, hasJoined bool) bool {
	if viewer == nil || !viewer.CanParticipate() {
		return false
	}
	if !event.CanModifyParticipation() {
		return false
	}
	if hasJoined {
		return false
	}
	if event.IsFull(totalCount) && !viewer.Role.IsAdmin() {
		return false
	}
	return true
}
