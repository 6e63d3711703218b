package services

import (
	"testing"
	"time"

	"github.com/matteo/veloclub/internal/app/models"
)

func rosterEvent(manual ...models.ManualParticipant) *models.Event {
	return &models.Event{
		ID:                 10,
		Title:              "Giro dei tre laghi",
		Kind:               models.KindRide,
		Status:             models.StatusActive,
		ManualParticipants: manual,
	}
}

func TestBuildRosterOrdering(t *testing.T) {
	early := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)

	event := rosterEvent(
		models.ManualParticipant{ID: "m-1", Name: "Zia Pina", AddedAt: early},
		models.ManualParticipant{ID: "m-2", Name: "Nonno Gino", AddedAt: late},
	)
	// Already ordered by joined_at, as the repository returns them
	participants := []*models.Participant{
		{ID: 1, UserID: 100, DisplayName: "Mario Rossi", JoinedAt: &early},
		{ID: 2, UserID: 101, DisplayName: "Luca Bianchi", JoinedAt: &late},
	}

	roster := BuildRoster(event, participants, nil)
	if len(roster) != 4 {
		t.Fatalf("expected 4 roster entries, got %d", len(roster))
	}

	wantIDs := []string{"self-1", "self-2", "m-1", "m-2"}
	for i, want := range wantIDs {
		if roster[i].ID != want {
			t.Fatalf("entry %d: expected id %q, got %q", i, want, roster[i].ID)
		}
	}
	if roster[0].Origin != "self" || roster[2].Origin != "manual" {
		t.Fatalf("unexpected origins: %q, %q", roster[0].Origin, roster[2].Origin)
	}
	// Manual entries keep the order admins added them, even when AddedAt
	// would sort them differently
	if roster[2].Name != "Zia Pina" || roster[3].Name != "Nonno Gino" {
		t.Fatalf("manual entries out of array order: %q, %q", roster[2].Name, roster[3].Name)
	}
}

func TestBuildRosterViewerSeesLiveProfileName(t *testing.T) {
	display := "MarioSuperbike"
	viewer := &models.User{ID: 100, FirstName: "Mario", LastName: "Rossi", DisplayName: &display}

	event := rosterEvent()
	participants := []*models.Participant{
		{ID: 1, UserID: 100, DisplayName: "Old Snapshot"},
		{ID: 2, UserID: 101, DisplayName: "Luca Bianchi"},
	}

	roster := BuildRoster(event, participants, viewer)
	if roster[0].Name != "MarioSuperbike" {
		t.Fatalf("viewer's own row should use the live profile name, got %q", roster[0].Name)
	}
	if roster[1].Name != "Luca Bianchi" {
		t.Fatalf("other rows keep the join-time snapshot, got %q", roster[1].Name)
	}
}

func TestBuildRosterNameFallback(t *testing.T) {
	event := rosterEvent(models.ManualParticipant{ID: "m-1", Name: "   "})
	participants := []*models.Participant{
		{ID: 1, UserID: 100, DisplayName: "  "},
	}

	roster := BuildRoster(event, participants, nil)
	if roster[0].Name != "Utente" {
		t.Fatalf("blank self name should fall back to Utente, got %q", roster[0].Name)
	}
	if roster[1].Name != "Utente" {
		t.Fatalf("blank manual name should fall back to Utente, got %q", roster[1].Name)
	}
}

func TestComputeServiceTallies(t *testing.T) {
	label := "Pranzo"
	event := rosterEvent()
	event.ExtraServices = models.ExtraServices{
		"lunch":  {Enabled: true, Label: &label},
		"dinner": {Enabled: false},
	}

	participants := []*models.Participant{
		{ID: 1, UserID: 100, DisplayName: "A", Services: map[string]models.ServiceChoice{"lunch": models.ChoiceYes}},
		{ID: 2, UserID: 101, DisplayName: "B", Services: map[string]models.ServiceChoice{"lunch": models.ChoiceNo}},
	}
	event.ManualParticipants = []models.ManualParticipant{
		{ID: "m-1", Name: "C", Services: map[string]models.ServiceChoice{"lunch": models.ChoiceYes, "dinner": models.ChoiceYes}},
	}

	roster := BuildRoster(event, participants, nil)
	tallies := ComputeServiceTallies(event, roster)

	if len(tallies) != 1 {
		t.Fatalf("disabled services produce no tally, got %v", tallies)
	}
	lunch := tallies["lunch"]
	if lunch.Label != "Pranzo" {
		t.Fatalf("expected label Pranzo, got %q", lunch.Label)
	}
	if lunch.Yes != 2 || lunch.No != 1 {
		t.Fatalf("expected 2 yes / 1 no, got %d/%d", lunch.Yes, lunch.No)
	}
}

func TestCanJoin(t *testing.T) {
	capacity := 2
	member := &models.User{ID: 1, Role: models.RoleMember, Approved: true, IsActive: true}
	admin := &models.User{ID: 2, Role: models.RoleAdmin, Approved: true, IsActive: true}
	unapproved := &models.User{ID: 3, Role: models.RoleMember, Approved: false, IsActive: true}
	disabled := &models.User{ID: 4, Role: models.RoleMember, Approved: true, IsActive: false}

	tests := []struct {
		name      string
		status    models.EventStatus
		total     int
		viewer    *models.User
		hasJoined bool
		want      bool
	}{
		{name: "approved member on open event", status: models.StatusActive, total: 1, viewer: member, want: true},
		{name: "nil viewer", status: models.StatusActive, total: 0, viewer: nil, want: false},
		{name: "unapproved member", status: models.StatusActive, total: 0, viewer: unapproved, want: false},
		{name: "disabled account", status: models.StatusActive, total: 0, viewer: disabled, want: false},
		{name: "cancelled event", status: models.StatusCancelled, total: 0, viewer: member, want: false},
		{name: "archived event", status: models.StatusArchived, total: 0, viewer: member, want: false},
		{name: "already joined", status: models.StatusActive, total: 1, viewer: member, hasJoined: true, want: false},
		{name: "full event blocks members", status: models.StatusActive, total: 2, viewer: member, want: false},
		{name: "full event admits admins", status: models.StatusActive, total: 2, viewer: admin, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := rosterEvent()
			event.Status = tt.status
			event.MaxParticipants = &capacity

			if got := CanJoin(event, tt.total, tt.viewer, tt.hasJoined); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCanJoinUncappedEventNeverFull(t *testing.T) {
	member := &models.User{ID: 1, Role: models.RoleMember, Approved: true, IsActive: true}
	event := rosterEvent()

	if !CanJoin(event, 5000, member, false) {
		t.Fatalf("event without capacity should always admit")
	}
}
