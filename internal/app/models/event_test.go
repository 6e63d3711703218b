package models

import "testing"

func TestEventStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from EventStatus
		to   EventStatus
		want bool
	}{
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusArchived, true},
		{StatusCancelled, StatusActive, true},
		{StatusArchived, StatusActive, true},
		{StatusCancelled, StatusArchived, false},
		{StatusArchived, StatusCancelled, false},
		{StatusActive, StatusActive, false},
		{StatusCancelled, StatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestEventIsFull(t *testing.T) {
	capacity := 3
	event := &Event{MaxParticipants: &capacity}

	if event.IsFull(2) {
		t.Fatalf("2/3 should not be full")
	}
	if !event.IsFull(3) {
		t.Fatalf("3/3 should be full")
	}
	if !event.IsFull(4) {
		t.Fatalf("over capacity should count as full")
	}

	uncapped := &Event{}
	if uncapped.IsFull(1000) {
		t.Fatalf("event without capacity is never full")
	}
}

func TestEventHasParticipants(t *testing.T) {
	event := &Event{}
	if event.HasParticipants(0) {
		t.Fatalf("empty event has no participants")
	}
	if !event.HasParticipants(1) {
		t.Fatalf("self-registered count should count")
	}

	event.ManualParticipants = []ManualParticipant{{ID: "m-1", Name: "Pina"}}
	if !event.HasParticipants(0) {
		t.Fatalf("manual entries should count")
	}
}

func TestManualParticipantByID(t *testing.T) {
	event := &Event{ManualParticipants: []ManualParticipant{
		{ID: "a", Name: "Anna"},
		{ID: "b", Name: "Bruno"},
	}}

	mp, ok := event.ManualParticipantByID("b")
	if !ok || mp.Name != "Bruno" {
		t.Fatalf("expected Bruno, got %v (found=%v)", mp, ok)
	}
	if _, ok := event.ManualParticipantByID("zz"); ok {
		t.Fatalf("unknown id must not be found")
	}
}

func TestExtraServicesLabelFor(t *testing.T) {
	label := "Pranzo"
	empty := ""
	es := ExtraServices{
		"lunch":  {Enabled: true, Label: &label},
		"dinner": {Enabled: true, Label: &empty},
		"bus":    {Enabled: true},
	}

	if got := es.LabelFor("lunch"); got != "Pranzo" {
		t.Fatalf("expected configured label, got %q", got)
	}
	if got := es.LabelFor("dinner"); got != "dinner" {
		t.Fatalf("empty label falls back to the key, got %q", got)
	}
	if got := es.LabelFor("bus"); got != "bus" {
		t.Fatalf("missing label falls back to the key, got %q", got)
	}
	if got := es.LabelFor("unknown"); got != "unknown" {
		t.Fatalf("unknown key falls back to itself, got %q", got)
	}
}

func TestUserResolvedName(t *testing.T) {
	display := "Maglia Rosa"
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "display name wins", user: User{FirstName: "Mario", LastName: "Rossi", DisplayName: &display}, want: "Maglia Rosa"},
		{name: "falls back to full name", user: User{FirstName: "Mario", LastName: "Rossi"}, want: "Mario Rossi"},
		{name: "single name component", user: User{FirstName: "Mario"}, want: "Mario"},
		{name: "placeholder when nothing usable", user: User{}, want: "Utente"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.ResolvedName(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
