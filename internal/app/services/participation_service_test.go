package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

type fakeEventStore struct {
	event    *models.Event
	setCalls int
}

func (f *fakeEventStore) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	if f.event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	return f.event, nil
}

func (f *fakeEventStore) GetManualParticipantsForUpdate(ctx context.Context, tx pgx.Tx, eventID int64) ([]models.ManualParticipant, error) {
	return f.event.ManualParticipants, nil
}

func (f *fakeEventStore) SetManualParticipants(ctx context.Context, tx pgx.Tx, eventID int64, participants []models.ManualParticipant) error {
	f.setCalls++
	f.event.ManualParticipants = participants
	return nil
}

type fakeParticipantStore struct {
	stored      *models.Participant
	count       int
	addCalls    int
	updateCalls int
	removeCalls int
}

func (f *fakeParticipantStore) GetByEventAndUser(ctx context.Context, eventID, userID int64) (*models.Participant, error) {
	if f.stored == nil {
		return nil, apperrors.ErrParticipantNotFound
	}
	return f.stored, nil
}

func (f *fakeParticipantStore) Add(ctx context.Context, p *models.Participant) (int64, error) {
	f.addCalls++
	f.stored = p
	return 1, nil
}

func (f *fakeParticipantStore) Update(ctx context.Context, p *models.Participant) error {
	f.updateCalls++
	return nil
}

func (f *fakeParticipantStore) Remove(ctx context.Context, eventID, userID int64) error {
	f.removeCalls++
	return nil
}

func (f *fakeParticipantStore) CountByEventID(ctx context.Context, eventID int64) (int, error) {
	return f.count, nil
}

func (f *fakeParticipantStore) writes() int {
	return f.addCalls + f.updateCalls + f.removeCalls
}

type countRecorder struct {
	events []int64
}

func (c *countRecorder) EventCountChanged(eventID int64) {
	c.events = append(c.events, eventID)
}

func TestRemoveManualByID(t *testing.T) {
	entries := []models.ManualParticipant{
		{ID: "m-1", Name: "Zia Pina"},
		{ID: "m-2", Name: "Nonno Gino"},
		{ID: "m-3", Name: "Cugino Aldo"},
	}

	filtered, err := removeManualByID(entries, "m-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 entries after removal, got %d", len(filtered))
	}
	if filtered[0].ID != "m-1" || filtered[1].ID != "m-3" {
		t.Fatalf("remaining entries out of order: %q, %q", filtered[0].ID, filtered[1].ID)
	}
}

func TestRemoveManualByIDUnknownID(t *testing.T) {
	entries := []models.ManualParticipant{
		{ID: "m-1", Name: "Zia Pina"},
	}

	// A stale id from a client that missed a concurrent removal must surface
	// as not-found, never as a silent success.
	if _, err := removeManualByID(entries, "m-gone"); !errors.Is(err, apperrors.ErrManualParticipantNotFound) {
		t.Fatalf("expected ErrManualParticipantNotFound, got %v", err)
	}

	if _, err := removeManualByID(nil, "m-1"); !errors.Is(err, apperrors.ErrManualParticipantNotFound) {
		t.Fatalf("expected ErrManualParticipantNotFound on empty list, got %v", err)
	}
}

func TestParticipationRejectedWhenRegistrationClosed(t *testing.T) {
	member := &models.User{ID: 100, Role: models.RoleMember, Approved: true, IsActive: true}
	admin := &models.User{ID: 1, Role: models.RoleAdmin, Approved: true, IsActive: true}

	operations := []struct {
		name string
		run  func(svc ParticipationService) error
	}{
		{"join", func(svc ParticipationService) error {
			_, err := svc.Join(context.Background(), 10, member, &dto.JoinEventRequest{})
			return err
		}},
		{"leave", func(svc ParticipationService) error {
			return svc.Leave(context.Background(), 10, member.ID)
		}},
		{"edit own", func(svc ParticipationService) error {
			_, err := svc.UpdateParticipation(context.Background(), 10, member.ID, member, &dto.UpdateParticipationRequest{})
			return err
		}},
		{"admin remove", func(svc ParticipationService) error {
			return svc.RemoveParticipant(context.Background(), 10, member.ID)
		}},
		{"manual add", func(svc ParticipationService) error {
			_, err := svc.AddManualParticipant(context.Background(), 10, admin, &dto.AddManualParticipantRequest{Name: "Zia Pina"})
			return err
		}},
		{"manual remove", func(svc ParticipationService) error {
			return svc.RemoveManualParticipant(context.Background(), 10, "m-1")
		}},
	}

	for _, status := range []models.EventStatus{models.StatusCancelled, models.StatusArchived} {
		for _, op := range operations {
			events := &fakeEventStore{event: &models.Event{
				ID:                 10,
				Status:             status,
				ManualParticipants: []models.ManualParticipant{{ID: "m-1", Name: "Zia Pina"}},
			}}
			participants := &fakeParticipantStore{stored: &models.Participant{EventID: 10, UserID: member.ID}}
			counter := &countRecorder{}
			svc := NewParticipationService(events, participants, nil, counter, zerolog.Nop())

			err := op.run(svc)
			if !errors.Is(err, apperrors.ErrRegistrationClosed) {
				t.Fatalf("%s on %s event: expected ErrRegistrationClosed, got %v", op.name, status, err)
			}
			if participants.writes() != 0 || events.setCalls != 0 {
				t.Fatalf("%s on %s event: gate must fire before any write (participant writes %d, manual writes %d)",
					op.name, status, participants.writes(), events.setCalls)
			}
			if len(counter.events) != 0 {
				t.Fatalf("%s on %s event: no count notification expected, got %v", op.name, status, counter.events)
			}
		}
	}
}

func TestParticipationAllowedAfterRestore(t *testing.T) {
	member := &models.User{ID: 100, FirstName: "Mario", LastName: "Rossi", Role: models.RoleMember, Approved: true, IsActive: true}

	events := &fakeEventStore{event: &models.Event{ID: 10, Status: models.StatusActive}}
	participants := &fakeParticipantStore{}
	counter := &countRecorder{}
	svc := NewParticipationService(events, participants, nil, counter, zerolog.Nop())

	resp, err := svc.Join(context.Background(), 10, member, &dto.JoinEventRequest{})
	if err != nil {
		t.Fatalf("join on active event: unexpected error: %v", err)
	}
	if resp == nil || resp.DisplayName != "Mario Rossi" {
		t.Fatalf("unexpected join response: %+v", resp)
	}
	if participants.addCalls != 1 {
		t.Fatalf("expected 1 add call, got %d", participants.addCalls)
	}

	if err := svc.Leave(context.Background(), 10, member.ID); err != nil {
		t.Fatalf("leave on active event: unexpected error: %v", err)
	}
	if participants.removeCalls != 1 {
		t.Fatalf("expected 1 remove call, got %d", participants.removeCalls)
	}

	if len(counter.events) != 2 || counter.events[0] != 10 || counter.events[1] != 10 {
		t.Fatalf("expected count notifications for event 10 on join and leave, got %v", counter.events)
	}
}
