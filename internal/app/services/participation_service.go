package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/db"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// CountNotifier receives a ping whenever an event's roster size changes.
// The live count feed implements it; tests plug in fakes.
type CountNotifier interface {
	EventCountChanged(eventID int64)
}

// noopCountNotifier is used when no live feed is wired
type noopCountNotifier struct{}

func (noopCountNotifier) EventCountChanged(int64) {}

// eventStore is the slice of the event repository the participation service
// needs; the concrete repository satisfies it, tests use fakes.
type eventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	GetManualParticipantsForUpdate(ctx context.Context, tx pgx.Tx, eventID int64) ([]models.ManualParticipant, error)
	SetManualParticipants(ctx context.Context, tx pgx.Tx, eventID int64, participants []models.ManualParticipant) error
}

// participantStore covers the self-registered participant operations
type participantStore interface {
	GetByEventAndUser(ctx context.Context, eventID, userID int64) (*models.Participant, error)
	Add(ctx context.Context, p *models.Participant) (int64, error)
	Update(ctx context.Context, p *models.Participant) error
	Remove(ctx context.Context, eventID, userID int64) error
	CountByEventID(ctx context.Context, eventID int64) (int, error)
}

// ParticipationService defines the interface for joining, leaving and
// managing event rosters
type ParticipationService interface {
	Join(ctx context.Context, eventID int64, user *models.User, req *dto.JoinEventRequest) (*dto.ParticipantResponse, error)
	Leave(ctx context.Context, eventID, userID int64) error
	UpdateParticipation(ctx context.Context, eventID, targetUserID int64, actor *models.User, req *dto.UpdateParticipationRequest) (*dto.ParticipantResponse, error)
	RemoveParticipant(ctx context.Context, eventID, targetUserID int64) error
	AddManualParticipant(ctx context.Context, eventID int64, actor *models.User, req *dto.AddManualParticipantRequest) (*dto.RosterEntryResponse, error)
	RemoveManualParticipant(ctx context.Context, eventID int64, manualID string) error
}

// participationServiceImpl implements ParticipationService
type participationServiceImpl struct {
	eventRepo       eventStore
	participantRepo participantStore
	database        *db.PostgresDB
	counts          CountNotifier
	logger          zerolog.Logger
}

// NewParticipationService creates a new ParticipationService
func NewParticipationService(
	eventRepo eventStore,
	participantRepo participantStore,
	database *db.PostgresDB,
	counts CountNotifier,
	logger zerolog.Logger,
) ParticipationService {
	if counts == nil {
		counts = noopCountNotifier{}
	}
	return &participationServiceImpl{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		database:        database,
		counts:          counts,
		logger:          logger,
	}
}

func participantResponse(p *models.Participant) *dto.ParticipantResponse {
	resp := &dto.ParticipantResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Note:        p.Note,
		Services:    p.Services,
	}
	if p.JoinedAt != nil {
		joined := p.JoinedAt.Format(time.RFC3339)
		resp.JoinedAt = &joined
	}
	return resp
}

// Join registers the user on an active event. Capacity blocks members but not
// admins; every enabled extra service needs an explicit answer.
func (s *participationServiceImpl) Join(ctx context.Context, eventID int64, user *models.User, req *dto.JoinEventRequest) (*dto.ParticipantResponse, error) {
	if !user.CanParticipate() {
		return nil, apperrors.ErrAccountNotApproved
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.CanModifyParticipation() {
		return nil, apperrors.ErrRegistrationClosed
	}

	selfCount, err := s.participantRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	totalCount := selfCount + len(event.ManualParticipants)
	if event.IsFull(totalCount) && !user.Role.IsAdmin() {
		return nil, apperrors.ErrEventFull
	}

	choices, err := ValidateServiceChoices(event.ExtraServices, req.Services)
	if err != nil {
		return nil, err
	}
	note, err := NormalizeNote(req.Note)
	if err != nil {
		return nil, err
	}

	participant := &models.Participant{
		EventID:     eventID,
		UserID:      user.ID,
		DisplayName: user.ResolvedName(),
		Note:        note,
		Services:    choices,
	}
	if _, err := s.participantRepo.Add(ctx, participant); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("eventId", eventID).Int64("userId", user.ID).Msg("User joined event")
	s.counts.EventCountChanged(eventID)

	stored, err := s.participantRepo.GetByEventAndUser(ctx, eventID, user.ID)
	if err != nil {
		return nil, err
	}
	return participantResponse(stored), nil
}

// Leave removes the user's own participation from an active event
func (s *participationServiceImpl) Leave(ctx context.Context, eventID, userID int64) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.CanModifyParticipation() {
		return apperrors.ErrRegistrationClosed
	}

	if err := s.participantRepo.Remove(ctx, eventID, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("eventId", eventID).Int64("userId", userID).Msg("User left event")
	s.counts.EventCountChanged(eventID)
	return nil
}

// UpdateParticipation edits a participant's note and service answers. Members
// may only touch their own row; admins may edit anyone's.
func (s *participationServiceImpl) UpdateParticipation(ctx context.Context, eventID, targetUserID int64, actor *models.User, req *dto.UpdateParticipationRequest) (*dto.ParticipantResponse, error) {
	if actor.ID != targetUserID && !actor.Role.IsAdmin() {
		return nil, apperrors.NewForbiddenError("cannot edit another member's participation")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.CanModifyParticipation() {
		return nil, apperrors.ErrRegistrationClosed
	}

	participant, err := s.participantRepo.GetByEventAndUser(ctx, eventID, targetUserID)
	if err != nil {
		return nil, err
	}

	choices, err := ValidateServiceChoices(event.ExtraServices, req.Services)
	if err != nil {
		return nil, err
	}
	note, err := NormalizeNote(req.Note)
	if err != nil {
		return nil, err
	}

	participant.Note = note
	participant.Services = choices
	if err := s.participantRepo.Update(ctx, participant); err != nil {
		return nil, err
	}

	return participantResponse(participant), nil
}

// RemoveParticipant is the admin variant of Leave, targeting any member
func (s *participationServiceImpl) RemoveParticipant(ctx context.Context, eventID, targetUserID int64) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.CanModifyParticipation() {
		return apperrors.ErrRegistrationClosed
	}

	if err := s.participantRepo.Remove(ctx, eventID, targetUserID); err != nil {
		return err
	}

	s.logger.Info().Int64("eventId", eventID).Int64("userId", targetUserID).Msg("Participant removed by admin")
	s.counts.EventCountChanged(eventID)
	return nil
}

// AddManualParticipant appends an admin-entered stand-in to the event's
// embedded list, assigning the stable id used for later removal. The append
// happens under a row lock so concurrent edits never lose entries.
func (s *participationServiceImpl) AddManualParticipant(ctx context.Context, eventID int64, actor *models.User, req *dto.AddManualParticipantRequest) (*dto.RosterEntryResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.CanModifyParticipation() {
		return nil, apperrors.ErrRegistrationClosed
	}

	choices, err := ValidateServiceChoices(event.ExtraServices, req.Services)
	if err != nil {
		return nil, err
	}
	note, err := NormalizeNote(req.Note)
	if err != nil {
		return nil, err
	}

	entry := models.ManualParticipant{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Note:     note,
		Services: choices,
		AddedBy:  actor.ID,
		AddedAt:  time.Now().UTC(),
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.eventRepo.GetManualParticipantsForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}
		return s.eventRepo.SetManualParticipants(ctx, tx, eventID, append(current, entry))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("eventId", eventID).Str("manualId", entry.ID).Msg("Manual participant added")
	s.counts.EventCountChanged(eventID)

	addedAt := entry.AddedAt
	return &dto.RosterEntryResponse{
		ID:       entry.ID,
		Origin:   "manual",
		Name:     entry.Name,
		Note:     entry.Note,
		Services: entry.Services,
		JoinedAt: &addedAt,
	}, nil
}

// removeManualByID filters one entry out of the embedded list by its stable
// id, preserving the order of the rest. An unknown id is an error so a stale
// client view never turns into a silent no-op.
func removeManualByID(current []models.ManualParticipant, manualID string) ([]models.ManualParticipant, error) {
	filtered := make([]models.ManualParticipant, 0, len(current))
	found := false
	for _, mp := range current {
		if mp.ID == manualID {
			found = true
			continue
		}
		filtered = append(filtered, mp)
	}
	if !found {
		return nil, apperrors.ErrManualParticipantNotFound
	}
	return filtered, nil
}

// RemoveManualParticipant deletes one embedded entry by its stable id. The
// list is re-read under a row lock and filtered by id, so a stale client view
// can never remove the wrong person.
func (s *participationServiceImpl) RemoveManualParticipant(ctx context.Context, eventID int64, manualID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.CanModifyParticipation() {
		return apperrors.ErrRegistrationClosed
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.eventRepo.GetManualParticipantsForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}

		filtered, err := removeManualByID(current, manualID)
		if err != nil {
			return err
		}

		return s.eventRepo.SetManualParticipants(ctx, tx, eventID, filtered)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("eventId", eventID).Str("manualId", manualID).Msg("Manual participant removed")
	s.counts.EventCountChanged(eventID)
	return nil
}
