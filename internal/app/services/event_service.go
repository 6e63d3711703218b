package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/app/repositories"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
	"github.com/matteo/veloclub/internal/pkg/email"
	"github.com/matteo/veloclub/internal/pkg/filestorage"
	"github.com/matteo/veloclub/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// EventService defines the interface for event operations
type EventService interface {
	GetAllEvents(ctx context.Context, filter *dto.EventFilterRequest, viewer *models.User) (*dto.EventListResponse, error)
	GetEventDetail(ctx context.Context, id int64, viewer *models.User) (*dto.EventDetailResponse, error)
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest, createdBy int64) (*dto.EventResponse, error)
	UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	ChangeStatus(ctx context.Context, id int64, target models.EventStatus) (*dto.EventResponse, error)
	UploadTrackFile(ctx context.Context, id int64, fileHeader *multipart.FileHeader) (*dto.EventResponse, error)
	DeleteTrackFile(ctx context.Context, id int64) error
	GetRecentNotifications(ctx context.Context, limit int) ([]dto.NotificationResponse, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	eventRepo        *repositories.EventRepository
	participantRepo  *repositories.ParticipantRepository
	userRepo         *repositories.UserRepository
	notificationRepo *repositories.NotificationRepository
	emailService     email.EmailService
	fileStorage      *filestorage.LocalStorage
	logger           zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo *repositories.EventRepository,
	participantRepo *repositories.ParticipantRepository,
	userRepo *repositories.UserRepository,
	notificationRepo *repositories.NotificationRepository,
	emailService email.EmailService,
	fileStorage *filestorage.LocalStorage,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo:        eventRepo,
		participantRepo:  participantRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		emailService:     emailService,
		fileStorage:      fileStorage,
		logger:           logger,
	}
}

// GetAllEvents retrieves events with filtering, pagination and unified
// participant counts resolved in two batched queries.
func (s *eventServiceImpl) GetAllEvents(ctx context.Context, filter *dto.EventFilterRequest, viewer *models.User) (*dto.EventListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	events, total, err := s.eventRepo.GetAll(ctx, filter.Status, filter.Kind, filter.From, offset, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	selfCounts, err := s.participantRepo.CountByEventIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	manualCounts, err := s.eventRepo.GetManualCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	joined := make(map[int64]bool)
	if viewer != nil {
		joinedIDs, err := s.participantRepo.GetEventIDsByUser(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range joinedIDs {
			joined[id] = true
		}
	}

	responses := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		response := dto.FromEvent(event, selfCounts[event.ID]+manualCounts[event.ID])
		response.HasJoined = joined[event.ID]
		responses = append(responses, response)
	}

	return &dto.EventListResponse{
		Events:         responses,
		PaginationInfo: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// GetEventDetail retrieves one event with the merged roster, service tallies
// and the capability flags for the viewing user.
func (s *eventServiceImpl) GetEventDetail(ctx context.Context, id int64, viewer *models.User) (*dto.EventDetailResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.GetByEventID(ctx, id)
	if err != nil {
		return nil, err
	}

	roster := BuildRoster(event, participants, viewer)
	totalCount := len(roster)

	hasJoined := false
	if viewer != nil {
		for _, p := range participants {
			if p.UserID == viewer.ID {
				hasJoined = true
				break
			}
		}
	}

	response := dto.FromEvent(event, totalCount)
	response.HasJoined = hasJoined

	return &dto.EventDetailResponse{
		EventResponse: response,
		Roster:        roster,
		Tallies:       ComputeServiceTallies(event, roster),
		CanJoin:       CanJoin(event, totalCount, viewer, hasJoined),
	}, nil
}

func extraServicesFromRequest(req map[string]dto.ServiceConfigRequest) models.ExtraServices {
	services := models.ExtraServices{}
	for key, cfg := range req {
		services[key] = models.ServiceConfig{Enabled: cfg.Enabled, Label: cfg.Label}
	}
	return services
}

// CreateEvent creates a new event in the active state
func (s *eventServiceImpl) CreateEvent(ctx context.Context, req *dto.CreateEventRequest, createdBy int64) (*dto.EventResponse, error) {
	kind := models.EventKind(req.Kind)
	if !kind.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown event kind %q", req.Kind))
	}

	event := &models.Event{
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Kind:               kind,
		MeetingPoint:       strings.TrimSpace(req.MeetingPoint),
		StartsAt:           req.StartsAt,
		MaxParticipants:    req.MaxParticipants,
		Status:             models.StatusActive,
		ExtraServices:      extraServicesFromRequest(req.ExtraServices),
		ManualParticipants: []models.ManualParticipant{},
		CreatedBy:          createdBy,
	}
	switch kind {
	case models.KindTrek:
		event.TrekDetails = req.TrekDetails
	case models.KindTrip:
		event.TripDetails = req.TripDetails
	}

	id, err := s.eventRepo.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	created, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("eventId", id).Str("kind", req.Kind).Msg("Event created")

	response := dto.FromEvent(created, 0)
	return &response, nil
}

// UpdateEvent updates the editable event fields. Enabling a new extra service
// key is rejected as a whole once anyone is booked.
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	selfCount, err := s.participantRepo.CountByEventID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ExtraServices != nil {
		updated := extraServicesFromRequest(req.ExtraServices)
		if err := ValidateServiceConfigChange(event.ExtraServices, updated, event.HasParticipants(selfCount)); err != nil {
			return nil, err
		}
		event.ExtraServices = updated
	}
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.MeetingPoint != nil {
		event.MeetingPoint = strings.TrimSpace(*req.MeetingPoint)
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.MaxParticipants != nil {
		event.MaxParticipants = req.MaxParticipants
	}
	if req.TrekDetails != nil && event.Kind == models.KindTrek {
		event.TrekDetails = req.TrekDetails
	}
	if req.TripDetails != nil && event.Kind == models.KindTrip {
		event.TripDetails = req.TripDetails
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	totalCount := selfCount + len(event.ManualParticipants)
	response := dto.FromEvent(event, totalCount)
	return &response, nil
}

// ChangeStatus moves the event through its lifecycle. Cancelling triggers a
// best-effort notification fan-out that never rolls back the status change.
func (s *eventServiceImpl) ChangeStatus(ctx context.Context, id int64, target models.EventStatus) (*dto.EventResponse, error) {
	if !target.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown event status %q", target))
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !event.Status.CanTransitionTo(target) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move event from %s to %s", event.Status, target))
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	event.Status = target

	s.logger.Info().Int64("eventId", id).Str("status", string(target)).Msg("Event status changed")

	if target == models.StatusCancelled {
		s.notifyCancellation(ctx, event)
	}

	selfCount, err := s.participantRepo.CountByEventID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := dto.FromEvent(event, selfCount+len(event.ManualParticipants))
	return &response, nil
}

// notifyCancellation records a notification and emails the booked members.
// Every failure here is logged and swallowed.
func (s *eventServiceImpl) notifyCancellation(ctx context.Context, event *models.Event) {
	notification := &models.Notification{
		Kind:    models.NotificationEventCancelled,
		EventID: event.ID,
		Message: fmt.Sprintf("L'evento %q del %s è stato annullato", event.Title, event.StartsAt.Format("02/01/2006")),
	}
	if _, err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error().Err(err).Int64("eventId", event.ID).Msg("Failed to record cancellation notification")
	}

	participants, err := s.participantRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("eventId", event.ID).Msg("Failed to load participants for cancellation emails")
		return
	}

	for _, p := range participants {
		user, err := s.userRepo.FindByID(ctx, p.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("userId", p.UserID).Msg("Skipping cancellation email, user lookup failed")
			continue
		}
		if err := s.emailService.SendEventCancelledEmail(user.Email, user.ResolvedName(), event.Title, event.StartsAt); err != nil {
			s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send cancellation email")
		}
	}
}

// GetRecentNotifications lists the latest cancellation records, newest first
func (s *eventServiceImpl) GetRecentNotifications(ctx context.Context, limit int) ([]dto.NotificationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	notifications, err := s.notificationRepo.GetRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, dto.NotificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			EventID:   n.EventID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	return responses, nil
}

// UploadTrackFile stores a GPX track for the event and replaces any previous one
func (s *eventServiceImpl) UploadTrackFile(ctx context.Context, id int64, fileHeader *multipart.FileHeader) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".gpx" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported track file type %q, only .gpx is accepted", ext))
	}

	fileURL, err := s.fileStorage.SaveFileWithPath(fileHeader, "tracks")
	if err != nil {
		return nil, fmt.Errorf("error saving track file: %w", err)
	}

	if event.TrackFileURL != nil {
		if err := s.fileStorage.DeleteFile(*event.TrackFileURL); err != nil {
			s.logger.Warn().Err(err).Str("fileUrl", *event.TrackFileURL).Msg("Failed to delete previous track file")
		}
	}

	if err := s.eventRepo.UpdateTrackFile(ctx, id, &fileURL); err != nil {
		return nil, err
	}
	event.TrackFileURL = &fileURL

	selfCount, err := s.participantRepo.CountByEventID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := dto.FromEvent(event, selfCount+len(event.ManualParticipants))
	return &response, nil
}

// DeleteTrackFile removes the event's GPX track
func (s *eventServiceImpl) DeleteTrackFile(ctx context.Context, id int64) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.TrackFileURL == nil {
		return nil
	}

	if err := s.fileStorage.DeleteFile(*event.TrackFileURL); err != nil {
		s.logger.Warn().Err(err).Str("fileUrl", *event.TrackFileURL).Msg("Failed to delete track file from storage")
	}
	return s.eventRepo.UpdateTrackFile(ctx, id, nil)
}
