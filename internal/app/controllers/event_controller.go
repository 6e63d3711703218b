package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/app/services"
	"github.com/matteo/veloclub/internal/middleware"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
	"github.com/matteo/veloclub/internal/pkg/helpers"
)

// EventController handles event and participation operations
type EventController struct {
	eventService         services.EventService
	participationService services.ParticipationService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, participationService services.ParticipationService) *EventController {
	return &EventController{
		eventService:         eventService,
		participationService: participationService,
	}
}

// GetAllEvents lists events with filters
// @Summary List events
// @Description Retrieves events with filtering, pagination and unified participant counts
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by lifecycle status" Enums(ACTIVE, CANCELLED, ARCHIVED)
// @Param kind query string false "Filter by event kind" Enums(RIDE, TREK, TRIP, SOCIAL)
// @Param from query string false "Only events starting at or after this RFC3339 time"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse} "Events"
// @Router /events [get]
func (c *EventController) GetAllEvents(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)
	filter := &dto.EventFilterRequest{Page: page, PageSize: pageSize}

	if status := ctx.Query("status"); status != "" {
		if !models.EventStatus(status).Valid() {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("unknown status filter"))
			return
		}
		filter.Status = &status
	}
	if kind := ctx.Query("kind"); kind != "" {
		if !models.EventKind(kind).Valid() {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("unknown kind filter"))
			return
		}
		filter.Kind = &kind
	}
	if fromStr := ctx.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("from must be an RFC3339 timestamp"))
			return
		}
		filter.From = &from
	}

	viewer, _ := middleware.CurrentUser(ctx)
	response, err := c.eventService.GetAllEvents(ctx.Request.Context(), filter, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetNotifications lists recent cancellation notifications
// @Summary List notifications
// @Description Retrieves the most recent event cancellation records, newest first
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum records to return" default(20)
// @Success 200 {object} dto.APIResponse{data=[]dto.NotificationResponse} "Notifications"
// @Router /notifications [get]
func (c *EventController) GetNotifications(ctx *gin.Context) {
	limit := 20
	if limitStr := ctx.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	response, err := c.eventService.GetRecentNotifications(ctx.Request.Context(), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetEventByID retrieves one event with its roster
// @Summary Get event detail
// @Description Retrieves an event with the merged roster, per-service tallies and the caller's capability flags
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventDetailResponse} "Event detail"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEventByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	viewer, _ := middleware.CurrentUser(ctx)
	response, err := c.eventService.GetEventDetail(ctx.Request.Context(), id, viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// CreateEvent creates a new event. Admin only.
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse} "Event created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Admin privileges required"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	actor, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.eventService.CreateEvent(ctx.Request.Context(), &req, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// UpdateEvent edits an event. Admin only.
// @Summary Update event
// @Description Edits the event fields. Enabling a new extra service is rejected once the event has participants.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Updated event"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 409 {object} dto.ErrorResponse "Service enable locked"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.eventService.UpdateEvent(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// ChangeEventStatusRequest carries the target lifecycle status
type ChangeEventStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE CANCELLED ARCHIVED"`
}

// ChangeEventStatus moves the event through its lifecycle. Admin only.
// @Summary Change event status
// @Description Cancels, archives or restores an event. Cancelling notifies booked members best-effort.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body ChangeEventStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Updated event"
// @Failure 409 {object} dto.ErrorResponse "Invalid status transition"
// @Router /events/{id}/status [put]
func (c *EventController) ChangeEventStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req ChangeEventStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.eventService.ChangeStatus(ctx.Request.Context(), id, models.EventStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UploadTrack uploads a GPX track. Admin only.
// @Summary Upload GPX track
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param file formData file true "GPX file"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Updated event"
// @Failure 400 {object} dto.ErrorResponse "Not a GPX file"
// @Router /events/{id}/track [post]
func (c *EventController) UploadTrack(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("file form field is required"))
		return
	}

	response, err := c.eventService.UploadTrackFile(ctx.Request.Context(), id, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// DeleteTrack removes the GPX track. Admin only.
// @Summary Delete GPX track
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Track removed"
// @Router /events/{id}/track [delete]
func (c *EventController) DeleteTrack(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.DeleteTrackFile(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Track removed"}))
}

// JoinEvent signs the caller up for an event
// @Summary Join event
// @Description Registers the caller. Every enabled extra service needs an explicit yes/no answer.
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.JoinEventRequest true "Note and service answers"
// @Success 201 {object} dto.APIResponse{data=dto.ParticipantResponse} "Joined"
// @Failure 400 {object} dto.ErrorResponse "Missing service choices or note too long"
// @Failure 409 {object} dto.ErrorResponse "Event full, registration closed or already joined"
// @Router /events/{id}/participants [post]
func (c *EventController) JoinEvent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	var req dto.JoinEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.participationService.Join(ctx.Request.Context(), id, user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// LeaveEvent removes the caller's own participation
// @Summary Leave event
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Left"
// @Failure 404 {object} dto.ErrorResponse "Not a participant"
// @Router /events/{id}/participants/me [delete]
func (c *EventController) LeaveEvent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	if err := c.participationService.Leave(ctx.Request.Context(), id, user.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Left event"}))
}

// UpdateOwnParticipation edits the caller's note and service answers
// @Summary Update own participation
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateParticipationRequest true "Note and service answers"
// @Success 200 {object} dto.APIResponse{data=dto.ParticipantResponse} "Updated"
// @Router /events/{id}/participants/me [put]
func (c *EventController) UpdateOwnParticipation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	var req dto.UpdateParticipationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.participationService.UpdateParticipation(ctx.Request.Context(), id, user.ID, user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UpdateParticipation edits any member's participation. Admin only.
// @Summary Update a member's participation
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param userId path int true "User ID"
// @Param request body dto.UpdateParticipationRequest true "Note and service answers"
// @Success 200 {object} dto.APIResponse{data=dto.ParticipantResponse} "Updated"
// @Router /events/{id}/participants/{userId} [put]
func (c *EventController) UpdateParticipation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	var req dto.UpdateParticipationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.participationService.UpdateParticipation(ctx.Request.Context(), id, userID, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// RemoveParticipant removes a member from the roster. Admin only.
// @Summary Remove a participant
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Removed"
// @Failure 404 {object} dto.ErrorResponse "Not a participant"
// @Router /events/{id}/participants/{userId} [delete]
func (c *EventController) RemoveParticipant(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	if err := c.participationService.RemoveParticipant(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Participant removed"}))
}

// AddManualParticipant adds a stand-in without an account. Admin only.
// @Summary Add manual participant
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.AddManualParticipantRequest true "Name, note and service answers"
// @Success 201 {object} dto.APIResponse{data=dto.RosterEntryResponse} "Added"
// @Failure 400 {object} dto.ErrorResponse "Missing service choices"
// @Router /events/{id}/manual-participants [post]
func (c *EventController) AddManualParticipant(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	var req dto.AddManualParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.participationService.AddManualParticipant(ctx.Request.Context(), id, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// RemoveManualParticipant removes a stand-in by its stable id. Admin only.
// @Summary Remove manual participant
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param manualId path string true "Manual participant ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Removed"
// @Failure 404 {object} dto.ErrorResponse "Manual participant not found"
// @Router /events/{id}/manual-participants/{manualId} [delete]
func (c *EventController) RemoveManualParticipant(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	manualID := ctx.Param("manualId")
	if manualID == "" {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("manualId parameter is required"))
		return
	}

	if err := c.participationService.RemoveManualParticipant(ctx.Request.Context(), id, manualID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Manual participant removed"}))
}
