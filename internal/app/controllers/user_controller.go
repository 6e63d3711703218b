package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/app/services"
	"github.com/matteo/veloclub/internal/middleware"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
	"github.com/matteo/veloclub/internal/pkg/helpers"
)

// UserController handles member management operations
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid id parameter"))
		return 0, false
	}
	return id, true
}

// GetProfile returns the authenticated member's own profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile"
// @Router /users/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}
	response := dto.FromUser(user)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UpdateProfile updates the authenticated member's own profile
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /users/me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	response, err := c.userService.UpdateProfile(ctx.Request.Context(), user.ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetAllUsers lists members for administrators
// @Summary List members
// @Description Retrieves members with optional filters. Admin only.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param approved query bool false "Filter by approval state"
// @Param role query string false "Filter by role" Enums(MEMBER, ADMIN, OWNER)
// @Param search query string false "Search name or email"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse} "Members"
// @Failure 403 {object} dto.ErrorResponse "Admin privileges required"
// @Router /users [get]
func (c *UserController) GetAllUsers(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)
	filter := &dto.UserFilterRequest{Page: page, PageSize: pageSize}

	if approvedStr := ctx.Query("approved"); approvedStr != "" {
		if approved, err := strconv.ParseBool(approvedStr); err == nil {
			filter.Approved = &approved
		}
	}
	if role := ctx.Query("role"); role != "" {
		filter.Role = &role
	}
	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	response, err := c.userService.GetAllUsers(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetUserByID retrieves a single member. Admin only.
// @Summary Get member by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Member"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUserByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	response, err := c.userService.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// ApproveUser approves a pending member. Admin only.
// @Summary Approve member
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Approved"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id}/approve [post]
func (c *UserController) ApproveUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.ApproveUser(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "User approved"}))
}

// SetUserActive enables or disables an account. Admin only.
// @Summary Enable or disable member
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param active query bool true "Target active state"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Updated"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id}/active [put]
func (c *UserController) SetUserActive(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	active, err := strconv.ParseBool(ctx.Query("active"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("active query parameter must be true or false"))
		return
	}

	if err := c.userService.SetUserActive(ctx.Request.Context(), id, active); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "User updated"}))
}

// ChangeRole switches a member between MEMBER and ADMIN. Owner only.
// @Summary Change member role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateRoleRequest true "Target role"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Role changed"
// @Failure 403 {object} dto.ErrorResponse "Only the owner can change roles"
// @Router /users/{id}/role [put]
func (c *UserController) ChangeRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUserNotFound)
		return
	}

	var req dto.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	if err := c.userService.ChangeRole(ctx.Request.Context(), actor, id, models.Role(req.Role)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Role changed"}))
}
