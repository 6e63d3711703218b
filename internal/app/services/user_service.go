package services

import (
	"context"
	"strings"

	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/app/repositories"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
	"github.com/matteo/veloclub/internal/pkg/email"
	"github.com/matteo/veloclub/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// UserService defines the interface for member management operations
type UserService interface {
	GetAllUsers(ctx context.Context, filter *dto.UserFilterRequest) (*dto.UserListResponse, error)
	GetUserByID(ctx context.Context, id int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ApproveUser(ctx context.Context, userID int64) error
	SetUserActive(ctx context.Context, userID int64, active bool) error
	ChangeRole(ctx context.Context, actor *models.User, targetID int64, role models.Role) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo     *repositories.UserRepository
	tokenRepo    *repositories.TokenRepository
	emailService email.EmailService
	logger       zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.TokenRepository,
	emailService email.EmailService,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		emailService: emailService,
		logger:       logger,
	}
}

// GetAllUsers retrieves members with filtering and pagination
func (s *userServiceImpl) GetAllUsers(ctx context.Context, filter *dto.UserFilterRequest) (*dto.UserListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	users, total, err := s.userRepo.GetAll(ctx, filter.Approved, filter.Role, filter.Search, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.FromUser(user))
	}

	return &dto.UserListResponse{
		Users:          responses,
		PaginationInfo: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// GetUserByID retrieves a single member
func (s *userServiceImpl) GetUserByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// UpdateProfile updates the member's own editable fields
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.DisplayName != nil {
		if trimmed := strings.TrimSpace(*req.DisplayName); trimmed != "" {
			user.DisplayName = &trimmed
		} else {
			user.DisplayName = nil
		}
	}
	if req.Phone != nil {
		if trimmed := strings.TrimSpace(*req.Phone); trimmed != "" {
			user.Phone = &trimmed
		} else {
			user.Phone = nil
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	resp := dto.FromUser(user)
	return &resp, nil
}

// ApproveUser marks a pending account as approved and tells the member by
// email, best-effort.
func (s *userServiceImpl) ApproveUser(ctx context.Context, userID int64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.SetApproved(ctx, userID, true); err != nil {
		return err
	}
	s.logger.Info().Int64("userId", userID).Msg("User approved")

	if err := s.emailService.SendAccountApprovedEmail(user.Email, user.ResolvedName()); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send approval email")
	}
	return nil
}

// SetUserActive enables or disables an account. Disabling also revokes every
// refresh token so existing sessions die with the account.
func (s *userServiceImpl) SetUserActive(ctx context.Context, userID int64, active bool) error {
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		if err := s.tokenRepo.RevokeAllForUser(ctx, userID); err != nil {
			s.logger.Error().Err(err).Int64("userId", userID).Msg("Failed to revoke tokens for disabled user")
		}
	}
	s.logger.Info().Int64("userId", userID).Bool("active", active).Msg("User active flag changed")
	return nil
}

// ChangeRole switches a member between MEMBER and ADMIN. Only the owner may
// change roles, the owner role itself is never assignable, and the owner
// cannot demote themselves.
func (s *userServiceImpl) ChangeRole(ctx context.Context, actor *models.User, targetID int64, role models.Role) error {
	if actor.Role != models.RoleOwner {
		return apperrors.NewForbiddenError("only the owner can change roles")
	}
	if actor.ID == targetID {
		return apperrors.NewBadRequestError("the owner role cannot be changed")
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return apperrors.NewValidationError("role must be MEMBER or ADMIN")
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		return apperrors.NewForbiddenError("the owner role cannot be changed")
	}

	if err := s.userRepo.SetRole(ctx, targetID, role); err != nil {
		return err
	}
	s.logger.Info().Int64("userId", targetID).Str("role", string(role)).Msg("User role changed")
	return nil
}
