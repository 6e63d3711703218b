package dto

import (
	"time"

	"github.com/matteo/veloclub/internal/app/models"
)

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DisplayName *string    `json:"displayName,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Role        string     `json:"role" enums:"MEMBER,ADMIN,OWNER"`
	Approved    bool       `json:"approved"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Role:        string(user.Role),
		Approved:    user.Approved,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

// UserBasicResponse is the compact user shape embedded in other responses
type UserBasicResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	PaginationInfo
}

// UserFilterRequest carries the admin list filters
type UserFilterRequest struct {
	Approved *bool
	Role     *string
	Search   *string
	Page     int
	PageSize int
}

// UpdateRoleRequest represents an owner changing a member's role
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=MEMBER ADMIN" example:"ADMIN"`
}

// UpdateProfileRequest represents a member editing their own profile
type UpdateProfileRequest struct {
	FirstName   *string `json:"firstName,omitempty" binding:"omitempty,min=2,max=100"`
	LastName    *string `json:"lastName,omitempty" binding:"omitempty,min=2,max=100"`
	DisplayName *string `json:"displayName,omitempty" binding:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty" binding:"omitempty,max=30"`
}
