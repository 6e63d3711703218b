package models

import (
	"strings"
	"time"
)

// Role defines the capability level of a club member
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// IsAdmin reports whether the role carries administrative capabilities.
// Owners are admins with the extra ability to change roles.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleOwner
}

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"mario.rossi@example.com"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Mario"`
	LastName    string     `json:"lastName" db:"last_name" example:"Rossi"`
	DisplayName *string    `json:"displayName,omitempty" db:"display_name"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	Role        Role       `json:"role" db:"role" example:"MEMBER"`
	Approved    bool       `json:"approved" db:"approved" example:"true"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// ResolvedName returns the name shown on rosters: the explicit display name,
// then "first last", then the "Utente" placeholder the club app has always used.
func (u *User) ResolvedName() string {
	if u.DisplayName != nil && strings.TrimSpace(*u.DisplayName) != "" {
		return strings.TrimSpace(*u.DisplayName)
	}
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		return full
	}
	return "Utente"
}

// CanParticipate reports whether the account may sign up for events
func (u *User) CanParticipate() bool {
	return u.Approved && u.IsActive
}
