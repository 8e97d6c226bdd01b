// Package users implements administrative user account management.
// Accounts are disabled rather than deleted so audit history survives.
package users

import "time"

// User is the administrative view of a login account. The password
// hash never leaves the repository layer.
type User struct {
	ID                  int64      `json:"id"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	PermissionOverrides []string   `json:"permission_overrides,omitempty"`
	MemberID            int64      `json:"member_id,omitempty"`
	Status              string     `json:"status"`
	MustChangePassword  bool       `json:"must_change_password"`
	EmailVerified       bool       `json:"email_verified"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	Version             int64      `json:"version"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type InviteUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	Role     string `json:"role" validate:"required,max=50"`
	MemberID *int64 `json:"member_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateUserRequest struct {
	Role                *string  `json:"role,omitempty" validate:"omitempty,max=50"`
	Status              *string  `json:"status,omitempty" validate:"omitempty,oneof=active pending disabled"`
	MemberID            *int64   `json:"member_id,omitempty" validate:"omitempty,gte=0"`
	PermissionOverrides []string `json:"permission_overrides,omitempty" validate:"omitempty,dive,required"`
	Version             int64    `json:"version" validate:"required,gt=0"`
}
