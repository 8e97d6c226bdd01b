// Package roles implements role management. Stored roles feed the
// rbac resolver; the six built-in roles are protected from rename and
// deletion.
package roles

import "time"

// Role is a named permission set. System roles are seeded at install
// time and keep their names forever.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	IsSystem    bool      `json:"is_system"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"max=300"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
}

type UpdateRoleRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=50"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=300"`
	Permissions []string `json:"permissions,omitempty" validate:"omitempty,min=1,dive,required"`
	Version     int64    `json:"version" validate:"required,gt=0"`
}
