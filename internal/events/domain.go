// Package events implements event management with a public upcoming
// listing for the church website.
package events

import "time"

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	IsPublic    bool       `json:"is_public"`
	Status      string     `json:"status"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Location    string  `json:"location" validate:"max=200"`
	StartsAt    string  `json:"starts_at" validate:"required"`
	EndsAt      *string `json:"ends_at,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=200"`
	StartsAt    *string `json:"starts_at,omitempty"`
	EndsAt      *string `json:"ends_at,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
	Version     int64   `json:"version" validate:"required,gt=0"`
}
