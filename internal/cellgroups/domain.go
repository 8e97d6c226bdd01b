// Package cellgroups implements cell group management.
package cellgroups

import "time"

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// CellGroup is a small-group unit of the congregation. Leaders get
// record-level access to the members of their own group.
type CellGroup struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	LeaderMemberID int64     `json:"leader_member_id,omitempty"`
	MeetingDay     string    `json:"meeting_day,omitempty"`
	Location       string    `json:"location,omitempty"`
	Status         string    `json:"status"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateCellGroupRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Description    string `json:"description" validate:"max=500"`
	LeaderMemberID *int64 `json:"leader_member_id,omitempty" validate:"omitempty,gt=0"`
	MeetingDay     string `json:"meeting_day" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Location       string `json:"location" validate:"max=200"`
}

type UpdateCellGroupRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=500"`
	LeaderMemberID *int64  `json:"leader_member_id,omitempty" validate:"omitempty,gte=0"`
	MeetingDay     *string `json:"meeting_day,omitempty" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Location       *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Version        int64   `json:"version" validate:"required,gt=0"`
}
