// Package auth implements credential checks, password hashing and the
// signed session token lifecycle.
package auth

import "time"

// Account statuses. Accounts are never hard-deleted; disabling is a
// status change.
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusDisabled = "disabled"
)

// Account represents a login account. PermissionOverrides, when
// non-empty, fully replaces role-derived permissions.
type Account struct {
	ID                  int64
	Email               string
	PasswordHash        string
	Role                string
	PermissionOverrides []string
	MemberID            int64
	CellGroupID         int64
	Status              string
	MustChangePassword  bool
	EmailVerified       bool
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
