package rbac

import "github.com/koinonia-app/koinonia/internal/shared"

// MemberRef carries the member fields record-level access decisions
// need, without pulling the full member record into this package.
type MemberRef struct {
	ID          int64
	CellGroupID int64
}

// CanAccessMember decides whether the caller may read or update a
// specific member record: pastors and above see everything, every user
// may access the member record linked to their own account, and a
// leader may access members of their own cell group. The leader branch
// requires the caller context to carry a cell group id; without one it
// is false.
func CanAccessMember(user shared.UserContext, member MemberRef) bool {
	if HasMinimumRole(user.Role, RolePastor) {
		return true
	}
	if user.MemberID == member.ID {
		return true
	}
	if user.Role == RoleLeader && user.CellGroupID != 0 && user.CellGroupID == member.CellGroupID {
		return true
	}
	return false
}

// CanViewSensitive reports whether sensitive member fields (health
// notes) may be returned unfiltered to the caller.
func CanViewSensitive(user shared.UserContext) bool {
	return HasMinimumRole(user.Role, RolePastor)
}
