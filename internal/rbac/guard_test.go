package rbac

import (
	"testing"

	"github.com/koinonia-app/koinonia/internal/shared"
)

func TestCanAccessMemberPastorAndAbove(t *testing.T) {
	member := MemberRef{ID: 42, CellGroupID: 7}
	for _, role := range []string{RolePastor, RoleAdmin} {
		if !CanAccessMember(shared.UserContext{Role: role}, member) {
			t.Errorf("%s should access any member", role)
		}
	}
	for _, role := range []string{RoleReadonly, RoleVolunteer, RoleStaff, RoleLeader} {
		if CanAccessMember(shared.UserContext{Role: role}, member) {
			t.Errorf("%s without link should not access member", role)
		}
	}
}

func TestCanAccessMemberSelf(t *testing.T) {
	member := MemberRef{ID: 42}
	user := shared.UserContext{Role: RoleReadonly, MemberID: 42}
	if !CanAccessMember(user, member) {
		t.Fatal("self access must be allowed regardless of role")
	}
	user.MemberID = 41
	if CanAccessMember(user, member) {
		t.Fatal("non-self low-rank access must be denied")
	}
}

func TestCanAccessMemberLeaderOfSameGroup(t *testing.T) {
	member := MemberRef{ID: 42, CellGroupID: 7}

	leader := shared.UserContext{Role: RoleLeader, CellGroupID: 7}
	if !CanAccessMember(leader, member) {
		t.Fatal("leader of the member's group must have access")
	}

	otherGroup := shared.UserContext{Role: RoleLeader, CellGroupID: 8}
	if CanAccessMember(otherGroup, member) {
		t.Fatal("leader of a different group must be denied")
	}

	// A leader context without a cell group id never matches, even
	// against members who also lack a group.
	noGroup := shared.UserContext{Role: RoleLeader}
	if CanAccessMember(noGroup, MemberRef{ID: 42}) {
		t.Fatal("leader without group context must be denied")
	}

	// The group branch is leader-specific.
	staff := shared.UserContext{Role: RoleStaff, CellGroupID: 7}
	if CanAccessMember(staff, member) {
		t.Fatal("staff in the same group must not use the leader branch")
	}
}

func TestCanViewSensitive(t *testing.T) {
	if CanViewSensitive(shared.UserContext{Role: RoleLeader}) {
		t.Fatal("leader must not view sensitive fields")
	}
	if !CanViewSensitive(shared.UserContext{Role: RolePastor}) {
		t.Fatal("pastor must view sensitive fields")
	}
	if !CanViewSensitive(shared.UserContext{Role: RoleAdmin}) {
		t.Fatal("admin must view sensitive fields")
	}
}
