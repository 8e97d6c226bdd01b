package rbac

// Built-in role names. Custom roles created through the roles module
// rank below readonly for threshold checks.
const (
	RoleReadonly  = "readonly"
	RoleVolunteer = "volunteer"
	RoleStaff     = "staff"
	RoleLeader    = "leader"
	RolePastor    = "pastor"
	RoleAdmin     = "admin"
)

var roleRanks = map[string]int{
	RoleReadonly:  1,
	RoleVolunteer: 2,
	RoleStaff:     3,
	RoleLeader:    4,
	RolePastor:    5,
	RoleAdmin:     6,
}

// RoleRank returns the seniority rank of a role name. Unknown roles
// rank 0, below every built-in role.
func RoleRank(role string) int {
	return roleRanks[role]
}

// HasMinimumRole reports whether role ranks at or above the target.
func HasMinimumRole(role, target string) bool {
	return RoleRank(role) >= RoleRank(target)
}
