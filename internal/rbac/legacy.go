package rbac

// legacyRolePermissions is the canonical fallback table for the six
// built-in roles when no stored role definition exists. It merges the
// historical coarse resource-name table and the colon-qualified table
// into a single lookup; the implicit-admin rule lives in HasPermission
// rather than in this data.
var legacyRolePermissions = map[string][]string{
	RoleAdmin: AllPermissionKeys(),
	RolePastor: {
		PermMembersRead, PermMembersCreate, PermMembersUpdate, PermMembersDelete,
		PermTagsRead, PermTagsCreate, PermTagsUpdate, PermTagsDelete,
		PermCellGroupsRead, PermCellGroupsCreate, PermCellGroupsUpdate, PermCellGroupsDelete,
		PermEventsRead, PermEventsCreate, PermEventsUpdate, PermEventsDelete,
		PermOfferingsRead, PermOfferingsCreate,
		PermMediaRead, PermMediaCreate, PermMediaDelete,
		PermSettingsRead,
	},
	RoleLeader: {
		PermMembersRead, PermMembersUpdate,
		PermTagsRead,
		PermCellGroupsRead,
		PermEventsRead, PermEventsCreate, PermEventsUpdate,
		PermMediaRead,
	},
	RoleStaff: {
		PermMembersRead, PermMembersCreate, PermMembersUpdate,
		PermTagsRead,
		PermCellGroupsRead,
		PermEventsRead, PermEventsCreate, PermEventsUpdate, PermEventsDelete,
		PermOfferingsRead, PermOfferingsCreate,
		PermMediaRead, PermMediaCreate,
		PermSettingsRead,
	},
	RoleVolunteer: {
		PermMembersRead,
		PermEventsRead,
		PermMediaRead,
	},
	RoleReadonly: {
		PermMembersRead,
		PermEventsRead,
	},
}

// LegacyPermissions returns the fallback permission list for a built-in
// role name, or nil when the role is not one of the legacy six.
func LegacyPermissions(role string) []string {
	perms, ok := legacyRolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
