// Package rbac implements role resolution, permission checks and
// member-level access decisions.
package rbac

import "strings"

// Permission keys follow the <resource>:<action> form.
const (
	PermMembersRead   = "members:read"
	PermMembersCreate = "members:create"
	PermMembersUpdate = "members:update"
	PermMembersDelete = "members:delete"

	PermTagsRead   = "tags:read"
	PermTagsCreate = "tags:create"
	PermTagsUpdate = "tags:update"
	PermTagsDelete = "tags:delete"

	PermCellGroupsRead   = "cell_groups:read"
	PermCellGroupsCreate = "cell_groups:create"
	PermCellGroupsUpdate = "cell_groups:update"
	PermCellGroupsDelete = "cell_groups:delete"

	PermEventsRead   = "events:read"
	PermEventsCreate = "events:create"
	PermEventsUpdate = "events:update"
	PermEventsDelete = "events:delete"

	PermOfferingsRead   = "offerings:read"
	PermOfferingsCreate = "offerings:create"
	PermOfferingsDelete = "offerings:delete"

	PermMediaRead   = "media:read"
	PermMediaCreate = "media:create"
	PermMediaDelete = "media:delete"

	PermSettingsRead   = "settings:read"
	PermSettingsUpdate = "settings:update"

	PermUsersRead   = "users:read"
	PermUsersCreate = "users:create"
	PermUsersUpdate = "users:update"

	PermRolesRead   = "roles:read"
	PermRolesCreate = "roles:create"
	PermRolesUpdate = "roles:update"
	PermRolesDelete = "roles:delete"
)

// Permission pairs a key with a human description.
type Permission struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// PermissionGroup organizes permissions by feature area. Grouping is
// presentational only and carries no authorization semantics.
type PermissionGroup struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Catalog returns the full permission catalog grouped by feature area.
func Catalog() []PermissionGroup {
	return []PermissionGroup{
		{Name: "Members", Permissions: []Permission{
			{PermMembersRead, "View member records"},
			{PermMembersCreate, "Create member records"},
			{PermMembersUpdate, "Edit member records"},
			{PermMembersDelete, "Archive member records"},
		}},
		{Name: "Tags", Permissions: []Permission{
			{PermTagsRead, "View tags and tag rules"},
			{PermTagsCreate, "Create tags and tag rules"},
			{PermTagsUpdate, "Edit tags and tag rules"},
			{PermTagsDelete, "Delete tags and tag rules"},
		}},
		{Name: "Cell Groups", Permissions: []Permission{
			{PermCellGroupsRead, "View cell groups"},
			{PermCellGroupsCreate, "Create cell groups"},
			{PermCellGroupsUpdate, "Edit cell groups"},
			{PermCellGroupsDelete, "Delete cell groups"},
		}},
		{Name: "Events", Permissions: []Permission{
			{PermEventsRead, "View events"},
			{PermEventsCreate, "Create events"},
			{PermEventsUpdate, "Edit events"},
			{PermEventsDelete, "Delete events"},
		}},
		{Name: "Offerings", Permissions: []Permission{
			{PermOfferingsRead, "View offering records and totals"},
			{PermOfferingsCreate, "Record offerings"},
			{PermOfferingsDelete, "Remove offering records"},
		}},
		{Name: "Media", Permissions: []Permission{
			{PermMediaRead, "View uploaded media"},
			{PermMediaCreate, "Upload media"},
			{PermMediaDelete, "Delete media"},
		}},
		{Name: "Settings", Permissions: []Permission{
			{PermSettingsRead, "View site settings"},
			{PermSettingsUpdate, "Edit site settings"},
		}},
		{Name: "Users & Roles", Permissions: []Permission{
			{PermUsersRead, "View user accounts"},
			{PermUsersCreate, "Invite user accounts"},
			{PermUsersUpdate, "Edit user accounts"},
			{PermRolesRead, "View roles"},
			{PermRolesCreate, "Create roles"},
			{PermRolesUpdate, "Edit roles"},
			{PermRolesDelete, "Delete roles"},
		}},
	}
}

// AllPermissionKeys flattens the catalog into a key list.
func AllPermissionKeys() []string {
	var keys []string
	for _, group := range Catalog() {
		for _, perm := range group.Permissions {
			keys = append(keys, perm.Key)
		}
	}
	return keys
}

// IsKnownPermission reports whether key appears in the catalog.
func IsKnownPermission(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, group := range Catalog() {
		for _, perm := range group.Permissions {
			if perm.Key == key {
				return true
			}
		}
	}
	return false
}
