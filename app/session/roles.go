package session

import (
	"slices"

	"bizdash/app/models"
)

// RoleInfo describes a role for display and permission checks.
type RoleInfo struct {
	Role        models.Role         `json:"role"`
	Name        string              `json:"name"`
	Permissions []models.Permission `json:"permissions"`
	Color       string              `json:"color"`
}

var roles = map[models.Role]RoleInfo{
	models.RoleAdmin: {
		Role: models.RoleAdmin,
		Name: "Administrator",
		Permissions: []models.Permission{
			models.PermRead, models.PermWrite, models.PermDelete,
			models.PermManageUsers, models.PermViewAnalytics,
		},
		Color: "red",
	},
	models.RoleEditor: {
		Role:        models.RoleEditor,
		Name:        "Editor",
		Permissions: []models.Permission{models.PermRead, models.PermWrite},
		Color:       "blue",
	},
	models.RoleViewer: {
		Role:        models.RoleViewer,
		Name:        "Viewer",
		Permissions: []models.Permission{models.PermRead},
		Color:       "green",
	},
	models.RoleModerator: {
		Role:        models.RoleModerator,
		Name:        "Moderator",
		Permissions: []models.Permission{models.PermRead, models.PermWrite, models.PermModerate},
		Color:       "purple",
	},
}

// Roles lists every role in a fixed order.
func Roles() []RoleInfo {
	return []RoleInfo{
		roles[models.RoleAdmin],
		roles[models.RoleEditor],
		roles[models.RoleViewer],
		roles[models.RoleModerator],
	}
}

// LookupRole returns the info for role, falling back to viewer for unknown
// roles.
func LookupRole(role models.Role) RoleInfo {
	if info, ok := roles[role]; ok {
		return info
	}
	return roles[models.RoleViewer]
}

// Grants reports whether role carries perm. Unknown roles grant nothing.
func Grants(role models.Role, perm models.Permission) bool {
	info, ok := roles[role]
	if !ok {
		return false
	}
	return slices.Contains(info.Permissions, perm)
}
