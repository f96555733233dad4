// Package permissions is the single place where role based capabilities are decided.
//
// Permission Format:
//   - "*" - Full access (all permissions)
//   - "resource.*" - All actions on a resource (e.g., "inventory.*")
//   - "resource.action" - Specific action (e.g., "inventory.read")
package permissions

import (
	"strings"
)

// Role is a staff role assigned to a profile.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// HasRole is the capability check used by every role gated operation.
// Inactive profiles satisfy nothing; admins satisfy every role.
func HasRole(role Role, active bool, required Role) bool {
	if !active {
		return false
	}
	if required == "" {
		return true
	}
	return role == RoleAdmin || role == required
}

// Permissions used by the route groups.
const (
	DashboardRead       = "dashboard.read"
	PatientsRead        = "patients.read"
	PatientsWrite       = "patients.write"
	AppointmentsRead    = "appointments.read"
	AppointmentsWrite   = "appointments.write"
	InventoryRead       = "inventory.read"
	InventoryWrite      = "inventory.write"
	InventoryTransact   = "inventory.transactions.write"
	InventoryExport     = "inventory.export"
	InventoryCategories = "inventory.categories.write"
	AdminProfiles       = "admin.profiles.manage"
	AdminUsers          = "admin.users.manage"
	AdminCalendarPerms  = "admin.calendar_permissions.manage"
)

// Staff work with patients, appointments and stock; the category list and
// everything under admin stays with admins.
var staffPermissions = []string{
	DashboardRead,
	"patients.*",
	"appointments.*",
	InventoryRead,
	InventoryWrite,
	InventoryTransact,
	InventoryExport,
}

var rolePermissions = map[Role][]string{
	RoleAdmin:        {"*"},
	RoleDoctor:       staffPermissions,
	RoleNurse:        staffPermissions,
	RoleReceptionist: staffPermissions,
}

// ForRole returns the permission set granted to a role.
func ForRole(role Role) []string {
	return rolePermissions[role]
}

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "inventory.*" matches "inventory.read", "inventory.transactions.write", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true
	}

	for _, p := range userPerms {
		if p == "*" || p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}
