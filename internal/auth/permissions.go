package auth

// Resource categories gated by the permission matrix.
const (
	ResourceLoans    = "loans"
	ResourceUsers    = "users"
	ResourceReports  = "reports"
	ResourceSettings = "settings"
)

// Actions a role may hold on a resource.
const (
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
	ActionManage  = "manage"
)

// Permission is the action set for one resource.
type Permission struct {
	Create  bool `json:"create"`
	Read    bool `json:"read"`
	Update  bool `json:"update"`
	Delete  bool `json:"delete"`
	Approve bool `json:"approve"`
	Manage  bool `json:"manage"`
}

// RolePermissions is the full matrix for one role.
type RolePermissions struct {
	Loans    Permission `json:"loans"`
	Users    Permission `json:"users"`
	Reports  Permission `json:"reports"`
	Settings Permission `json:"settings"`
}

var allAllowed = Permission{Create: true, Read: true, Update: true, Delete: true, Approve: true, Manage: true}

// rolePermissions is fixed at build time; roles map to it, never compute it.
var rolePermissions = map[string]RolePermissions{
	"admin": {
		Loans:    allAllowed,
		Users:    allAllowed,
		Reports:  allAllowed,
		Settings: allAllowed,
	},
	"manager": {
		Loans:    Permission{Create: true, Read: true, Update: true, Delete: false, Approve: true, Manage: true},
		Users:    Permission{Read: true},
		Reports:  Permission{Create: true, Read: true},
		Settings: Permission{Read: true},
	},
	"agent": {
		Loans: Permission{Create: true, Read: true},
	},
}

// PermissionsForRole returns the matrix for a role, or nil for unknown roles.
func PermissionsForRole(role string) *RolePermissions {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	return &perms
}

func (p Permission) allows(action string) bool {
	switch action {
	case ActionCreate:
		return p.Create
	case ActionRead:
		return p.Read
	case ActionUpdate:
		return p.Update
	case ActionDelete:
		return p.Delete
	case ActionApprove:
		return p.Approve
	case ActionManage:
		return p.Manage
	default:
		return false
	}
}

// HasPermission reports whether the permission set allows the action on the
// resource. Nil permissions (unauthenticated) always deny.
func HasPermission(permissions *RolePermissions, resource, action string) bool {
	if permissions == nil {
		return false
	}

	switch resource {
	case ResourceLoans:
		return permissions.Loans.allows(action)
	case ResourceUsers:
		return permissions.Users.allows(action)
	case ResourceReports:
		return permissions.Reports.allows(action)
	case ResourceSettings:
		return permissions.Settings.allows(action)
	default:
		return false
	}
}
