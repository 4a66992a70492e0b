package rbac

import "go-workforce/internal/tenant"

type Permission struct {
	Resource string
	Action   string
}

// rolePermissions are granted to every company. Each role also inherits the
// grants of the roles ranked below it.
var rolePermissions = map[tenant.Role][]Permission{
	tenant.RoleEmployee: {
		{"leave", "create"},
		{"leave", "read"},
		{"leave_balance", "read"},
		{"expense", "create"},
		{"expense", "read"},
		{"ticket", "create"},
		{"ticket", "read"},
	},
	tenant.RoleManager: {
		{"approval", "read"},
		{"approval", "approve"},
		{"approval", "bulk"},
		{"ticket", "start"},
		{"activity", "read"},
	},
	tenant.RoleHR: {
		{"expense", "reimburse"},
		{"leave_policy", "read"},
	},
	tenant.RoleAdmin: {
		{"leave_policy", "manage"},
		{"approval_chain", "read"},
		{"approval_chain", "create"},
		{"approval_chain", "update"},
		{"approval_chain", "delete"},
	},
}

var roleOrder = []tenant.Role{tenant.RoleEmployee, tenant.RoleManager, tenant.RoleHR, tenant.RoleAdmin}

// DefaultPermissions returns the built-in grants of role, inherited ones
// included.
func DefaultPermissions(role tenant.Role) []Permission {
	var out []Permission
	for _, r := range roleOrder {
		if !role.AtLeast(r) {
			continue
		}
		out = append(out, rolePermissions[r]...)
	}
	return out
}
