package auth

const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

const (
	PermRatesRead      = "rates.read"
	PermRatesWrite     = "rates.write"
	PermTicketsRead    = "tickets.read"
	PermTicketsWrite   = "tickets.write"
	PermTruckLogsWrite = "trucklogs.write"
	PermImportsWrite   = "imports.write"
	PermReconcileRun   = "reconcile.run"
	PermReportsRead    = "reports.read"
	PermReportsAdmin   = "reports.admin"
	PermUsersManage    = "users.manage"
	PermJobsRun        = "jobs.run"
	PermAuditRead      = "audit.read"
)

var DefaultPermissions = []string{
	PermRatesRead,
	PermRatesWrite,
	PermTicketsRead,
	PermTicketsWrite,
	PermTruckLogsWrite,
	PermImportsWrite,
	PermReconcileRun,
	PermReportsRead,
	PermReportsAdmin,
	PermUsersManage,
	PermJobsRun,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleTechnician: {
		PermRatesRead,
		PermTicketsRead,
		PermTicketsWrite,
		PermTruckLogsWrite,
		PermImportsWrite,
		PermReconcileRun,
		PermReportsRead,
	},
	RoleAdmin: DefaultPermissions,
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
