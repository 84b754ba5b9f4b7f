package user

type Permission string

const (
	// Attendance
	PermissionAttendanceClock   Permission = "attendance.clock"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceExport  Permission = "attendance.export"

	// Requests
	PermissionRequestSubmit  Permission = "request.submit"
	PermissionRequestViewAll Permission = "request.view_all"
	PermissionRequestDecide  Permission = "request.decide"

	// Summaries
	PermissionSummaryViewOwn Permission = "summary.view_own"
	PermissionSummaryRun     Permission = "summary.run"

	// Administration
	PermissionUserManage     Permission = "user.manage"
	PermissionLocationManage Permission = "location.manage"
	PermissionHolidayManage  Permission = "holiday.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceExport,
		PermissionRequestSubmit,
		PermissionRequestViewAll,
		PermissionRequestDecide,
		PermissionSummaryViewOwn,
		PermissionSummaryRun,
		PermissionUserManage,
		PermissionLocationManage,
		PermissionHolidayManage,
	},
	RoleGeneral: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionRequestSubmit,
		PermissionSummaryViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
