package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionClassesRead allows viewing classes.
	PermissionClassesRead Permission = "classes:read"

	// PermissionClassesWrite allows creating, updating, and deleting classes.
	PermissionClassesWrite Permission = "classes:write"

	// PermissionSubjectsRead allows viewing subjects.
	PermissionSubjectsRead Permission = "subjects:read"

	// PermissionSubjectsWrite allows creating, updating, and deleting subjects.
	PermissionSubjectsWrite Permission = "subjects:write"

	// PermissionTeachersRead allows viewing teachers.
	PermissionTeachersRead Permission = "teachers:read"

	// PermissionTeachersWrite allows creating, updating, and deleting teachers.
	PermissionTeachersWrite Permission = "teachers:write"

	// PermissionTimetableRead allows viewing every class's timetable, drafts included.
	PermissionTimetableRead Permission = "timetable:read"

	// PermissionTimetableWrite allows creating, editing, and deleting draft sessions.
	PermissionTimetableWrite Permission = "timetable:write"

	// PermissionTimetablePublish allows publishing, locking, and unlocking sessions.
	PermissionTimetablePublish Permission = "timetable:publish"

	// PermissionGradingRead allows viewing grading systems.
	PermissionGradingRead Permission = "grading:read"

	// PermissionGradingWrite allows creating and replacing grading systems.
	PermissionGradingWrite Permission = "grading:write"

	// PermissionAdminsRead allows viewing staff accounts.
	PermissionAdminsRead Permission = "admins:read"

	// PermissionAdminsWrite allows creating, updating, and deleting staff accounts.
	PermissionAdminsWrite Permission = "admins:write"

	// PermissionRolesRead allows viewing roles and their permissions.
	PermissionRolesRead Permission = "roles:read"

	// PermissionRolesWrite allows creating, updating, and deleting roles.
	PermissionRolesWrite Permission = "roles:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionClassesRead,
	PermissionClassesWrite,
	PermissionSubjectsRead,
	PermissionSubjectsWrite,
	PermissionTeachersRead,
	PermissionTeachersWrite,
	PermissionTimetableRead,
	PermissionTimetableWrite,
	PermissionTimetablePublish,
	PermissionGradingRead,
	PermissionGradingWrite,
	PermissionAdminsRead,
	PermissionAdminsWrite,
	PermissionRolesRead,
	PermissionRolesWrite,
}

// IsKnownPermission reports whether code names a permission in AllPermissions.
func IsKnownPermission(code string) bool {
	for _, p := range AllPermissions {
		if string(p) == code {
			return true
		}
	}
	return false
}

// PermissionStrings returns the permission codes as plain strings.
func PermissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
