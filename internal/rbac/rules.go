package rbac

// Default policy. A HOD carries everything a teacher does plus the
// allocation and department-dashboard powers; the coordinator runs the
// exam office; the principal approves and sees the whole college.
var RolePermissions = map[string][]string{
	"student": {
		"results:view-own",
		"timetable:view",
		"hallticket:view",
		"notifications:view",
		"user:change_password",
	},
	"teacher": {
		"marks:save",
		"marks:calculate",
		"results:view",
		"results:export",
		"students:view",
		"allocation:view-own",
		"timetable:view",
		"duties:view-own",
		"notifications:view",
		"user:change_password",
	},
	"hod": {
		"marks:calculate",
		"results:view",
		"results:export",
		"students:view",
		"allocation:*",
		"timetable:view",
		"dashboard:department",
		"notifications:view",
		"notifications:publish",
		"user:change_password",
	},
	"coordinator": {
		"directory:manage",
		"timetable:*",
		"rooms:manage",
		"seating:*",
		"invigilation:*",
		"results:view",
		"students:view",
		"notifications:view",
		"notifications:publish",
		"user:change_password",
	},
	"principal": {
		"*",
	},
}
