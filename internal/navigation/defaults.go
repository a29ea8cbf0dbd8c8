package navigation

import "github.com/helios-campus/helios/internal/shared"

// DefaultManifests returns the portal's per-role menu manifests. Entry
// order is the render order for that role.
func DefaultManifests() []Manifest {
	return []Manifest{
		{
			Role: shared.RoleStudent,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "courses", Label: "My Courses"},
				{ViewID: "grades", Label: "Grades", RequiredPermission: shared.PermGradeView},
				{ViewID: "library", Label: "Library", RequiredPermission: shared.PermLibraryView},
				{ViewID: "billing", Label: "Billing", RequiredPermission: shared.PermFinanceView},
			},
		},
		{
			Role: shared.RoleFaculty,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "courses", Label: "Courses", RequiredPermission: shared.PermCourseView},
				{ViewID: "gradebook", Label: "Gradebook", RequiredPermission: shared.PermGradeEdit},
				{ViewID: "research", Label: "Research", RequiredPermission: shared.PermResearchView},
			},
		},
		{
			Role: shared.RoleAdvisor,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "advisees", Label: "Advisees", RequiredPermission: shared.PermAdviseeView},
				{ViewID: "grades", Label: "Grades", RequiredPermission: shared.PermGradeView},
			},
		},
		{
			Role: shared.RoleAdmin,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "permissions", Label: "Permission Management", RequiredPermission: shared.PermAuthzManage},
				{ViewID: "courses", Label: "Course Management", RequiredPermission: shared.PermCourseManage},
				{ViewID: "finance", Label: "Finance", RequiredPermission: shared.PermFinanceManage},
			},
		},
		{
			Role: shared.RoleLibrary,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "catalog", Label: "Catalog", RequiredPermission: shared.PermLibraryManage},
				{ViewID: "loans", Label: "Loans", RequiredPermission: shared.PermLibraryManage},
			},
		},
		{
			Role: shared.RoleFinance,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "accounts", Label: "Student Accounts", RequiredPermission: shared.PermFinanceManage},
				{ViewID: "reports", Label: "Reports", RequiredPermission: shared.PermFinanceView},
			},
		},
		{
			Role: shared.RoleRAdmin,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "projects", Label: "Projects", RequiredPermission: shared.PermResearchManage},
				{ViewID: "publications", Label: "Publications", RequiredPermission: shared.PermResearchView},
			},
		},
		{
			Role: shared.RoleITAdmin,
			Entries: []Entry{
				{ViewID: "dashboard", Label: "Dashboard"},
				{ViewID: "system", Label: "System", RequiredPermission: shared.PermSystemManage},
				{ViewID: "permissions", Label: "Permissions", RequiredPermission: shared.PermAuthzView},
			},
		},
	}
}
