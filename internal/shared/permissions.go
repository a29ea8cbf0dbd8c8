package shared

import "github.com/helios-campus/helios/internal/authz"

// Portal roles supplied by the authentication collaborator.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdvisor = "advisor"
	RoleAdmin   = "admin"
	RoleLibrary = "library"
	RoleFinance = "finance"
	RoleRAdmin  = "research"
	RoleITAdmin = "itadmin"
)

// Permission codenames for the campus portal.
const (
	PermGradeView = "grade.view"
	PermGradeEdit = "grade.edit"

	PermCourseView   = "course.view"
	PermCourseManage = "course.manage"

	PermAdviseeView = "advisee.view"

	PermFinanceView   = "finance.view"
	PermFinanceManage = "finance.manage"

	PermLibraryView   = "library.view"
	PermLibraryManage = "library.manage"

	PermResearchView   = "research.view"
	PermResearchManage = "research.manage"

	PermAuthzView   = "authz.view"
	PermAuthzManage = "authz.manage"

	PermSystemManage = "system.manage"
)

// Scope dimensions accepted on grants. The vocabulary is closed: assigning
// a scope with an unregistered dimension is rejected.
const (
	DimDepartment = "department"
	DimCampus     = "campus"
)

// RegisterCatalog loads the portal's permission manifest into a catalog.
// Called once at startup; a duplicate here is a programming error.
func RegisterCatalog(catalog *authz.Catalog) {
	catalog.MustRegister(PermGradeView, "View Grades", "academics")
	catalog.MustRegister(PermGradeEdit, "Edit Grades", "academics")
	catalog.MustRegister(PermCourseView, "View Courses", "academics")
	catalog.MustRegister(PermCourseManage, "Manage Courses", "academics")
	catalog.MustRegister(PermAdviseeView, "View Advisees", "advising")
	catalog.MustRegister(PermFinanceView, "View Finance", "finance")
	catalog.MustRegister(PermFinanceManage, "Manage Finance", "finance")
	catalog.MustRegister(PermLibraryView, "View Library", "library")
	catalog.MustRegister(PermLibraryManage, "Manage Library", "library")
	catalog.MustRegister(PermResearchView, "View Research", "research")
	catalog.MustRegister(PermResearchManage, "Manage Research", "research")
	catalog.MustRegister(PermAuthzView, "View Permissions", "platform")
	catalog.MustRegister(PermAuthzManage, "Manage Permissions", "platform")
	catalog.MustRegister(PermSystemManage, "Manage System", "platform")

	catalog.RegisterDimension(DimDepartment)
	catalog.RegisterDimension(DimCampus)
}
