package directory

// Roles known to the system. A user carries exactly one.
const (
	RoleStudent     = "student"
	RoleTeacher     = "teacher"
	RoleHOD         = "hod"
	RoleCoordinator = "coordinator"
	RolePrincipal   = "principal"
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type Department struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Subject struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Credits      int    `json:"credits"`
	DepartmentID string `json:"department_id"`
	Semester     int    `json:"semester"`
}

type Student struct {
	ID                 string `json:"id"`
	RegistrationNumber string `json:"registration_number"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	UserID             string `json:"user_id,omitempty"`
	DepartmentID       string `json:"department_id"`
	CurrentSemester    int    `json:"current_semester"`
	BatchYear          int    `json:"batch_year"`
	IsActive           bool   `json:"is_active"`
}
