package marks

import "github.com/spas-edu/spas-server/internal/grading"

// Performance is one student's saved marks row for a subject in an
// academic year. Raw fields are authoritative; derived fields are
// recomputed from them on every save and never edited directly.
type Performance struct {
	ID           string `json:"id"`
	StudentID    string `json:"student_id"`
	SubjectID    string `json:"subject_id"`
	AcademicYear string `json:"academic_year"`

	grading.MarkEntry

	AttendancePercent int           `json:"attendance_percent"`
	Total             int           `json:"total"`
	Final             int           `json:"final"`
	Grade             grading.Grade `json:"grade"`
	Risk              grading.Risk  `json:"risk"`

	Semester  int   `json:"semester"`
	UpdatedAt int64 `json:"updated_at"`
}

// AttendanceRecord tracks monthly attendance with the fee penalty the
// institution levies for poor attendance.
type AttendanceRecord struct {
	ID                string `json:"id"`
	StudentID         string `json:"student_id"`
	SubjectID         string `json:"subject_id"`
	TeacherID         string `json:"teacher_id"`
	TotalClasses      int    `json:"total_classes"`
	AttendedClasses   int    `json:"attended_classes"`
	AttendancePercent int    `json:"attendance_percent"`
	PenaltyAmount     int    `json:"penalty_amount"`
	PenaltyStatus     string `json:"penalty_status"`
	Month             int    `json:"month"`
	Year              int    `json:"year"`
	Semester          int    `json:"semester"`
}

// Penalty bands by attendance percentage.
func penaltyFor(attendancePercent int) (int, string) {
	switch {
	case attendancePercent >= 75:
		return 0, "No Penalty"
	case attendancePercent >= 70:
		return 200, "Low Penalty"
	case attendancePercent >= 60:
		return 500, "Medium Penalty"
	default:
		return 1000, "High Penalty"
	}
}

// ResultRow is a performance joined with its student, as served by the
// results listing and the CSV export.
type ResultRow struct {
	RegistrationNumber string        `json:"registration_number"`
	StudentName        string        `json:"student_name"`
	Semester           int           `json:"semester"`
	Internal1          int           `json:"internal1"`
	Internal2          int           `json:"internal2"`
	Assignment         int           `json:"assignment"`
	Seminar            int           `json:"seminar"`
	AttendancePercent  int           `json:"attendance_percent"`
	Total              int           `json:"total"`
	Final              int           `json:"final"`
	Grade              grading.Grade `json:"grade"`
	Risk               grading.Risk  `json:"risk"`
}

// PerformanceView is a saved row with the student-facing extras the
// performance pages render alongside it.
type PerformanceView struct {
	Performance
	Percentage int    `json:"percentage"`
	Suggestion string `json:"suggestion"`
}

// EntryProgress reports how far marks entry for a subject has come.
type EntryProgress struct {
	Students int `json:"students"`
	Entered  int `json:"entered"`
	Percent  int `json:"percent"`
}
