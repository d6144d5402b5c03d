package exams

// Exam types an entry can be scheduled for.
const (
	TypeInternal1 = "Internal1"
	TypeInternal2 = "Internal2"
	TypeSemester  = "Semester"
)

// The two daily sessions exams run in.
const (
	SessionMorning   = "10AM"
	SessionAfternoon = "2PM"
)

// Timetable entry lifecycle.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
)

// TimetableEntry schedules one subject's exam. ExamDate is a civil
// date in ISO form (2006-01-02); the session carries the time of day.
type TimetableEntry struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subject_id"`
	DepartmentID string `json:"department_id"`
	Semester     int    `json:"semester"`
	ExamType     string `json:"exam_type"`
	ExamDate     string `json:"exam_date"`
	Session      string `json:"session"`
	DurationMin  int    `json:"duration_min"`
	Status       string `json:"status"`
	CreatedBy    string `json:"created_by,omitempty"`
}

// Room is an exam room with a fixed seat capacity.
type Room struct {
	ID       string `json:"id"`
	Block    string `json:"block"`
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
}

// SeatAssignment places one student for one timetable entry.
type SeatAssignment struct {
	ID          string `json:"id"`
	TimetableID string `json:"timetable_id"`
	StudentID   string `json:"student_id"`
	Block       string `json:"block"`
	RoomNumber  string `json:"room_number"`
	Seat        int    `json:"seat"`
}

// InvigilatorDuty puts one teacher in one room for one timetable entry.
type InvigilatorDuty struct {
	ID          string `json:"id"`
	TimetableID string `json:"timetable_id"`
	TeacherID   string `json:"teacher_id"`
	Block       string `json:"block"`
	RoomNumber  string `json:"room_number"`
}

// Conflict flags two entries the same cohort cannot sit.
type Conflict struct {
	A      TimetableEntry `json:"a"`
	B      TimetableEntry `json:"b"`
	Reason string         `json:"reason"`
}
