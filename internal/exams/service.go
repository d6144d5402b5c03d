package exams

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spas-edu/spas-server/internal/directory"
)

// Directory is the registry slice the exam office needs.
type Directory interface {
	ListSubjects(ctx context.Context, departmentID string, semesters ...int) ([]directory.Subject, error)
	ListStudentsForSubject(ctx context.Context, subjectID string) ([]directory.Student, error)
	ListTeachers(ctx context.Context, departmentID string) ([]directory.User, error)
}

// Service generates exam plans and persists them once confirmed. A
// generated plan is plain data handed back to the caller; nothing is
// written until the matching Confirm call returns it.
type Service struct {
	store     Store
	dir       Directory
	maxDuties int
}

func NewService(store Store, dir Directory, maxDuties int) *Service {
	if maxDuties <= 0 {
		maxDuties = 2
	}
	return &Service{store: store, dir: dir, maxDuties: maxDuties}
}

// GenerateTimetable plans exams for a department's semesters inside the
// window starting at start. The plan is returned, not persisted.
func (s *Service) GenerateTimetable(ctx context.Context, departmentID, examType string,
	semesters []int, start time.Time, durationMin int) ([]TimetableEntry, error) {

	subjects, err := s.dir.ListSubjects(ctx, departmentID, semesters...)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	entries, err := buildTimetable(subjects, examType, start, durationMin)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("department_id", departmentID).
		Str("exam_type", examType).
		Int("entries", len(entries)).
		Msg("timetable generated")
	return entries, nil
}

// ConfirmTimetable validates and persists a previously generated (or
// hand-edited) plan as Pending entries.
func (s *Service) ConfirmTimetable(ctx context.Context, createdBy string, entries []TimetableEntry) ([]TimetableEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("empty timetable")
	}
	if cs := FindConflicts(entries); len(cs) > 0 {
		return nil, &ConflictError{Conflicts: cs}
	}
	for i := range entries {
		entries[i].Status = StatusPending
		entries[i].CreatedBy = createdBy
	}
	if err := s.store.InsertTimetable(ctx, entries); err != nil {
		return nil, fmt.Errorf("insert timetable: %w", err)
	}
	return entries, nil
}

// Approve moves a Pending entry to Approved. Only approved entries get
// seating and invigilation.
func (s *Service) Approve(ctx context.Context, id string) error {
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if e.Status != StatusPending {
		return fmt.Errorf("entry %s is %s, not %s", id, e.Status, StatusPending)
	}
	return s.store.SetStatus(ctx, id, StatusApproved)
}

func (s *Service) Timetable(ctx context.Context, departmentID, status string) ([]TimetableEntry, error) {
	return s.store.ListTimetable(ctx, departmentID, status)
}

// GenerateSeating seats the subject's students into the configured
// rooms in registration order. Returned, not persisted.
func (s *Service) GenerateSeating(ctx context.Context, timetableID string) ([]SeatAssignment, error) {
	entry, err := s.store.GetEntry(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	if entry.Status != StatusApproved {
		return nil, fmt.Errorf("entry %s not approved", timetableID)
	}
	students, err := s.dir.ListStudentsForSubject(ctx, entry.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if len(students) == 0 {
		return nil, fmt.Errorf("no students registered for subject %s", entry.SubjectID)
	}
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return seatStudents(timetableID, students, rooms)
}

func (s *Service) ConfirmSeating(ctx context.Context, seats []SeatAssignment) error {
	if len(seats) == 0 {
		return fmt.Errorf("empty seating chart")
	}
	if err := s.store.InsertSeating(ctx, seats); err != nil {
		return fmt.Errorf("insert seating: %w", err)
	}
	log.Info().
		Str("timetable_id", seats[0].TimetableID).
		Int("seats", len(seats)).
		Msg("seating confirmed")
	return nil
}

// GenerateInvigilation covers the entry's occupied rooms round-robin
// with teachers free in that date and session. Returned, not persisted.
func (s *Service) GenerateInvigilation(ctx context.Context, timetableID string) ([]InvigilatorDuty, error) {
	entry, err := s.store.GetEntry(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	seats, err := s.store.ListSeating(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, fmt.Errorf("no seating confirmed for entry %s", timetableID)
	}
	teachers, err := s.dir.ListTeachers(ctx, entry.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	engaged, err := s.store.EngagedTeachers(ctx, entry.ExamDate, entry.Session)
	if err != nil {
		return nil, err
	}
	duties, err := s.store.DutyCounts(ctx)
	if err != nil {
		return nil, err
	}
	return assignInvigilators(timetableID, roomsUsed(seats), teachers, engaged, duties, s.maxDuties)
}

func (s *Service) ConfirmInvigilation(ctx context.Context, duties []InvigilatorDuty) error {
	if len(duties) == 0 {
		return fmt.Errorf("empty duty list")
	}
	if err := s.store.InsertDuties(ctx, duties); err != nil {
		return fmt.Errorf("insert duties: %w", err)
	}
	log.Info().
		Str("timetable_id", duties[0].TimetableID).
		Int("duties", len(duties)).
		Msg("invigilation confirmed")
	return nil
}

func (s *Service) Seating(ctx context.Context, timetableID string) ([]SeatAssignment, error) {
	return s.store.ListSeating(ctx, timetableID)
}

func (s *Service) Duties(ctx context.Context, timetableID string) ([]InvigilatorDuty, error) {
	return s.store.ListDuties(ctx, timetableID)
}

// HallTicket is a student's seat for one exam.
type HallTicket struct {
	Entry TimetableEntry `json:"entry"`
	Seat  SeatAssignment `json:"seat"`
}

// HallTicketFor looks up where a student sits for a timetable entry.
func (s *Service) HallTicketFor(ctx context.Context, timetableID, studentID string) (HallTicket, error) {
	entry, err := s.store.GetEntry(ctx, timetableID)
	if err != nil {
		return HallTicket{}, err
	}
	seat, err := s.store.SeatFor(ctx, timetableID, studentID)
	if err != nil {
		return HallTicket{}, err
	}
	return HallTicket{Entry: entry, Seat: seat}, nil
}

func (s *Service) AddRoom(ctx context.Context, r Room) (Room, error) {
	if r.Capacity <= 0 {
		return Room{}, fmt.Errorf("room capacity must be positive")
	}
	return s.store.CreateRoom(ctx, r)
}

func (s *Service) Rooms(ctx context.Context) ([]Room, error) {
	return s.store.ListRooms(ctx)
}

// ConflictError carries every clash found in a submitted timetable.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("timetable has %d conflicts", len(e.Conflicts))
}
