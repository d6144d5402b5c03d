package marks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spas-edu/spas-server/internal/directory"
	"github.com/spas-edu/spas-server/internal/grading"
)

// ErrNotAssigned is returned when a teacher saves marks for a subject
// they do not teach.
var ErrNotAssigned = errors.New("marks: teacher not assigned to subject")

// InvalidMarksError carries every field violation of a rejected row.
type InvalidMarksError struct {
	Errors []grading.FieldError
}

func (e *InvalidMarksError) Error() string {
	return fmt.Sprintf("marks: %d invalid fields", len(e.Errors))
}

// Assignments answers whether a teacher currently teaches a subject.
type Assignments interface {
	IsAssigned(ctx context.Context, teacherID, subjectID, academicYear string) (bool, error)
}

// Directory is the slice of the registry the marks service reads.
type Directory interface {
	GetSubject(ctx context.Context, id string) (directory.Subject, error)
	GetStudent(ctx context.Context, id string) (directory.Student, error)
	ListStudentsForSubject(ctx context.Context, subjectID string) ([]directory.Student, error)
}

type Service struct {
	store       Store
	dir         Directory
	assignments Assignments
	now         func() time.Time
}

func NewService(store Store, dir Directory, assignments Assignments) *Service {
	return &Service{store: store, dir: dir, assignments: assignments, now: time.Now}
}

// RowInput is one student's raw row in a bulk submission.
type RowInput struct {
	StudentID string `json:"student_id" validate:"required"`
	grading.MarkEntry
}

// RowResult reports what happened to one row: the derived values (with
// ERR projection when invalid) and whether it was persisted.
type RowResult struct {
	StudentID string          `json:"student_id"`
	Derived   grading.Derived `json:"derived"`
	Saved     bool            `json:"saved"`
}

// Save validates, derives and persists a single student's row. Invalid
// rows are never persisted; the caller gets the full violation list.
func (s *Service) Save(ctx context.Context, teacherID, subjectID, studentID string, entry grading.MarkEntry) (Performance, error) {
	subject, err := s.dir.GetSubject(ctx, subjectID)
	if err != nil {
		return Performance{}, fmt.Errorf("get subject: %w", err)
	}
	ok, err := s.assignments.IsAssigned(ctx, teacherID, subjectID, s.year())
	if err != nil {
		return Performance{}, fmt.Errorf("check assignment: %w", err)
	}
	if !ok {
		return Performance{}, ErrNotAssigned
	}
	if _, err := s.dir.GetStudent(ctx, studentID); err != nil {
		return Performance{}, fmt.Errorf("get student: %w", err)
	}

	d := grading.Compute(entry)
	if !d.Valid {
		return Performance{}, &InvalidMarksError{Errors: d.Errors}
	}

	p := Performance{
		StudentID:         studentID,
		SubjectID:         subjectID,
		AcademicYear:      s.year(),
		MarkEntry:         entry,
		AttendancePercent: d.AttendancePercent,
		Total:             d.Total,
		Final:             d.Final,
		Grade:             d.Grade,
		Risk:              d.Risk,
		Semester:          subject.Semester,
	}
	saved, err := s.store.UpsertPerformance(ctx, p)
	if err != nil {
		return Performance{}, fmt.Errorf("upsert performance: %w", err)
	}

	now := s.now()
	amount, status := penaltyFor(d.AttendancePercent)
	att := AttendanceRecord{
		StudentID:         studentID,
		SubjectID:         subjectID,
		TeacherID:         teacherID,
		TotalClasses:      entry.TotalClasses,
		AttendedClasses:   entry.AttendedClasses,
		AttendancePercent: d.AttendancePercent,
		PenaltyAmount:     amount,
		PenaltyStatus:     status,
		Month:             int(now.Month()),
		Year:              now.Year(),
		Semester:          subject.Semester,
	}
	if err := s.store.UpsertAttendance(ctx, att); err != nil {
		return Performance{}, fmt.Errorf("upsert attendance: %w", err)
	}

	log.Info().
		Str("student_id", studentID).
		Str("subject_id", subjectID).
		Int("final", d.Final).
		Str("risk", string(d.Risk)).
		Msg("marks saved")
	return saved, nil
}

// BulkSave processes rows independently: one bad row never blocks the
// rest, and a bad row's submission value is the fail-safe 0 carried in
// its Derived.
func (s *Service) BulkSave(ctx context.Context, teacherID, subjectID string, rows []RowInput) ([]RowResult, error) {
	ok, err := s.assignments.IsAssigned(ctx, teacherID, subjectID, s.year())
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if !ok {
		return nil, ErrNotAssigned
	}

	out := make([]RowResult, 0, len(rows))
	for _, row := range rows {
		res := RowResult{StudentID: row.StudentID, Derived: grading.Compute(row.MarkEntry)}
		if res.Derived.Valid {
			if _, err := s.Save(ctx, teacherID, subjectID, row.StudentID, row.MarkEntry); err != nil {
				log.Warn().Err(err).Str("student_id", row.StudentID).Msg("bulk row save failed")
			} else {
				res.Saved = true
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// Calculate is the live endpoint behind the marks-entry form: derive
// without persisting.
func (s *Service) Calculate(entry grading.MarkEntry) grading.Derived {
	return grading.Compute(entry)
}

// Results lists a subject's saved rows joined with students.
func (s *Service) Results(ctx context.Context, subjectID string) ([]ResultRow, error) {
	return s.store.ListBySubject(ctx, subjectID, s.year())
}

// StudentPerformance lists one student's rows across subjects, each
// with its score percentage and an improvement suggestion for the
// student dashboard.
func (s *Service) StudentPerformance(ctx context.Context, studentID string) ([]PerformanceView, error) {
	perfs, err := s.store.ListByStudent(ctx, studentID, s.year())
	if err != nil {
		return nil, err
	}
	views := make([]PerformanceView, len(perfs))
	for i, p := range perfs {
		views[i] = PerformanceView{
			Performance: p,
			Percentage:  grading.Percentage(p.Final),
			Suggestion:  grading.Suggestion(p.Final),
		}
	}
	return views, nil
}

// Progress reports marks-entry completion for a subject.
func (s *Service) Progress(ctx context.Context, subjectID string) (EntryProgress, error) {
	students, err := s.dir.ListStudentsForSubject(ctx, subjectID)
	if err != nil {
		return EntryProgress{}, err
	}
	entered, err := s.store.CountEntered(ctx, subjectID, s.year())
	if err != nil {
		return EntryProgress{}, err
	}
	p := EntryProgress{Students: len(students), Entered: entered}
	if p.Students > 0 {
		p.Percent = 100 * p.Entered / p.Students
	}
	return p, nil
}

func (s *Service) year() string {
	return directory.AcademicYearAt(s.now())
}
