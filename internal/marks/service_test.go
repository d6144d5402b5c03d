package marks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spas-edu/spas-server/internal/directory"
	"github.com/spas-edu/spas-server/internal/grading"
)

/* ---- in-memory fakes ---- */

type fakeStore struct {
	perfs      map[string]Performance // key student|subject|year
	attendance map[string]AttendanceRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		perfs:      map[string]Performance{},
		attendance: map[string]AttendanceRecord{},
	}
}

func perfKey(studentID, subjectID, year string) string {
	return studentID + "|" + subjectID + "|" + year
}

func (f *fakeStore) UpsertPerformance(_ context.Context, p Performance) (Performance, error) {
	f.perfs[perfKey(p.StudentID, p.SubjectID, p.AcademicYear)] = p
	return p, nil
}

func (f *fakeStore) GetPerformance(_ context.Context, studentID, subjectID, year string) (Performance, error) {
	p, ok := f.perfs[perfKey(studentID, subjectID, year)]
	if !ok {
		return Performance{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListBySubject(_ context.Context, subjectID, year string) ([]ResultRow, error) {
	var out []ResultRow
	for _, p := range f.perfs {
		if p.SubjectID == subjectID && p.AcademicYear == year {
			out = append(out, ResultRow{
				RegistrationNumber: p.StudentID,
				Semester:           p.Semester,
				Total:              p.Total,
				Final:              p.Final,
				Grade:              p.Grade,
				Risk:               p.Risk,
			})
		}
	}
	return out, nil
}

func (f *fakeStore) ListByStudent(_ context.Context, studentID, year string) ([]Performance, error) {
	var out []Performance
	for _, p := range f.perfs {
		if p.StudentID == studentID && p.AcademicYear == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertAttendance(_ context.Context, a AttendanceRecord) error {
	f.attendance[perfKey(a.StudentID, a.SubjectID, "")] = a
	return nil
}

func (f *fakeStore) CountEntered(_ context.Context, subjectID, year string) (int, error) {
	n := 0
	for _, p := range f.perfs {
		if p.SubjectID == subjectID && p.AcademicYear == year {
			n++
		}
	}
	return n, nil
}

type fakeDir struct {
	subjects map[string]directory.Subject
	students map[string]directory.Student
}

func (f *fakeDir) GetSubject(_ context.Context, id string) (directory.Subject, error) {
	s, ok := f.subjects[id]
	if !ok {
		return directory.Subject{}, directory.ErrNotFound
	}
	return s, nil
}

func (f *fakeDir) GetStudent(_ context.Context, id string) (directory.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return directory.Student{}, directory.ErrNotFound
	}
	return s, nil
}

func (f *fakeDir) ListStudentsForSubject(_ context.Context, subjectID string) ([]directory.Student, error) {
	var out []directory.Student
	for _, st := range f.students {
		out = append(out, st)
	}
	return out, nil
}

type fakeAssign struct{ assigned map[string]bool }

func (f *fakeAssign) IsAssigned(_ context.Context, teacherID, subjectID, _ string) (bool, error) {
	return f.assigned[teacherID+"|"+subjectID], nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	dir := &fakeDir{
		subjects: map[string]directory.Subject{
			"sub-1": {ID: "sub-1", Code: "CS0101", Semester: 3},
		},
		students: map[string]directory.Student{
			"stu-1": {ID: "stu-1", RegistrationNumber: "CS2025001"},
			"stu-2": {ID: "stu-2", RegistrationNumber: "CS2025002"},
		},
	}
	assign := &fakeAssign{assigned: map[string]bool{"tch-1|sub-1": true}}
	svc := NewService(store, dir, assign)
	svc.now = func() time.Time { return time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC) }
	return svc, store
}

/* ---- tests ---- */

func TestSaveComputesDerived(t *testing.T) {
	svc, store := newTestService()
	entry := grading.MarkEntry{
		TotalClasses: 50, AttendedClasses: 40,
		Internal1: 60, Internal2: 55, Assignment: 8, Seminar: 7,
	}
	p, err := svc.Save(context.Background(), "tch-1", "sub-1", "stu-1", entry)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p.Total != 130 || p.Final != 16 || p.Grade != grading.GradeA || p.Risk != grading.RiskSafe {
		t.Errorf("derived = total %d final %d grade %s risk %s", p.Total, p.Final, p.Grade, p.Risk)
	}
	if p.AcademicYear != "2025-2026" {
		t.Errorf("academic year = %s, want 2025-2026", p.AcademicYear)
	}
	if p.Semester != 3 {
		t.Errorf("semester = %d, want subject's 3", p.Semester)
	}
	att := store.attendance[perfKey("stu-1", "sub-1", "")]
	if att.AttendancePercent != 80 || att.PenaltyAmount != 0 || att.PenaltyStatus != "No Penalty" {
		t.Errorf("attendance record = %+v", att)
	}
}

func TestSavePenaltyBands(t *testing.T) {
	tests := []struct {
		attended int
		amount   int
		status   string
	}{
		{38, 0, "No Penalty"},       // 76%
		{36, 200, "Low Penalty"},    // 72%
		{31, 500, "Medium Penalty"}, // 62%
		{25, 1000, "High Penalty"},  // 50%... attendance below 70 is Critical but still saved
	}
	for _, tt := range tests {
		svc, store := newTestService()
		entry := grading.MarkEntry{
			TotalClasses: 50, AttendedClasses: tt.attended,
			Internal1: 60, Internal2: 55, Assignment: 8, Seminar: 7,
		}
		if _, err := svc.Save(context.Background(), "tch-1", "sub-1", "stu-1", entry); err != nil {
			t.Fatalf("Save(%d): %v", tt.attended, err)
		}
		att := store.attendance[perfKey("stu-1", "sub-1", "")]
		if att.PenaltyAmount != tt.amount || att.PenaltyStatus != tt.status {
			t.Errorf("attended %d: penalty %d %q, want %d %q",
				tt.attended, att.PenaltyAmount, att.PenaltyStatus, tt.amount, tt.status)
		}
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	svc, store := newTestService()
	entry := grading.MarkEntry{
		TotalClasses: 50, AttendedClasses: 40,
		Internal1: 75, Internal2: 55, Assignment: 8, Seminar: 7,
	}
	_, err := svc.Save(context.Background(), "tch-1", "sub-1", "stu-1", entry)
	var inv *InvalidMarksError
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want InvalidMarksError", err)
	}
	if len(inv.Errors) != 1 || inv.Errors[0].Field != "internal1" {
		t.Errorf("violations = %v", inv.Errors)
	}
	if len(store.perfs) != 0 {
		t.Error("invalid row must not be persisted")
	}
}

func TestSaveUnassignedTeacher(t *testing.T) {
	svc, _ := newTestService()
	entry := grading.MarkEntry{TotalClasses: 10, AttendedClasses: 10}
	_, err := svc.Save(context.Background(), "tch-2", "sub-1", "stu-1", entry)
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("err = %v, want ErrNotAssigned", err)
	}
}

func TestBulkSaveRowsIndependent(t *testing.T) {
	svc, store := newTestService()
	rows := []RowInput{
		{StudentID: "stu-1", MarkEntry: grading.MarkEntry{
			TotalClasses: 50, AttendedClasses: 40,
			Internal1: 60, Internal2: 55, Assignment: 8, Seminar: 7,
		}},
		{StudentID: "stu-2", MarkEntry: grading.MarkEntry{
			TotalClasses: 50, AttendedClasses: 55, // attended > total
			Internal1: 60, Internal2: 55, Assignment: 8, Seminar: 7,
		}},
	}
	results, err := svc.BulkSave(context.Background(), "tch-1", "sub-1", rows)
	if err != nil {
		t.Fatalf("BulkSave: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].Saved || !results[0].Derived.Valid {
		t.Errorf("valid row not saved: %+v", results[0])
	}
	if results[1].Saved || results[1].Derived.Valid {
		t.Errorf("invalid row must not save: %+v", results[1])
	}
	if results[1].Derived.SubmitFinal != 0 {
		t.Errorf("invalid row submit final = %d, want 0", results[1].Derived.SubmitFinal)
	}
	if len(store.perfs) != 1 {
		t.Errorf("persisted %d rows, want 1", len(store.perfs))
	}
}

func TestStudentPerformanceViews(t *testing.T) {
	svc, _ := newTestService()
	entry := grading.MarkEntry{
		TotalClasses: 50, AttendedClasses: 40,
		Internal1: 60, Internal2: 55, Assignment: 8, Seminar: 7,
	}
	if _, err := svc.Save(context.Background(), "tch-1", "sub-1", "stu-1", entry); err != nil {
		t.Fatal(err)
	}
	views, err := svc.StudentPerformance(context.Background(), "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	// final 16/20 reads as 80%
	if views[0].Percentage != 80 {
		t.Errorf("percentage = %d, want 80", views[0].Percentage)
	}
	if !strings.Contains(views[0].Suggestion, "A+") {
		t.Errorf("suggestion = %q, want the A+ boundary named", views[0].Suggestion)
	}
}

func TestProgress(t *testing.T) {
	svc, _ := newTestService()
	entry := grading.MarkEntry{
		TotalClasses: 50, AttendedClasses: 40,
		Internal1: 60, Internal2: 55, Assignment: 8, Seminar: 7,
	}
	if _, err := svc.Save(context.Background(), "tch-1", "sub-1", "stu-1", entry); err != nil {
		t.Fatal(err)
	}
	p, err := svc.Progress(context.Background(), "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Students != 2 || p.Entered != 1 || p.Percent != 50 {
		t.Errorf("progress = %+v, want 2/1/50", p)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []ResultRow{{
		RegistrationNumber: "CS2025001",
		StudentName:        "Asha",
		Semester:           3,
		Internal1:          60, Internal2: 55, Assignment: 8, Seminar: 7,
		AttendancePercent: 80, Total: 130, Final: 16,
		Grade: grading.GradeA, Risk: grading.RiskSafe,
	}}
	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		t.Fatal(err)
	}
	got := sb.String()
	if !strings.HasPrefix(got, "Reg No,Name,Semester") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "CS2025001,Asha,3,60,55,8,7,80,130,16,A,Safe") {
		t.Errorf("missing row: %q", got)
	}
}
