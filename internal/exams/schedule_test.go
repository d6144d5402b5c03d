package exams

import (
	"testing"
	"time"

	"github.com/spas-edu/spas-server/internal/directory"
)

func subj(id, code, dept string, sem int) directory.Subject {
	return directory.Subject{ID: id, Code: code, DepartmentID: dept, Semester: sem}
}

func TestBuildTimetableConsecutiveWorkingDays(t *testing.T) {
	subs := []directory.Subject{
		subj("s1", "CS0201", "d1", 2),
		subj("s2", "CS0202", "d1", 2),
		subj("s3", "CS0203", "d1", 2),
	}
	start := time.Date(2025, 11, 13, 0, 0, 0, 0, time.UTC) // Thursday
	entries, err := buildTimetable(subs, TypeInternal1, start, 180)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2025-11-13", "2025-11-14", "2025-11-17"} // weekend skipped
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.ExamDate != want[i] {
			t.Errorf("entry %d date = %s, want %s", i, e.ExamDate, want[i])
		}
		if e.Status != StatusPending || e.ExamType != TypeInternal1 || e.DurationMin != 180 {
			t.Errorf("entry %d = %+v", i, e)
		}
	}
}

func TestBuildTimetableSemestersShareDates(t *testing.T) {
	subs := []directory.Subject{
		subj("s1", "CS0201", "d1", 2),
		subj("s2", "CS0401", "d1", 4),
	}
	start := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC) // Monday
	entries, err := buildTimetable(subs, TypeSemester, start, 180)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].ExamDate != entries[1].ExamDate {
		t.Errorf("semesters should share the first day: %s vs %s",
			entries[0].ExamDate, entries[1].ExamDate)
	}
	if entries[0].Session == entries[1].Session {
		t.Errorf("adjacent semesters got the same session %s", entries[0].Session)
	}
}

func TestBuildTimetableRejectsUnknownType(t *testing.T) {
	subs := []directory.Subject{subj("s1", "CS0201", "d1", 2)}
	if _, err := buildTimetable(subs, "Midterm", time.Now(), 180); err == nil {
		t.Error("expected error for unknown exam type")
	}
}

func TestBuildTimetableNoSubjects(t *testing.T) {
	if _, err := buildTimetable(nil, TypeInternal1, time.Now(), 180); err == nil {
		t.Error("expected error for empty subject list")
	}
}

func TestFindConflicts(t *testing.T) {
	entries := []TimetableEntry{
		{SubjectID: "s1", DepartmentID: "d1", Semester: 2, ExamDate: "2025-11-10"},
		{SubjectID: "s2", DepartmentID: "d1", Semester: 2, ExamDate: "2025-11-10"},
		{SubjectID: "s3", DepartmentID: "d1", Semester: 4, ExamDate: "2025-11-10"},
	}
	cs := FindConflicts(entries)
	if len(cs) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(cs))
	}
	if cs[0].A.SubjectID != "s1" || cs[0].B.SubjectID != "s2" {
		t.Errorf("conflict pair = %s/%s", cs[0].A.SubjectID, cs[0].B.SubjectID)
	}
}
