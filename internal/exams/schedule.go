package exams

import (
	"fmt"
	"sort"
	"time"

	"github.com/spas-edu/spas-server/internal/directory"
)

const dateLayout = "2006-01-02"

// buildTimetable lays out one exam per cohort per working day. Subjects
// are grouped by semester; within a semester they run on consecutive
// working days starting at the window start. Different semesters share
// dates because their students never overlap. The session alternates by
// semester so room demand spreads over the day.
func buildTimetable(subjects []directory.Subject, examType string, start time.Time, durationMin int) ([]TimetableEntry, error) {
	switch examType {
	case TypeInternal1, TypeInternal2, TypeSemester:
	default:
		return nil, fmt.Errorf("unknown exam type %q", examType)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("no subjects to schedule")
	}

	bySemester := make(map[int][]directory.Subject)
	for _, s := range subjects {
		bySemester[s.Semester] = append(bySemester[s.Semester], s)
	}
	semesters := make([]int, 0, len(bySemester))
	for sem := range bySemester {
		semesters = append(semesters, sem)
	}
	sort.Ints(semesters)

	var entries []TimetableEntry
	for _, sem := range semesters {
		subs := bySemester[sem]
		sort.Slice(subs, func(i, j int) bool { return subs[i].Code < subs[j].Code })
		session := SessionMorning
		if (sem/2)%2 == 0 {
			session = SessionAfternoon
		}
		day := nextWorkingDay(start)
		for _, sub := range subs {
			entries = append(entries, TimetableEntry{
				SubjectID:    sub.ID,
				DepartmentID: sub.DepartmentID,
				Semester:     sub.Semester,
				ExamType:     examType,
				ExamDate:     day.Format(dateLayout),
				Session:      session,
				DurationMin:  durationMin,
				Status:       StatusPending,
			})
			day = nextWorkingDay(day.AddDate(0, 0, 1))
		}
	}
	if cs := FindConflicts(entries); len(cs) > 0 {
		return nil, fmt.Errorf("generated timetable has %d conflicts", len(cs))
	}
	return entries, nil
}

// FindConflicts reports entry pairs the same department-semester cohort
// would have to sit on the same day. Used both on generated plans and
// on manually edited ones before confirmation.
func FindConflicts(entries []TimetableEntry) []Conflict {
	var out []Conflict
	seen := make(map[string]TimetableEntry)
	for _, e := range entries {
		key := fmt.Sprintf("%s|%d|%s", e.DepartmentID, e.Semester, e.ExamDate)
		if prev, ok := seen[key]; ok {
			out = append(out, Conflict{
				A:      prev,
				B:      e,
				Reason: fmt.Sprintf("semester %d has two exams on %s", e.Semester, e.ExamDate),
			})
			continue
		}
		seen[key] = e
	}
	return out
}

func nextWorkingDay(d time.Time) time.Time {
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
