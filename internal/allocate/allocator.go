package allocate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spas-edu/spas-server/internal/directory"
)

// ActiveSemesters returns the semesters in session at t; the allocator
// only hands out their subjects. The odd term runs 1/3/5/7, the even
// term 2/4/6/8.
func ActiveSemesters(t time.Time) []int {
	odd := directory.OddSemesterAt(t)
	sems := make([]int, 0, 4)
	for year := 1; year <= 4; year++ {
		sems = append(sems, directory.SemesterNumber(year, odd))
	}
	return sems
}

// Assignment links a teacher to a subject for one academic year.
type Assignment struct {
	ID           string `json:"id"`
	TeacherID    string `json:"teacher_id"`
	SubjectID    string `json:"subject_id"`
	Semester     int    `json:"semester"`
	AcademicYear string `json:"academic_year"`
	IsActive     bool   `json:"is_active"`
}

// Result summarizes one allocator run.
type Result struct {
	Assigned    int            `json:"assigned"`
	Existing    int            `json:"existing"`
	Subjects    int            `json:"subjects"`
	PerSemester map[int]int    `json:"per_semester"`
	Workload    map[string]int `json:"workload"`
}

// Directory is what the allocator reads from the registry.
type Directory interface {
	ListTeachers(ctx context.Context, departmentID string) ([]directory.User, error)
	ListSubjects(ctx context.Context, departmentID string, semesters ...int) ([]directory.Subject, error)
}

type Allocator struct {
	store         Store
	dir           Directory
	maxPerTeacher int
	now           func() time.Time
}

func NewAllocator(store Store, dir Directory, maxPerTeacher int) *Allocator {
	if maxPerTeacher <= 0 {
		maxPerTeacher = 5
	}
	return &Allocator{store: store, dir: dir, maxPerTeacher: maxPerTeacher, now: time.Now}
}

// Assign distributes every unassigned subject of the running term's
// semesters round-robin over the department's active teachers,
// respecting the per-teacher cap and workload already on the books.
func (a *Allocator) Assign(ctx context.Context, departmentID, academicYear string) (Result, error) {
	teachers, err := a.dir.ListTeachers(ctx, departmentID)
	if err != nil {
		return Result{}, fmt.Errorf("list teachers: %w", err)
	}
	subjects, err := a.dir.ListSubjects(ctx, departmentID, ActiveSemesters(a.now())...)
	if err != nil {
		return Result{}, fmt.Errorf("list subjects: %w", err)
	}
	if len(teachers) == 0 || len(subjects) == 0 {
		return Result{}, fmt.Errorf("allocate: no teachers or subjects in department")
	}

	existing, err := a.store.ListActive(ctx, departmentID, academicYear)
	if err != nil {
		return Result{}, fmt.Errorf("list assignments: %w", err)
	}
	workload := make(map[string]int)
	taken := make(map[string]bool)
	for _, ex := range existing {
		workload[ex.TeacherID]++
		taken[ex.SubjectID] = true
	}

	plan := distribute(teachers, subjects, workload, taken, a.maxPerTeacher)
	for i := range plan {
		plan[i].AcademicYear = academicYear
		plan[i].IsActive = true
	}
	if len(plan) > 0 {
		if err := a.store.BulkInsert(ctx, plan); err != nil {
			return Result{}, fmt.Errorf("insert assignments: %w", err)
		}
	}

	res := Result{
		Assigned:    len(plan),
		Existing:    len(existing),
		Subjects:    len(subjects),
		PerSemester: make(map[int]int),
		Workload:    workload,
	}
	for _, p := range plan {
		res.PerSemester[p.Semester]++
	}
	log.Info().
		Str("department_id", departmentID).
		Int("assigned", res.Assigned).
		Int("existing", res.Existing).
		Msg("teacher-subject allocation run")
	return res, nil
}

// Reset deactivates a department's assignments for the year.
func (a *Allocator) Reset(ctx context.Context, departmentID, academicYear string) (int, error) {
	return a.store.DeactivateAll(ctx, departmentID, academicYear)
}

// distribute is the pure round-robin core. Subjects are walked per
// semester in ascending order; a teacher leaves the rotation once the
// cap is reached. Deterministic for a given input order.
func distribute(teachers []directory.User, subjects []directory.Subject,
	workload map[string]int, taken map[string]bool, maxPer int) []Assignment {

	bySemester := make(map[int][]directory.Subject)
	for _, s := range subjects {
		if !taken[s.ID] {
			bySemester[s.Semester] = append(bySemester[s.Semester], s)
		}
	}
	semesters := make([]int, 0, len(bySemester))
	for sem := range bySemester {
		semesters = append(semesters, sem)
	}
	sort.Ints(semesters)

	load := make(map[string]int, len(workload))
	for k, v := range workload {
		load[k] = v
	}

	var plan []Assignment
	for _, sem := range semesters {
		available := make([]directory.User, 0, len(teachers))
		for _, t := range teachers {
			if load[t.ID] < maxPer {
				available = append(available, t)
			}
		}
		i := 0
		for _, sub := range bySemester[sem] {
			if len(available) == 0 {
				break
			}
			t := available[i%len(available)]
			plan = append(plan, Assignment{
				TeacherID: t.ID,
				SubjectID: sub.ID,
				Semester:  sub.Semester,
			})
			load[t.ID]++
			if load[t.ID] >= maxPer {
				next := available[:0:0]
				for _, av := range available {
					if av.ID != t.ID {
						next = append(next, av)
					}
				}
				available = next
				// keep the rotation position stable after removal
				if len(available) > 0 {
					i = i % len(available)
				}
			} else {
				i++
			}
		}
	}
	return plan
}
