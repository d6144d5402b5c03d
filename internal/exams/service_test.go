package exams

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spas-edu/spas-server/internal/directory"
)

type fakeStore struct {
	entries map[string]TimetableEntry
	rooms   []Room
	seats   map[string][]SeatAssignment
	duties  map[string][]InvigilatorDuty
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: map[string]TimetableEntry{},
		seats:   map[string][]SeatAssignment{},
		duties:  map[string][]InvigilatorDuty{},
	}
}

func (f *fakeStore) InsertTimetable(_ context.Context, entries []TimetableEntry) error {
	for i, e := range entries {
		if e.ID == "" {
			e.ID = entries[i].SubjectID + "-tt"
		}
		f.entries[e.ID] = e
	}
	return nil
}

func (f *fakeStore) GetEntry(_ context.Context, id string) (TimetableEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return TimetableEntry{}, ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListTimetable(_ context.Context, departmentID, status string) ([]TimetableEntry, error) {
	var out []TimetableEntry
	for _, e := range f.entries {
		if e.DepartmentID == departmentID && (status == "" || e.Status == status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id, status string) error {
	e, ok := f.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	f.entries[id] = e
	return nil
}

func (f *fakeStore) CreateRoom(_ context.Context, r Room) (Room, error) {
	f.rooms = append(f.rooms, r)
	return r, nil
}

func (f *fakeStore) ListRooms(_ context.Context) ([]Room, error) { return f.rooms, nil }

func (f *fakeStore) InsertSeating(_ context.Context, seats []SeatAssignment) error {
	f.seats[seats[0].TimetableID] = seats
	return nil
}

func (f *fakeStore) ListSeating(_ context.Context, timetableID string) ([]SeatAssignment, error) {
	return f.seats[timetableID], nil
}

func (f *fakeStore) SeatFor(_ context.Context, timetableID, studentID string) (SeatAssignment, error) {
	for _, s := range f.seats[timetableID] {
		if s.StudentID == studentID {
			return s, nil
		}
	}
	return SeatAssignment{}, ErrNotFound
}

func (f *fakeStore) InsertDuties(_ context.Context, duties []InvigilatorDuty) error {
	f.duties[duties[0].TimetableID] = duties
	return nil
}

func (f *fakeStore) ListDuties(_ context.Context, timetableID string) ([]InvigilatorDuty, error) {
	return f.duties[timetableID], nil
}

func (f *fakeStore) EngagedTeachers(_ context.Context, examDate, session string) (map[string]bool, error) {
	out := map[string]bool{}
	for id, duties := range f.duties {
		e := f.entries[id]
		if e.ExamDate == examDate && e.Session == session {
			for _, d := range duties {
				out[d.TeacherID] = true
			}
		}
	}
	return out, nil
}

func (f *fakeStore) DutyCounts(_ context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, duties := range f.duties {
		for _, d := range duties {
			out[d.TeacherID]++
		}
	}
	return out, nil
}

type fakeDir struct {
	subjects []directory.Subject
	students []directory.Student
	teachers []directory.User
}

func (f *fakeDir) ListSubjects(_ context.Context, _ string, _ ...int) ([]directory.Subject, error) {
	return f.subjects, nil
}

func (f *fakeDir) ListStudentsForSubject(_ context.Context, _ string) ([]directory.Student, error) {
	return f.students, nil
}

func (f *fakeDir) ListTeachers(_ context.Context, _ string) ([]directory.User, error) {
	return f.teachers, nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	dir := &fakeDir{
		subjects: []directory.Subject{
			subj("s1", "CS0201", "d1", 2),
			subj("s2", "CS0202", "d1", 2),
		},
		students: []directory.Student{
			{ID: "stu-1", RegistrationNumber: "CS2025001"},
			{ID: "stu-2", RegistrationNumber: "CS2025002"},
		},
		teachers: staff("t1", "t2"),
	}
	return NewService(store, dir, 2), store
}

func TestGenerateDoesNotPersist(t *testing.T) {
	svc, store := newTestService()
	start := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	plan, err := svc.GenerateTimetable(context.Background(), "d1", TypeInternal1, []int{2}, start, 180)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 2 {
		t.Fatalf("planned %d entries, want 2", len(plan))
	}
	if len(store.entries) != 0 {
		t.Error("generate must not persist")
	}
}

func TestConfirmRejectsConflicts(t *testing.T) {
	svc, store := newTestService()
	entries := []TimetableEntry{
		{SubjectID: "s1", DepartmentID: "d1", Semester: 2, ExamDate: "2025-11-10", ExamType: TypeInternal1},
		{SubjectID: "s2", DepartmentID: "d1", Semester: 2, ExamDate: "2025-11-10", ExamType: TypeInternal1},
	}
	_, err := svc.ConfirmTimetable(context.Background(), "coord-1", entries)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if len(store.entries) != 0 {
		t.Error("conflicting plan must not persist")
	}
}

func TestSeatingRequiresApproval(t *testing.T) {
	svc, store := newTestService()
	store.entries["tt-1"] = TimetableEntry{
		ID: "tt-1", SubjectID: "s1", DepartmentID: "d1",
		ExamDate: "2025-11-10", Session: SessionMorning, Status: StatusPending,
	}
	if _, err := svc.GenerateSeating(context.Background(), "tt-1"); err == nil {
		t.Fatal("expected error for pending entry")
	}
	if err := svc.Approve(context.Background(), "tt-1"); err != nil {
		t.Fatal(err)
	}
	store.rooms = []Room{{Block: "A", Number: "101", Capacity: 30}}
	seats, err := svc.GenerateSeating(context.Background(), "tt-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(seats) != 2 {
		t.Errorf("seated %d, want 2", len(seats))
	}
}

func TestHallTicketFlow(t *testing.T) {
	svc, store := newTestService()
	store.entries["tt-1"] = TimetableEntry{
		ID: "tt-1", SubjectID: "s1", DepartmentID: "d1",
		ExamDate: "2025-11-10", Session: SessionMorning, Status: StatusApproved,
	}
	store.rooms = []Room{{Block: "A", Number: "101", Capacity: 30}}
	seats, err := svc.GenerateSeating(context.Background(), "tt-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ConfirmSeating(context.Background(), seats); err != nil {
		t.Fatal(err)
	}
	ticket, err := svc.HallTicketFor(context.Background(), "tt-1", "stu-2")
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Seat.Seat != 2 || ticket.Seat.RoomNumber != "101" {
		t.Errorf("ticket = %+v", ticket.Seat)
	}
}

func TestInvigilationSkipsEngagedSameSlot(t *testing.T) {
	svc, store := newTestService()
	store.entries["tt-1"] = TimetableEntry{
		ID: "tt-1", SubjectID: "s1", DepartmentID: "d1",
		ExamDate: "2025-11-10", Session: SessionMorning, Status: StatusApproved,
	}
	store.entries["tt-2"] = TimetableEntry{
		ID: "tt-2", SubjectID: "s2", DepartmentID: "d1",
		ExamDate: "2025-11-10", Session: SessionMorning, Status: StatusApproved,
	}
	store.seats["tt-1"] = []SeatAssignment{{TimetableID: "tt-1", StudentID: "stu-1", Block: "A", RoomNumber: "101", Seat: 1}}
	store.seats["tt-2"] = []SeatAssignment{{TimetableID: "tt-2", StudentID: "stu-2", Block: "A", RoomNumber: "102", Seat: 1}}
	store.duties["tt-1"] = []InvigilatorDuty{{TimetableID: "tt-1", TeacherID: "t1", Block: "A", RoomNumber: "101"}}

	duties, err := svc.GenerateInvigilation(context.Background(), "tt-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(duties) != 1 || duties[0].TeacherID != "t2" {
		t.Errorf("duties = %+v, want t2 only", duties)
	}
}
