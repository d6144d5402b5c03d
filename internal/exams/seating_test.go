package exams

import (
	"testing"

	"github.com/spas-edu/spas-server/internal/directory"
)

func students(n int) []directory.Student {
	out := make([]directory.Student, n)
	for i := range out {
		out[i] = directory.Student{ID: string(rune('a' + i))}
	}
	return out
}

func TestSeatStudentsFillsRoomsInOrder(t *testing.T) {
	rooms := []Room{
		{Block: "A", Number: "101", Capacity: 2},
		{Block: "A", Number: "102", Capacity: 3},
	}
	seats, err := seatStudents("tt-1", students(4), rooms)
	if err != nil {
		t.Fatal(err)
	}
	if len(seats) != 4 {
		t.Fatalf("got %d seats, want 4", len(seats))
	}
	// first room fills before the second starts
	if seats[0].RoomNumber != "101" || seats[0].Seat != 1 {
		t.Errorf("seat 0 = %+v", seats[0])
	}
	if seats[1].RoomNumber != "101" || seats[1].Seat != 2 {
		t.Errorf("seat 1 = %+v", seats[1])
	}
	if seats[2].RoomNumber != "102" || seats[2].Seat != 1 {
		t.Errorf("seat 2 = %+v", seats[2])
	}
	for _, s := range seats {
		if s.TimetableID != "tt-1" {
			t.Errorf("seat missing timetable id: %+v", s)
		}
	}
}

func TestSeatStudentsInsufficientCapacity(t *testing.T) {
	rooms := []Room{{Block: "A", Number: "101", Capacity: 3}}
	if _, err := seatStudents("tt-1", students(4), rooms); err == nil {
		t.Error("expected capacity error")
	}
}

func TestRoomsUsed(t *testing.T) {
	seats := []SeatAssignment{
		{Block: "A", RoomNumber: "101", Seat: 1},
		{Block: "A", RoomNumber: "101", Seat: 2},
		{Block: "B", RoomNumber: "201", Seat: 1},
	}
	rooms := roomsUsed(seats)
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
	if rooms[0].Number != "101" || rooms[1].Number != "201" {
		t.Errorf("rooms = %+v", rooms)
	}
}
