package exams

import (
	"fmt"

	"github.com/spas-edu/spas-server/internal/directory"
)

// seatStudents fills rooms in the given order, one student per seat,
// students taken in registration-number order. Returns an error when
// capacity runs out so a partial chart is never produced.
func seatStudents(timetableID string, students []directory.Student, rooms []Room) ([]SeatAssignment, error) {
	capacity := 0
	for _, r := range rooms {
		capacity += r.Capacity
	}
	if capacity < len(students) {
		return nil, fmt.Errorf("seating: %d students but only %d seats", len(students), capacity)
	}

	out := make([]SeatAssignment, 0, len(students))
	ri, seat := 0, 0
	for _, st := range students {
		for seat >= rooms[ri].Capacity {
			ri++
			seat = 0
		}
		seat++
		out = append(out, SeatAssignment{
			TimetableID: timetableID,
			StudentID:   st.ID,
			Block:       rooms[ri].Block,
			RoomNumber:  rooms[ri].Number,
			Seat:        seat,
		})
	}
	return out, nil
}

// roomsUsed lists the distinct rooms a seating chart occupies, in
// chart order.
func roomsUsed(seats []SeatAssignment) []Room {
	var out []Room
	seen := make(map[string]bool)
	for _, s := range seats {
		key := s.Block + "|" + s.RoomNumber
		if !seen[key] {
			seen[key] = true
			out = append(out, Room{Block: s.Block, Number: s.RoomNumber})
		}
	}
	return out
}
