package exams

import (
	"fmt"

	"github.com/spas-edu/spas-server/internal/directory"
)

// assignInvigilators covers every occupied room with one teacher,
// round-robin over the staff list. Teachers already engaged in the same
// date and session are skipped entirely; a per-teacher duty cap bounds
// how much any one teacher carries across the exam run.
func assignInvigilators(timetableID string, rooms []Room, teachers []directory.User,
	engaged map[string]bool, duties map[string]int, maxDuties int) ([]InvigilatorDuty, error) {

	available := make([]directory.User, 0, len(teachers))
	for _, t := range teachers {
		if !engaged[t.ID] && duties[t.ID] < maxDuties {
			available = append(available, t)
		}
	}
	if len(available) < len(rooms) {
		return nil, fmt.Errorf("invigilation: %d rooms but only %d free teachers", len(rooms), len(available))
	}

	out := make([]InvigilatorDuty, 0, len(rooms))
	for i, r := range rooms {
		t := available[i%len(available)]
		out = append(out, InvigilatorDuty{
			TimetableID: timetableID,
			TeacherID:   t.ID,
			Block:       r.Block,
			RoomNumber:  r.Number,
		})
	}
	return out, nil
}
