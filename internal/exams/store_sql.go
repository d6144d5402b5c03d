package exams

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("exams: not found")

// Store persists confirmed exam plans. Generated-but-unconfirmed plans
// never touch it.
type Store interface {
	InsertTimetable(ctx context.Context, entries []TimetableEntry) error
	GetEntry(ctx context.Context, id string) (TimetableEntry, error)
	ListTimetable(ctx context.Context, departmentID, status string) ([]TimetableEntry, error)
	SetStatus(ctx context.Context, id, status string) error
	CreateRoom(ctx context.Context, r Room) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	InsertSeating(ctx context.Context, seats []SeatAssignment) error
	ListSeating(ctx context.Context, timetableID string) ([]SeatAssignment, error)
	SeatFor(ctx context.Context, timetableID, studentID string) (SeatAssignment, error)
	InsertDuties(ctx context.Context, duties []InvigilatorDuty) error
	ListDuties(ctx context.Context, timetableID string) ([]InvigilatorDuty, error)
	EngagedTeachers(ctx context.Context, examDate, session string) (map[string]bool, error)
	DutyCounts(ctx context.Context) (map[string]int, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) InsertTimetable(ctx context.Context, entries []TimetableEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().Unix()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exam_timetables
			   (id,subject_id,department_id,exam_type,exam_date,session,duration_min,status,created_by,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			e.ID, e.SubjectID, e.DepartmentID, e.ExamType, e.ExamDate, e.Session,
			e.DurationMin, e.Status, e.CreatedBy, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const entryCols = `t.id, t.subject_id, t.department_id, sub.semester, t.exam_type,
	t.exam_date, t.session, t.duration_min, t.status, t.created_by`

func (s *SQLStore) GetEntry(ctx context.Context, id string) (TimetableEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryCols+`
		 FROM exam_timetables t JOIN subjects sub ON sub.id = t.subject_id
		 WHERE t.id=$1`, id)
	var e TimetableEntry
	err := row.Scan(&e.ID, &e.SubjectID, &e.DepartmentID, &e.Semester, &e.ExamType,
		&e.ExamDate, &e.Session, &e.DurationMin, &e.Status, &e.CreatedBy)
	if err == sql.ErrNoRows {
		return TimetableEntry{}, ErrNotFound
	}
	return e, err
}

// ListTimetable filters by department and, when status is non-empty, by
// lifecycle status.
func (s *SQLStore) ListTimetable(ctx context.Context, departmentID, status string) ([]TimetableEntry, error) {
	q := `SELECT ` + entryCols + `
	      FROM exam_timetables t JOIN subjects sub ON sub.id = t.subject_id
	      WHERE t.department_id=$1`
	args := []any{departmentID}
	if status != "" {
		q += ` AND t.status=$2`
		args = append(args, status)
	}
	q += ` ORDER BY t.exam_date, t.session, sub.semester`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TimetableEntry
	for rows.Next() {
		var e TimetableEntry
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.DepartmentID, &e.Semester, &e.ExamType,
			&e.ExamDate, &e.Session, &e.DurationMin, &e.Status, &e.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_timetables SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) CreateRoom(ctx context.Context, r Room) (Room, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id,block,number,capacity) VALUES ($1,$2,$3,$4)`,
		r.ID, r.Block, r.Number, r.Capacity)
	return r, err
}

func (s *SQLStore) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, block, number, capacity FROM rooms ORDER BY block, number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Block, &r.Number, &r.Capacity); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertSeating(ctx context.Context, seats []SeatAssignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().Unix()
	for _, seat := range seats {
		if seat.ID == "" {
			seat.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_allocations (id,timetable_id,student_id,block,room_number,seat,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			seat.ID, seat.TimetableID, seat.StudentID, seat.Block, seat.RoomNumber, seat.Seat, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListSeating(ctx context.Context, timetableID string) ([]SeatAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timetable_id, student_id, block, room_number, seat
		 FROM room_allocations WHERE timetable_id=$1
		 ORDER BY block, room_number, seat`, timetableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SeatAssignment
	for rows.Next() {
		var a SeatAssignment
		if err := rows.Scan(&a.ID, &a.TimetableID, &a.StudentID, &a.Block, &a.RoomNumber, &a.Seat); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) SeatFor(ctx context.Context, timetableID, studentID string) (SeatAssignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, timetable_id, student_id, block, room_number, seat
		 FROM room_allocations WHERE timetable_id=$1 AND student_id=$2`,
		timetableID, studentID)
	var a SeatAssignment
	err := row.Scan(&a.ID, &a.TimetableID, &a.StudentID, &a.Block, &a.RoomNumber, &a.Seat)
	if err == sql.ErrNoRows {
		return SeatAssignment{}, ErrNotFound
	}
	return a, err
}

func (s *SQLStore) InsertDuties(ctx context.Context, duties []InvigilatorDuty) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().Unix()
	for _, d := range duties {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO invigilator_assignments (id,timetable_id,teacher_id,block,room_number,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			d.ID, d.TimetableID, d.TeacherID, d.Block, d.RoomNumber, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListDuties(ctx context.Context, timetableID string) ([]InvigilatorDuty, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timetable_id, teacher_id, block, room_number
		 FROM invigilator_assignments WHERE timetable_id=$1
		 ORDER BY block, room_number`, timetableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InvigilatorDuty
	for rows.Next() {
		var d InvigilatorDuty
		if err := rows.Scan(&d.ID, &d.TimetableID, &d.TeacherID, &d.Block, &d.RoomNumber); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// EngagedTeachers reports teachers already on duty in the given date
// and session, across all timetable entries.
func (s *SQLStore) EngagedTeachers(ctx context.Context, examDate, session string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ia.teacher_id
		 FROM invigilator_assignments ia
		 JOIN exam_timetables t ON t.id = ia.timetable_id
		 WHERE t.exam_date=$1 AND t.session=$2`, examDate, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *SQLStore) DutyCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT teacher_id, COUNT(*) FROM invigilator_assignments GROUP BY teacher_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
