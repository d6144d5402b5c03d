package marks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spas-edu/spas-server/internal/grading"
)

var ErrNotFound = errors.New("marks: not found")

// Store is what the service needs from persistence.
type Store interface {
	UpsertPerformance(ctx context.Context, p Performance) (Performance, error)
	GetPerformance(ctx context.Context, studentID, subjectID, academicYear string) (Performance, error)
	ListBySubject(ctx context.Context, subjectID, academicYear string) ([]ResultRow, error)
	ListByStudent(ctx context.Context, studentID, academicYear string) ([]Performance, error)
	UpsertAttendance(ctx context.Context, a AttendanceRecord) error
	CountEntered(ctx context.Context, subjectID, academicYear string) (int, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) UpsertPerformance(ctx context.Context, p Performance) (Performance, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO performances
		   (id,student_id,subject_id,academic_year,total_classes,attended_classes,attendance_percent,
		    internal1,internal2,assignment,seminar,total,final,grade,risk,semester,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		 ON CONFLICT (student_id,subject_id,academic_year) DO UPDATE SET
		   total_classes=EXCLUDED.total_classes,
		   attended_classes=EXCLUDED.attended_classes,
		   attendance_percent=EXCLUDED.attendance_percent,
		   internal1=EXCLUDED.internal1,
		   internal2=EXCLUDED.internal2,
		   assignment=EXCLUDED.assignment,
		   seminar=EXCLUDED.seminar,
		   total=EXCLUDED.total,
		   final=EXCLUDED.final,
		   grade=EXCLUDED.grade,
		   risk=EXCLUDED.risk,
		   semester=EXCLUDED.semester,
		   updated_at=EXCLUDED.updated_at`,
		p.ID, p.StudentID, p.SubjectID, p.AcademicYear,
		p.TotalClasses, p.AttendedClasses, p.AttendancePercent,
		p.Internal1, p.Internal2, p.Assignment, p.Seminar,
		p.Total, p.Final, string(p.Grade), string(p.Risk), p.Semester, p.UpdatedAt)
	if err != nil {
		return Performance{}, err
	}
	return s.GetPerformance(ctx, p.StudentID, p.SubjectID, p.AcademicYear)
}

func (s *SQLStore) GetPerformance(ctx context.Context, studentID, subjectID, academicYear string) (Performance, error) {
	var p Performance
	var grade, risk string
	err := s.db.QueryRowContext(ctx,
		`SELECT id,student_id,subject_id,academic_year,total_classes,attended_classes,attendance_percent,
		        internal1,internal2,assignment,seminar,total,final,grade,risk,semester,updated_at
		 FROM performances WHERE student_id=$1 AND subject_id=$2 AND academic_year=$3`,
		studentID, subjectID, academicYear).
		Scan(&p.ID, &p.StudentID, &p.SubjectID, &p.AcademicYear,
			&p.TotalClasses, &p.AttendedClasses, &p.AttendancePercent,
			&p.Internal1, &p.Internal2, &p.Assignment, &p.Seminar,
			&p.Total, &p.Final, &grade, &risk, &p.Semester, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Performance{}, ErrNotFound
	}
	if err != nil {
		return Performance{}, err
	}
	p.Grade, p.Risk = toGradeRisk(grade, risk)
	return p, nil
}

func (s *SQLStore) ListBySubject(ctx context.Context, subjectID, academicYear string) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT st.registration_number, st.name, p.semester,
		        p.internal1, p.internal2, p.assignment, p.seminar,
		        p.attendance_percent, p.total, p.final, p.grade, p.risk
		 FROM performances p
		 JOIN students st ON st.id = p.student_id
		 WHERE p.subject_id=$1 AND p.academic_year=$2
		 ORDER BY st.registration_number`, subjectID, academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ResultRow
	for rows.Next() {
		var r ResultRow
		var grade, risk string
		if err := rows.Scan(&r.RegistrationNumber, &r.StudentName, &r.Semester,
			&r.Internal1, &r.Internal2, &r.Assignment, &r.Seminar,
			&r.AttendancePercent, &r.Total, &r.Final, &grade, &risk); err != nil {
			return nil, err
		}
		r.Grade, r.Risk = toGradeRisk(grade, risk)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListByStudent(ctx context.Context, studentID, academicYear string) ([]Performance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,student_id,subject_id,academic_year,total_classes,attended_classes,attendance_percent,
		        internal1,internal2,assignment,seminar,total,final,grade,risk,semester,updated_at
		 FROM performances WHERE student_id=$1 AND academic_year=$2 ORDER BY subject_id`,
		studentID, academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Performance
	for rows.Next() {
		var p Performance
		var grade, risk string
		if err := rows.Scan(&p.ID, &p.StudentID, &p.SubjectID, &p.AcademicYear,
			&p.TotalClasses, &p.AttendedClasses, &p.AttendancePercent,
			&p.Internal1, &p.Internal2, &p.Assignment, &p.Seminar,
			&p.Total, &p.Final, &grade, &risk, &p.Semester, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Grade, p.Risk = toGradeRisk(grade, risk)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertAttendance(ctx context.Context, a AttendanceRecord) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance
		   (id,student_id,subject_id,teacher_id,total_classes,attended_classes,attendance_percent,
		    penalty_amount,penalty_status,month,year,semester,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT (student_id,subject_id,month,year) DO UPDATE SET
		   total_classes=EXCLUDED.total_classes,
		   attended_classes=EXCLUDED.attended_classes,
		   attendance_percent=EXCLUDED.attendance_percent,
		   penalty_amount=EXCLUDED.penalty_amount,
		   penalty_status=EXCLUDED.penalty_status,
		   updated_at=EXCLUDED.updated_at`,
		a.ID, a.StudentID, a.SubjectID, a.TeacherID,
		a.TotalClasses, a.AttendedClasses, a.AttendancePercent,
		a.PenaltyAmount, a.PenaltyStatus, a.Month, a.Year, a.Semester, time.Now().Unix())
	return err
}

func (s *SQLStore) CountEntered(ctx context.Context, subjectID, academicYear string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM performances WHERE subject_id=$1 AND academic_year=$2`,
		subjectID, academicYear).Scan(&n)
	return n, err
}

func toGradeRisk(grade, risk string) (grading.Grade, grading.Risk) {
	return grading.Grade(grade), grading.Risk(risk)
}
