package allocate

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Store persists teacher-subject assignments.
type Store interface {
	ListActive(ctx context.Context, departmentID, academicYear string) ([]Assignment, error)
	ListForTeacher(ctx context.Context, teacherID, academicYear string) ([]Assignment, error)
	BulkInsert(ctx context.Context, assignments []Assignment) error
	DeactivateAll(ctx context.Context, departmentID, academicYear string) (int, error)
	IsAssigned(ctx context.Context, teacherID, subjectID, academicYear string) (bool, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) ListActive(ctx context.Context, departmentID, academicYear string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts.id, ts.teacher_id, ts.subject_id, sub.semester, ts.academic_year, ts.is_active
		 FROM teacher_subjects ts
		 JOIN subjects sub ON sub.id = ts.subject_id
		 WHERE sub.department_id=$1 AND ts.academic_year=$2 AND ts.is_active=$3
		 ORDER BY sub.semester, sub.code`, departmentID, academicYear, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (s *SQLStore) ListForTeacher(ctx context.Context, teacherID, academicYear string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts.id, ts.teacher_id, ts.subject_id, sub.semester, ts.academic_year, ts.is_active
		 FROM teacher_subjects ts
		 JOIN subjects sub ON sub.id = ts.subject_id
		 WHERE ts.teacher_id=$1 AND ts.academic_year=$2 AND ts.is_active=$3
		 ORDER BY sub.semester, sub.code`, teacherID, academicYear, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (s *SQLStore) BulkInsert(ctx context.Context, assignments []Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().Unix()
	for _, a := range assignments {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		// a reset leaves deactivated rows behind, so a re-run must take
		// over the (subject, year) slot instead of colliding with it
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_subjects (id,teacher_id,subject_id,academic_year,is_active,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 ON CONFLICT (subject_id,academic_year) DO UPDATE SET
			   teacher_id=EXCLUDED.teacher_id,
			   is_active=EXCLUDED.is_active,
			   created_at=EXCLUDED.created_at`,
			a.ID, a.TeacherID, a.SubjectID, a.AcademicYear, a.IsActive, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) DeactivateAll(ctx context.Context, departmentID, academicYear string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE teacher_subjects SET is_active=$1
		 WHERE academic_year=$2 AND subject_id IN
		   (SELECT id FROM subjects WHERE department_id=$3)`,
		false, academicYear, departmentID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLStore) IsAssigned(ctx context.Context, teacherID, subjectID, academicYear string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM teacher_subjects
		 WHERE teacher_id=$1 AND subject_id=$2 AND academic_year=$3 AND is_active=$4`,
		teacherID, subjectID, academicYear, true).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func scanAssignments(rows *sql.Rows) ([]Assignment, error) {
	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.SubjectID, &a.Semester, &a.AcademicYear, &a.IsActive); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
