package dashboard

import (
	"context"
	"database/sql"

	"github.com/spas-edu/spas-server/internal/grading"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) RiskRows(ctx context.Context, departmentID, academicYear string) ([]grading.RowStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.final, p.attendance_percent, p.risk
		 FROM performances p
		 JOIN students st ON st.id = p.student_id
		 WHERE st.department_id=$1 AND p.academic_year=$2`,
		departmentID, academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []grading.RowStat
	for rows.Next() {
		var r grading.RowStat
		var risk string
		if err := rows.Scan(&r.Final, &r.AttendancePercent, &risk); err != nil {
			return nil, err
		}
		r.Risk = grading.Risk(risk)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountStudents(ctx context.Context, departmentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE department_id=$1`, departmentID).Scan(&n)
	return n, err
}

func (s *SQLStore) DepartmentIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM departments ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
