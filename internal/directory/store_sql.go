package directory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("directory: not found")
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateDepartment(ctx context.Context, d Department) (Department, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO departments (id,code,name,created_at) VALUES ($1,$2,$3,$4)`,
		d.ID, d.Code, d.Name, time.Now().Unix())
	return d, err
}

func (s *SQLStore) GetDepartment(ctx context.Context, id string) (Department, error) {
	var d Department
	err := s.db.QueryRowContext(ctx,
		`SELECT id,code,name FROM departments WHERE id=$1`, id).
		Scan(&d.ID, &d.Code, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Department{}, ErrNotFound
	}
	return d, err
}

func (s *SQLStore) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,code,name FROM departments ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Code, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,username,email,password_hash,full_name,role,department_id,is_active,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.Role,
		nullable(u.DepartmentID), u.IsActive, time.Now().Unix())
	return u, err
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	var dept sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,full_name,role,department_id,is_active
		 FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &dept, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	u.DepartmentID = dept.String
	return u, err
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	var dept sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,full_name,role,department_id,is_active
		 FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &dept, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	u.DepartmentID = dept.String
	return u, err
}

func (s *SQLStore) SetPassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTeachers returns active teachers of a department, stable by name.
func (s *SQLStore) ListTeachers(ctx context.Context, departmentID string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,username,email,password_hash,full_name,role,department_id,is_active
		 FROM users WHERE role=$1 AND department_id=$2 AND is_active=$3 ORDER BY full_name`,
		RoleTeacher, departmentID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *SQLStore) CreateSubject(ctx context.Context, sub Subject) (Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Credits == 0 {
		sub.Credits = 3
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subjects (id,code,name,credits,department_id,semester,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sub.ID, sub.Code, sub.Name, sub.Credits, sub.DepartmentID, sub.Semester, time.Now().Unix())
	return sub, err
}

func (s *SQLStore) GetSubject(ctx context.Context, id string) (Subject, error) {
	var sub Subject
	err := s.db.QueryRowContext(ctx,
		`SELECT id,code,name,credits,department_id,semester FROM subjects WHERE id=$1`, id).
		Scan(&sub.ID, &sub.Code, &sub.Name, &sub.Credits, &sub.DepartmentID, &sub.Semester)
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, ErrNotFound
	}
	return sub, err
}

// ListSubjects filters by department and, when semesters is non-empty,
// by semester membership.
func (s *SQLStore) ListSubjects(ctx context.Context, departmentID string, semesters ...int) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,code,name,credits,department_id,semester
		 FROM subjects WHERE department_id=$1 ORDER BY semester, code`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	want := make(map[int]bool, len(semesters))
	for _, sem := range semesters {
		want[sem] = true
	}
	var out []Subject
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Code, &sub.Name, &sub.Credits, &sub.DepartmentID, &sub.Semester); err != nil {
			return nil, err
		}
		if len(want) > 0 && !want[sub.Semester] {
			continue
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateStudent(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.CurrentSemester == 0 {
		st.CurrentSemester = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id,registration_number,name,email,user_id,department_id,current_semester,batch_year,is_active,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		st.ID, st.RegistrationNumber, st.Name, st.Email, nullable(st.UserID),
		st.DepartmentID, st.CurrentSemester, st.BatchYear, st.IsActive, time.Now().Unix())
	return st, err
}

func (s *SQLStore) GetStudent(ctx context.Context, id string) (Student, error) {
	var st Student
	var userID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id,registration_number,name,email,user_id,department_id,current_semester,batch_year,is_active
		 FROM students WHERE id=$1`, id).
		Scan(&st.ID, &st.RegistrationNumber, &st.Name, &st.Email, &userID,
			&st.DepartmentID, &st.CurrentSemester, &st.BatchYear, &st.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	st.UserID = userID.String
	return st, err
}

func (s *SQLStore) GetStudentByUser(ctx context.Context, userID string) (Student, error) {
	var st Student
	var uid sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id,registration_number,name,email,user_id,department_id,current_semester,batch_year,is_active
		 FROM students WHERE user_id=$1`, userID).
		Scan(&st.ID, &st.RegistrationNumber, &st.Name, &st.Email, &uid,
			&st.DepartmentID, &st.CurrentSemester, &st.BatchYear, &st.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	st.UserID = uid.String
	return st, err
}

// ListStudentsForSubject returns the active students who sit a subject:
// same department, current semester equal to the subject's semester,
// ordered by registration number so seating is deterministic.
func (s *SQLStore) ListStudentsForSubject(ctx context.Context, subjectID string) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT st.id,st.registration_number,st.name,st.email,st.user_id,st.department_id,st.current_semester,st.batch_year,st.is_active
		 FROM students st
		 JOIN subjects sub ON sub.department_id = st.department_id AND sub.semester = st.current_semester
		 WHERE sub.id=$1 AND st.is_active=$2
		 ORDER BY st.registration_number`, subjectID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Student
	for rows.Next() {
		var st Student
		var uid sql.NullString
		if err := rows.Scan(&st.ID, &st.RegistrationNumber, &st.Name, &st.Email, &uid,
			&st.DepartmentID, &st.CurrentSemester, &st.BatchYear, &st.IsActive); err != nil {
			return nil, err
		}
		st.UserID = uid.String
		out = append(out, st)
	}
	return out, rows.Err()
}

// CountStudents is used to derive the next registration sequence.
func (s *SQLStore) CountStudents(ctx context.Context, departmentID string, batchYear int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE department_id=$1 AND batch_year=$2`,
		departmentID, batchYear).Scan(&n)
	return n, err
}

func scanUsers(rows *sql.Rows) ([]User, error) {
	var out []User
	for rows.Next() {
		var u User
		var dept sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
			&u.Role, &dept, &u.IsActive); err != nil {
			return nil, err
		}
		u.DepartmentID = dept.String
		out = append(out, u)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
