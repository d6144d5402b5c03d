package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:spas.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/spas?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates all tables when missing. Exported so tests can
// run it against an in-memory sqlite handle.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS departments (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  department_id TEXT REFERENCES departments(id),
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  credits INTEGER NOT NULL DEFAULT 3,
  department_id TEXT NOT NULL REFERENCES departments(id),
  semester INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  registration_number TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  user_id TEXT REFERENCES users(id),
  department_id TEXT NOT NULL REFERENCES departments(id),
  current_semester INTEGER NOT NULL DEFAULT 1,
  batch_year INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS teacher_subjects (
  id TEXT PRIMARY KEY,
  teacher_id TEXT NOT NULL REFERENCES users(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  academic_year TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL,
  UNIQUE (subject_id, academic_year)
);

CREATE TABLE IF NOT EXISTS performances (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  academic_year TEXT NOT NULL,
  total_classes INTEGER NOT NULL DEFAULT 0,
  attended_classes INTEGER NOT NULL DEFAULT 0,
  attendance_percent INTEGER NOT NULL DEFAULT 0,
  internal1 INTEGER NOT NULL DEFAULT 0,
  internal2 INTEGER NOT NULL DEFAULT 0,
  assignment INTEGER NOT NULL DEFAULT 0,
  seminar INTEGER NOT NULL DEFAULT 0,
  total INTEGER NOT NULL DEFAULT 0,
  final INTEGER NOT NULL DEFAULT 0,
  grade TEXT NOT NULL DEFAULT '',
  risk TEXT NOT NULL DEFAULT '',
  semester INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE (student_id, subject_id, academic_year)
);

CREATE TABLE IF NOT EXISTS attendance (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  teacher_id TEXT NOT NULL REFERENCES users(id),
  total_classes INTEGER NOT NULL DEFAULT 0,
  attended_classes INTEGER NOT NULL DEFAULT 0,
  attendance_percent INTEGER NOT NULL DEFAULT 0,
  penalty_amount INTEGER NOT NULL DEFAULT 0,
  penalty_status TEXT NOT NULL DEFAULT 'No Penalty',
  month INTEGER NOT NULL,
  year INTEGER NOT NULL,
  semester INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE (student_id, subject_id, month, year)
);

CREATE TABLE IF NOT EXISTS rooms (
  id TEXT PRIMARY KEY,
  block TEXT NOT NULL,
  number TEXT NOT NULL,
  capacity INTEGER NOT NULL,
  UNIQUE (block, number)
);

CREATE TABLE IF NOT EXISTS exam_timetables (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  department_id TEXT NOT NULL REFERENCES departments(id),
  exam_type TEXT NOT NULL,
  exam_date TEXT NOT NULL,
  session TEXT NOT NULL,
  duration_min INTEGER NOT NULL DEFAULT 180,
  status TEXT NOT NULL DEFAULT 'Pending',
  created_by TEXT NOT NULL REFERENCES users(id),
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS room_allocations (
  id TEXT PRIMARY KEY,
  timetable_id TEXT NOT NULL REFERENCES exam_timetables(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES students(id),
  block TEXT NOT NULL,
  room_number TEXT NOT NULL,
  seat INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE (timetable_id, student_id)
);

CREATE TABLE IF NOT EXISTS invigilator_assignments (
  id TEXT PRIMARY KEY,
  timetable_id TEXT NOT NULL REFERENCES exam_timetables(id) ON DELETE CASCADE,
  teacher_id TEXT NOT NULL REFERENCES users(id),
  block TEXT NOT NULL,
  room_number TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE (timetable_id, room_number)
);

CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT REFERENCES users(id),
  target_role TEXT,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  typ TEXT NOT NULL DEFAULT 'info',
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT,
  role TEXT,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS departments (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  department_id TEXT REFERENCES departments(id),
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  credits INTEGER NOT NULL DEFAULT 3,
  department_id TEXT NOT NULL REFERENCES departments(id),
  semester INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  registration_number TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  user_id TEXT REFERENCES users(id),
  department_id TEXT NOT NULL REFERENCES departments(id),
  current_semester INTEGER NOT NULL DEFAULT 1,
  batch_year INTEGER NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS teacher_subjects (
  id TEXT PRIMARY KEY,
  teacher_id TEXT NOT NULL REFERENCES users(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  academic_year TEXT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at BIGINT NOT NULL,
  UNIQUE (subject_id, academic_year)
);

CREATE TABLE IF NOT EXISTS performances (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  academic_year TEXT NOT NULL,
  total_classes INTEGER NOT NULL DEFAULT 0,
  attended_classes INTEGER NOT NULL DEFAULT 0,
  attendance_percent INTEGER NOT NULL DEFAULT 0,
  internal1 INTEGER NOT NULL DEFAULT 0,
  internal2 INTEGER NOT NULL DEFAULT 0,
  assignment INTEGER NOT NULL DEFAULT 0,
  seminar INTEGER NOT NULL DEFAULT 0,
  total INTEGER NOT NULL DEFAULT 0,
  final INTEGER NOT NULL DEFAULT 0,
  grade TEXT NOT NULL DEFAULT '',
  risk TEXT NOT NULL DEFAULT '',
  semester INTEGER NOT NULL,
  updated_at BIGINT NOT NULL,
  UNIQUE (student_id, subject_id, academic_year)
);

CREATE TABLE IF NOT EXISTS attendance (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES students(id),
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  teacher_id TEXT NOT NULL REFERENCES users(id),
  total_classes INTEGER NOT NULL DEFAULT 0,
  attended_classes INTEGER NOT NULL DEFAULT 0,
  attendance_percent INTEGER NOT NULL DEFAULT 0,
  penalty_amount INTEGER NOT NULL DEFAULT 0,
  penalty_status TEXT NOT NULL DEFAULT 'No Penalty',
  month INTEGER NOT NULL,
  year INTEGER NOT NULL,
  semester INTEGER NOT NULL,
  updated_at BIGINT NOT NULL,
  UNIQUE (student_id, subject_id, month, year)
);

CREATE TABLE IF NOT EXISTS rooms (
  id TEXT PRIMARY KEY,
  block TEXT NOT NULL,
  number TEXT NOT NULL,
  capacity INTEGER NOT NULL,
  UNIQUE (block, number)
);

CREATE TABLE IF NOT EXISTS exam_timetables (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL REFERENCES subjects(id),
  department_id TEXT NOT NULL REFERENCES departments(id),
  exam_type TEXT NOT NULL,
  exam_date TEXT NOT NULL,
  session TEXT NOT NULL,
  duration_min INTEGER NOT NULL DEFAULT 180,
  status TEXT NOT NULL DEFAULT 'Pending',
  created_by TEXT NOT NULL REFERENCES users(id),
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS room_allocations (
  id TEXT PRIMARY KEY,
  timetable_id TEXT NOT NULL REFERENCES exam_timetables(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES students(id),
  block TEXT NOT NULL,
  room_number TEXT NOT NULL,
  seat INTEGER NOT NULL,
  created_at BIGINT NOT NULL,
  UNIQUE (timetable_id, student_id)
);

CREATE TABLE IF NOT EXISTS invigilator_assignments (
  id TEXT PRIMARY KEY,
  timetable_id TEXT NOT NULL REFERENCES exam_timetables(id) ON DELETE CASCADE,
  teacher_id TEXT NOT NULL REFERENCES users(id),
  block TEXT NOT NULL,
  room_number TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  UNIQUE (timetable_id, room_number)
);

CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT REFERENCES users(id),
  target_role TEXT,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  typ TEXT NOT NULL DEFAULT 'info',
  is_read BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT,
  role TEXT,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
