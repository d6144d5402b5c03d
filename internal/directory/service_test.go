package directory

import (
	"context"
	"testing"
	"time"

	"github.com/spas-edu/spas-server/internal/db"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	store := NewSQLStore(conn)
	dept, err := store.CreateDepartment(ctx, Department{Code: "CS", Name: "Computer Science"})
	if err != nil {
		t.Fatalf("seed department: %v", err)
	}
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2025, time.September, 15, 10, 0, 0, 0, time.UTC) }
	return svc, dept.ID
}

func TestEnrollStudentSequencesRegistrationNumbers(t *testing.T) {
	svc, deptID := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnrollStudent(ctx, EnrollStudentInput{
		Name: "Asha", Email: "asha@spas.edu", DepartmentID: deptID,
		BatchYear: 2025, Semester: 1,
	})
	if err != nil {
		t.Fatalf("enroll first: %v", err)
	}
	if first.RegistrationNumber != "CS2025001" {
		t.Errorf("first reg = %s, want CS2025001", first.RegistrationNumber)
	}
	second, err := svc.EnrollStudent(ctx, EnrollStudentInput{
		Name: "Ravi", Email: "ravi@spas.edu", DepartmentID: deptID,
		BatchYear: 2025, Semester: 1,
	})
	if err != nil {
		t.Fatalf("enroll second: %v", err)
	}
	if second.RegistrationNumber != "CS2025002" {
		t.Errorf("second reg = %s, want CS2025002", second.RegistrationNumber)
	}
}

func TestEnrollStudentDerivesBatchYear(t *testing.T) {
	svc, deptID := newTestService(t)

	// September 2025 is academic year 2025-2026; a semester-5 student
	// is in study year 3 and so entered in 2023.
	st, err := svc.EnrollStudent(context.Background(), EnrollStudentInput{
		Name: "Meena", Email: "meena@spas.edu", DepartmentID: deptID, Semester: 5,
	})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if st.BatchYear != 2023 {
		t.Errorf("batch year = %d, want 2023", st.BatchYear)
	}
	if st.RegistrationNumber != "CS2023001" {
		t.Errorf("reg = %s, want CS2023001", st.RegistrationNumber)
	}
}

func TestEnrollStudentCreatesAccount(t *testing.T) {
	svc, deptID := newTestService(t)
	ctx := context.Background()

	st, err := svc.EnrollStudent(ctx, EnrollStudentInput{
		Name: "Asha", Email: "asha@spas.edu", DepartmentID: deptID,
		BatchYear: 2025, Semester: 1, PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if st.UserID == "" {
		t.Fatal("expected a login account")
	}
	u, err := svc.store.GetUser(ctx, st.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Username != st.RegistrationNumber || u.Role != RoleStudent {
		t.Errorf("account = %+v, want username %s role student", u, st.RegistrationNumber)
	}
}
