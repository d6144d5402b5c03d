package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/spas-edu/spas-server/internal/db"
	"github.com/spas-edu/spas-server/internal/directory"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// direct notifications reference real accounts
	dir := directory.NewSQLStore(conn)
	for _, u := range []directory.User{
		{ID: "u1", Username: "u1", Email: "u1@spas.edu", PasswordHash: "x", FullName: "User One", Role: directory.RoleStudent, IsActive: true},
		{ID: "u2", Username: "u2", Email: "u2@spas.edu", PasswordHash: "x", FullName: "User Two", Role: directory.RoleStudent, IsActive: true},
	} {
		if _, err := dir.CreateUser(ctx, u); err != nil {
			t.Fatalf("seed user %s: %v", u.ID, err)
		}
	}
	return NewSQLStore(conn)
}

func TestListForUserUnionsTargets(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.NotifyUser(ctx, "u1", "Marks saved", "CS0101 marks are in", TypeMarks); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.NotifyRole(ctx, "student", "Exam schedule", "Internal 1 timetable is out", TypeExam); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.NotifyAll(ctx, "Holiday", "College closed Monday", TypeInfo); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.NotifyUser(ctx, "u2", "Private", "Not for u1", TypeInfo); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ListFor(ctx, "u1", "student", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d notifications, want 3 (direct + role + global)", len(got))
	}
	for _, n := range got {
		if n.UserID == "u2" {
			t.Errorf("leaked another user's notification: %+v", n)
		}
	}
}

func TestUnreadAndMarkRead(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	n, err := svc.NotifyUser(ctx, "u1", "Marks saved", "CS0101 marks are in", TypeMarks)
	if err != nil {
		t.Fatal(err)
	}
	count, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("unread = %d, want 1", count)
	}

	// another user cannot mark it read
	if err := svc.MarkRead(ctx, n.ID, "u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign mark-read err = %v, want ErrNotFound", err)
	}
	if err := svc.MarkRead(ctx, n.ID, "u1"); err != nil {
		t.Fatal(err)
	}
	count, err = svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unread after read = %d, want 0", count)
	}
}

func TestPublishValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.NotifyUser(ctx, "", "t", "m", TypeInfo); err == nil {
		t.Error("expected error for missing user id")
	}
	if _, err := svc.NotifyAll(ctx, "", "m", TypeInfo); err == nil {
		t.Error("expected error for missing title")
	}
	n, err := svc.NotifyAll(ctx, "t", "m", "")
	if err != nil {
		t.Fatal(err)
	}
	if n.Type != TypeInfo {
		t.Errorf("type = %s, want default %s", n.Type, TypeInfo)
	}
}
