package directory

import (
	"testing"
	"time"
)

func TestFormatRegistrationNumber(t *testing.T) {
	if got := FormatRegistrationNumber("CS", 2025, 1); got != "CS2025001" {
		t.Errorf("got %q, want CS2025001", got)
	}
	if got := FormatRegistrationNumber("EN", 2024, 123); got != "EN2024123" {
		t.Errorf("got %q, want EN2024123", got)
	}
}

func TestAcademicYearAt(t *testing.T) {
	tests := []struct {
		when string
		want string
	}{
		{"2025-06-01", "2025-2026"},
		{"2025-12-31", "2025-2026"},
		{"2026-01-15", "2025-2026"},
		{"2026-05-30", "2025-2026"},
		{"2026-06-01", "2026-2027"},
	}
	for _, tt := range tests {
		at, err := time.Parse("2006-01-02", tt.when)
		if err != nil {
			t.Fatal(err)
		}
		if got := AcademicYearAt(at); got != tt.want {
			t.Errorf("AcademicYearAt(%s) = %s, want %s", tt.when, got, tt.want)
		}
	}
}

func TestSemesterMapping(t *testing.T) {
	if got := SemesterNumber(1, true); got != 1 {
		t.Errorf("year 1 odd = %d, want 1", got)
	}
	if got := SemesterNumber(3, false); got != 6 {
		t.Errorf("year 3 even = %d, want 6", got)
	}
	for sem := 1; sem <= 8; sem++ {
		want := (sem + 1) / 2
		if got := YearOfSemester(sem); got != want {
			t.Errorf("YearOfSemester(%d) = %d, want %d", sem, got, want)
		}
	}
}
