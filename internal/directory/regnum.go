package directory

import (
	"fmt"
	"time"
)

// FormatRegistrationNumber builds a registration number like CS2025001:
// department code, batch year, 3-digit sequence.
func FormatRegistrationNumber(deptCode string, batchYear, sequence int) string {
	return fmt.Sprintf("%s%d%03d", deptCode, batchYear, sequence)
}

// AcademicYearAt returns the academic year string for a moment in time.
// The academic year runs June through April, so May belongs to the year
// that started the previous June.
func AcademicYearAt(t time.Time) string {
	if t.Month() >= time.June {
		return fmt.Sprintf("%d-%d", t.Year(), t.Year()+1)
	}
	return fmt.Sprintf("%d-%d", t.Year()-1, t.Year())
}

// OddSemesterAt reports whether the odd (June-November) term is active.
func OddSemesterAt(t time.Time) bool {
	m := t.Month()
	return m >= time.June && m <= time.November
}

// SemesterNumber maps study year (1-4) and term parity to semester 1-8.
func SemesterNumber(year int, odd bool) int {
	base := (year - 1) * 2
	if odd {
		return base + 1
	}
	return base + 2
}

// YearOfSemester maps semester 1-8 back to study year 1-4.
func YearOfSemester(semester int) int {
	if semester < 1 {
		return 1
	}
	return (semester + 1) / 2
}
