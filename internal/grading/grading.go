package grading

import (
	"fmt"
	"math"
)

// Grade is the letter grade derived from the 20-point final score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
)

// Risk is the early-intervention category combining attendance and marks.
type Risk string

const (
	RiskCritical Risk = "Critical"
	RiskAverage  Risk = "Average"
	RiskSafe     Risk = "Safe"
	RiskBest     Risk = "Best"
)

// Raw mark domains. Internals are scored out of 70, assignment and
// seminar out of 10, so the raw total is out of 160 and the final
// internal score is normalized to 20.
const (
	InternalMax   = 70
	AssignmentMax = 10
	SeminarMax    = 10
	TotalMax      = 2*InternalMax + AssignmentMax + SeminarMax
	FinalMax      = 20
)

// MarkEntry is one student's raw marks row for a subject. The validate
// tags mirror Validate for request DTOs that embed this struct; the
// package-level checks are authoritative.
type MarkEntry struct {
	TotalClasses    int `json:"total_classes" validate:"min=0"`
	AttendedClasses int `json:"attended_classes" validate:"min=0,ltefield=TotalClasses"`
	Internal1       int `json:"internal1" validate:"min=0,max=70"`
	Internal2       int `json:"internal2" validate:"min=0,max=70"`
	Assignment      int `json:"assignment" validate:"min=0,max=10"`
	Seminar         int `json:"seminar" validate:"min=0,max=10"`
}

// FieldError names an input field that violated its domain.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Reason }

// Derived holds everything computed from a MarkEntry. When Valid is
// false no derived value is meaningful and SubmitFinal is forced to 0
// so an invalid row can never submit a stale score.
type Derived struct {
	Valid             bool         `json:"valid"`
	Errors            []FieldError `json:"errors,omitempty"`
	AttendancePercent int          `json:"attendance_percent"`
	Total             int          `json:"total"`
	Final             int          `json:"final"`
	Grade             Grade        `json:"grade,omitempty"`
	Risk              Risk         `json:"risk,omitempty"`
	SubmitFinal       int          `json:"submit_final"`
}

// Validate collects every domain violation; it never stops at the
// first one so a caller can flag all offending fields at once.
func Validate(e MarkEntry) []FieldError {
	var errs []FieldError
	if e.TotalClasses < 0 {
		errs = append(errs, FieldError{"total_classes", "must not be negative"})
	}
	if e.AttendedClasses < 0 {
		errs = append(errs, FieldError{"attended_classes", "must not be negative"})
	} else if e.AttendedClasses > e.TotalClasses && e.TotalClasses >= 0 {
		errs = append(errs, FieldError{"attended_classes", "cannot exceed total classes"})
	}
	for _, c := range []struct {
		field string
		v     int
		max   int
	}{
		{"internal1", e.Internal1, InternalMax},
		{"internal2", e.Internal2, InternalMax},
		{"assignment", e.Assignment, AssignmentMax},
		{"seminar", e.Seminar, SeminarMax},
	} {
		if c.v < 0 || c.v > c.max {
			errs = append(errs, FieldError{c.field, fmt.Sprintf("must be between 0 and %d", c.max)})
		}
	}
	return errs
}

// Compute derives attendance percentage, total, final score, grade and
// risk from a raw row. It is pure: no I/O, no shared state, and it
// never panics on bad input. An entry with any out-of-domain field
// yields a zero Derived with Valid=false and the full violation list.
func Compute(e MarkEntry) Derived {
	if errs := Validate(e); len(errs) > 0 {
		return Derived{Valid: false, Errors: errs}
	}

	pct := 0
	if e.TotalClasses > 0 {
		pct = roundHalfUp(100 * float64(e.AttendedClasses) / float64(e.TotalClasses))
	}
	total := e.Internal1 + e.Internal2 + e.Assignment + e.Seminar
	final := roundHalfUp(float64(FinalMax) * float64(total) / float64(TotalMax))

	return Derived{
		Valid:             true,
		AttendancePercent: pct,
		Total:             total,
		Final:             final,
		Grade:             GradeFor(final),
		Risk:              RiskFor(final, pct),
		SubmitFinal:       final,
	}
}

// GradeFor maps a final score (out of 20) to a letter grade.
// Thresholds are inclusive lower bounds, checked top-down.
func GradeFor(final int) Grade {
	switch {
	case final >= 18:
		return GradeAPlus
	case final >= 15:
		return GradeA
	case final >= 12:
		return GradeB
	case final >= 10:
		return GradeC
	default:
		return GradeD
	}
}

// RiskFor classifies a student. Low attendance dominates: a perfect
// final score with attendance below 70% is still Critical.
func RiskFor(final, attendancePercent int) Risk {
	switch {
	case attendancePercent < 70 || final < 10:
		return RiskCritical
	case final < 15:
		return RiskAverage
	case final == FinalMax:
		return RiskBest
	default:
		return RiskSafe
	}
}

// Percentage expresses a final score (out of 20) as a percentage.
func Percentage(final int) int {
	return final * 100 / FinalMax
}

// Display markers for invalid rows. A renderer projecting a Derived
// must show these instead of numbers so garbage values are never
// mistaken for scores.
const (
	ErrMarker   = "ERR"
	Placeholder = "--"
)

// DisplayTotal renders the total for the results view, or ErrMarker.
func (d Derived) DisplayTotal() string {
	if !d.Valid {
		return ErrMarker
	}
	return fmt.Sprintf("%d", d.Total)
}

// DisplayFinal renders the final score, or ErrMarker.
func (d Derived) DisplayFinal() string {
	if !d.Valid {
		return ErrMarker
	}
	return fmt.Sprintf("%d", d.Final)
}

// GradeBadge renders the grade badge text, or the neutral placeholder.
func (d Derived) GradeBadge() string {
	if !d.Valid {
		return Placeholder
	}
	return string(d.Grade)
}

// RiskBadge renders the risk badge text, or the neutral placeholder.
func (d Derived) RiskBadge() string {
	if !d.Valid {
		return Placeholder
	}
	return string(d.Risk)
}

// roundHalfUp rounds to the nearest integer, ties away from zero.
func roundHalfUp(v float64) int { return int(math.Round(v)) }
