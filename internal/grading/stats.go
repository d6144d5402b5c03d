package grading

import "fmt"

// RowStat is the slice of a performance record the batch analyzer needs.
type RowStat struct {
	Final             int
	AttendancePercent int
	Risk              Risk
}

// BatchStats summarizes risk distribution across a set of rows, for
// department dashboards and risk-level reports.
type BatchStats struct {
	Total         int     `json:"total"`
	Critical      int     `json:"critical"`
	Average       int     `json:"average"`
	Safe          int     `json:"safe"`
	Best          int     `json:"best"`
	AvgMarks      float64 `json:"avg_marks"`
	AvgAttendance int     `json:"avg_attendance"`
}

// Analyze tallies risk buckets and averages over the given rows.
func Analyze(rows []RowStat) BatchStats {
	s := BatchStats{Total: len(rows)}
	if len(rows) == 0 {
		return s
	}
	var marks, attendance int
	for _, r := range rows {
		marks += r.Final
		attendance += r.AttendancePercent
		switch r.Risk {
		case RiskCritical:
			s.Critical++
		case RiskAverage:
			s.Average++
		case RiskBest:
			s.Best++
		default:
			s.Safe++
		}
	}
	s.AvgMarks = roundTo1(float64(marks) / float64(len(rows)))
	s.AvgAttendance = roundHalfUp(float64(attendance) / float64(len(rows)))
	return s
}

// Suggestion tells a student what the next grade boundary costs.
func Suggestion(final int) string {
	switch {
	case final >= 18:
		return "Excellent performance! Keep it up!"
	case final >= 15:
		return fmt.Sprintf("Need %d more marks to reach A+ grade.", 18-final)
	case final >= 12:
		return fmt.Sprintf("Need %d marks for A grade, %d for A+.", 15-final, 18-final)
	case final >= 10:
		return fmt.Sprintf("Need %d marks to reach B grade.", 12-final)
	default:
		return fmt.Sprintf("CRITICAL: Need %d marks to pass. Immediate attention required!", 10-final)
	}
}

func roundTo1(v float64) float64 { return float64(roundHalfUp(v*10)) / 10 }
