package marks

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"Reg No", "Name", "Semester", "Internal 1", "Internal 2",
	"Assignment", "Seminar", "Attendance %", "Total", "Final Marks", "Grade", "Risk",
}

// WriteCSV streams a subject's results in the layout the results page
// offers for download.
func WriteCSV(w io.Writer, rows []ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.RegistrationNumber,
			r.StudentName,
			strconv.Itoa(r.Semester),
			strconv.Itoa(r.Internal1),
			strconv.Itoa(r.Internal2),
			strconv.Itoa(r.Assignment),
			strconv.Itoa(r.Seminar),
			strconv.Itoa(r.AttendancePercent),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Final),
			string(r.Grade),
			string(r.Risk),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
