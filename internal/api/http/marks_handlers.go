package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spas-edu/spas-server/internal/directory"
	"github.com/spas-edu/spas-server/internal/grading"
	"github.com/spas-edu/spas-server/internal/marks"
	"github.com/spas-edu/spas-server/internal/rbac"
)

type saveMarksReq struct {
	StudentID string `json:"student_id"`
	grading.MarkEntry
}

// POST /subjects/{subjectID}/marks
func SaveMarksHandler(svc *marks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := chi.URLParam(r, "subjectID")
		teacherID := rbac.IdentityFromContext(r.Context()).UserID
		var req saveMarksReq
		// plain decode: mark domains are checked by the service so the
		// response can carry every violation at once
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad marks payload: "+err.Error())
			return
		}
		if req.StudentID == "" {
			writeError(w, http.StatusBadRequest, "student_id required")
			return
		}
		p, err := svc.Save(r.Context(), teacherID, subjectID, req.StudentID, req.MarkEntry)
		if err != nil {
			var inv *marks.InvalidMarksError
			switch {
			case errors.As(err, &inv):
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":      "invalid marks",
					"violations": inv.Errors,
				})
			case errors.Is(err, marks.ErrNotAssigned):
				writeError(w, http.StatusForbidden, "subject not assigned to you")
			default:
				writeError(w, http.StatusInternalServerError, "save marks")
			}
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type bulkMarksReq struct {
	Rows []marks.RowInput `json:"rows"`
}

// POST /subjects/{subjectID}/marks/bulk
func BulkSaveMarksHandler(svc *marks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := chi.URLParam(r, "subjectID")
		teacherID := rbac.IdentityFromContext(r.Context()).UserID
		var req bulkMarksReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad rows payload: "+err.Error())
			return
		}
		if len(req.Rows) == 0 {
			writeError(w, http.StatusBadRequest, "rows required")
			return
		}
		results, err := svc.BulkSave(r.Context(), teacherID, subjectID, req.Rows)
		if err != nil {
			if errors.Is(err, marks.ErrNotAssigned) {
				writeError(w, http.StatusForbidden, "subject not assigned to you")
				return
			}
			writeError(w, http.StatusInternalServerError, "bulk save")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

// POST /marks/calculate
//
// Stateless: derives the row exactly as save would, without touching
// the database. Invalid entries come back with the violation list and
// ERR display markers rather than an HTTP error.
func CalculateHandler(svc *marks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry grading.MarkEntry
		// plain decode: out-of-domain values go through Compute and come
		// back as violations with ERR markers, not as an HTTP error
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			writeError(w, http.StatusBadRequest, "bad marks payload: "+err.Error())
			return
		}
		d := svc.Calculate(entry)
		writeJSON(w, http.StatusOK, map[string]any{
			"derived":       d,
			"display_total": d.DisplayTotal(),
			"display_final": d.DisplayFinal(),
			"grade":         d.GradeBadge(),
			"risk":          d.RiskBadge(),
		})
	}
}

// GET /subjects/{subjectID}/results
func ResultsHandler(svc *marks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Results(r.Context(), chi.URLParam(r, "subjectID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load results")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": rows})
	}
}

// GET /subjects/{subjectID}/results/export
func ExportResultsHandler(svc *marks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := chi.URLParam(r, "subjectID")
		rows, err := svc.Results(r.Context(), subjectID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load results")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="results_%s.csv"`, subjectID))
		if err := marks.WriteCSV(w, rows); err != nil {
			// headers are gone; nothing sensible left to send
			return
		}
	}
}

// GET /subjects/{subjectID}/progress
func ProgressHandler(svc *marks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Progress(r.Context(), chi.URLParam(r, "subjectID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "entry progress")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /me/performance
//
// Students see their own rows; the student record is resolved from the
// authenticated account.
func MyPerformanceHandler(svc *marks.Service, students *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := rbac.IdentityFromContext(r.Context())
		st, err := students.GetStudentByUser(r.Context(), id.UserID)
		if err != nil {
			writeError(w, http.StatusNotFound, "no student record for this account")
			return
		}
		perfs, err := svc.StudentPerformance(r.Context(), st.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "student performance")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"student":      st,
			"performances": perfs,
		})
	}
}

// GET /students/{studentID}/performance
func StudentPerformanceHandler(svc *marks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		perfs, err := svc.StudentPerformance(r.Context(), chi.URLParam(r, "studentID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "student performance")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"performances": perfs})
	}
}

// OwnsStudentRecord reports whether the authenticated account belongs
// to the student named in the route.
func OwnsStudentRecord(students *directory.SQLStore) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		id := rbac.IdentityFromContext(r.Context())
		if id.UserID == "" {
			return false
		}
		st, err := students.GetStudent(r.Context(), chi.URLParam(r, "studentID"))
		if err != nil {
			return false
		}
		return st.UserID != "" && st.UserID == id.UserID
	}
}
