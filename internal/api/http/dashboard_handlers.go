package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spas-edu/spas-server/internal/dashboard"
)

// GET /dashboard/departments/{departmentID}
func DepartmentDashboardHandler(svc *dashboard.Service, year func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov, err := svc.Department(r.Context(), chi.URLParam(r, "departmentID"), year())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "department dashboard")
			return
		}
		writeJSON(w, http.StatusOK, ov)
	}
}

// GET /dashboard/college
func CollegeDashboardHandler(svc *dashboard.Service, year func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		col, err := svc.College(r.Context(), year())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "college dashboard")
			return
		}
		writeJSON(w, http.StatusOK, col)
	}
}
