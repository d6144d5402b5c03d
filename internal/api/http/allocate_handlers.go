package http

import (
	"net/http"

	"github.com/spas-edu/spas-server/internal/allocate"
	"github.com/spas-edu/spas-server/internal/rbac"
)

type allocateReq struct {
	DepartmentID string `json:"department_id" validate:"required"`
}

// POST /allocations/assign
func AssignSubjectsHandler(alloc *allocate.Allocator, year func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req allocateReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "department_id required")
			return
		}
		res, err := alloc.Assign(r.Context(), req.DepartmentID, year())
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /allocations/reset
func ResetAllocationsHandler(alloc *allocate.Allocator, year func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req allocateReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "department_id required")
			return
		}
		n, err := alloc.Reset(r.Context(), req.DepartmentID, year())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "reset allocations")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"deactivated": n})
	}
}

// GET /allocations?department_id=...
func ListAllocationsHandler(store allocate.Store, year func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deptID := r.URL.Query().Get("department_id")
		if deptID == "" {
			writeError(w, http.StatusBadRequest, "department_id required")
			return
		}
		as, err := store.ListActive(r.Context(), deptID, year())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load allocations")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"assignments": as})
	}
}

// GET /me/subjects
//
// A teacher's own active assignments for the running year.
func MySubjectsHandler(store allocate.Store, year func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := rbac.IdentityFromContext(r.Context())
		as, err := store.ListForTeacher(r.Context(), id.UserID, year())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load assignments")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"assignments": as})
	}
}
