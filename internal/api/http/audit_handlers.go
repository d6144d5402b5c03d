package http

import (
	"net/http"
	"strconv"

	"github.com/spas-edu/spas-server/internal/audit"
)

// GET /audit?limit=N
func AuditTrailHandler(rec *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := rec.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load audit trail")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}
