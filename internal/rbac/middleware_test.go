package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func ownerRequest(role string, owner bool) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/students/st-1/performance", nil)
	if owner {
		r.URL.RawQuery = "owner=1"
	}
	return r.WithContext(WithIdentity(r.Context(), Identity{UserID: "u1", Role: role}))
}

func TestRequireOwnerOr(t *testing.T) {
	h := RequireOwnerOr("results:view", func(r *http.Request) bool {
		return r.URL.Query().Get("owner") == "1"
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name  string
		role  string
		owner bool
		want  int
	}{
		{"owner without permission", "student", true, http.StatusNoContent},
		{"staff with permission", "hod", false, http.StatusNoContent},
		{"neither owner nor permitted", "student", false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, ownerRequest(tt.role, tt.owner))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRejectsMissingIdentity(t *testing.T) {
	h := Require("results:view")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
