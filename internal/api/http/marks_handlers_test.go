package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spas-edu/spas-server/internal/marks"
)

func TestCalculateHandler(t *testing.T) {
	h := CalculateHandler(marks.NewService(nil, nil, nil))

	body := `{"total_classes":50,"attended_classes":40,"internal1":60,"internal2":55,"assignment":8,"seminar":7}`
	req := httptest.NewRequest(http.MethodPost, "/marks/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		DisplayTotal string `json:"display_total"`
		DisplayFinal string `json:"display_final"`
		Grade        string `json:"grade"`
		Risk         string `json:"risk"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.DisplayTotal != "130" || resp.DisplayFinal != "16" || resp.Grade != "A" || resp.Risk != "Safe" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCalculateHandlerInvalidEntry(t *testing.T) {
	h := CalculateHandler(marks.NewService(nil, nil, nil))

	// attended above total: derived values become ERR markers, not a 4xx
	body := `{"total_classes":50,"attended_classes":55,"internal1":60,"internal2":55,"assignment":8,"seminar":7}`
	req := httptest.NewRequest(http.MethodPost, "/marks/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		DisplayTotal string `json:"display_total"`
		DisplayFinal string `json:"display_final"`
		Derived      struct {
			Valid       bool `json:"valid"`
			SubmitFinal int  `json:"submit_final"`
		} `json:"derived"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Derived.Valid || resp.DisplayTotal != "ERR" || resp.DisplayFinal != "ERR" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Derived.SubmitFinal != 0 {
		t.Errorf("submit_final = %d, want 0", resp.Derived.SubmitFinal)
	}
}

func TestCalculateHandlerBadJSON(t *testing.T) {
	h := CalculateHandler(marks.NewService(nil, nil, nil))
	req := httptest.NewRequest(http.MethodPost, "/marks/calculate", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
