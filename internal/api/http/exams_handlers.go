package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spas-edu/spas-server/internal/directory"
	"github.com/spas-edu/spas-server/internal/exams"
	"github.com/spas-edu/spas-server/internal/rbac"
)

type generateTimetableReq struct {
	DepartmentID string `json:"department_id" validate:"required"`
	ExamType     string `json:"exam_type" validate:"required,oneof=Internal1 Internal2 Semester"`
	Semesters    []int  `json:"semesters" validate:"required,min=1,dive,min=1,max=8"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	DurationMin  int    `json:"duration_min" validate:"omitempty,min=30,max=360"`
}

// POST /exams/timetable/generate
//
// Returns a plan; nothing is persisted until /confirm receives it back.
func GenerateTimetableHandler(svc *exams.Service, defaultDuration int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateTimetableReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad timetable request: "+err.Error())
			return
		}
		start, _ := time.Parse("2006-01-02", req.StartDate)
		dur := req.DurationMin
		if dur == 0 {
			dur = defaultDuration
		}
		plan, err := svc.GenerateTimetable(r.Context(), req.DepartmentID, req.ExamType, req.Semesters, start, dur)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
	}
}

type confirmTimetableReq struct {
	Plan []exams.TimetableEntry `json:"plan" validate:"required,min=1"`
}

// POST /exams/timetable/confirm
func ConfirmTimetableHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmTimetableReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad plan payload: "+err.Error())
			return
		}
		createdBy := rbac.IdentityFromContext(r.Context()).UserID
		entries, err := svc.ConfirmTimetable(r.Context(), createdBy, req.Plan)
		if err != nil {
			var ce *exams.ConflictError
			if errors.As(err, &ce) {
				writeJSON(w, http.StatusConflict, map[string]any{
					"error":     "timetable conflicts",
					"conflicts": ce.Conflicts,
				})
				return
			}
			writeError(w, http.StatusInternalServerError, "confirm timetable")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entries": entries})
	}
}

// POST /exams/timetable/{entryID}/approve
func ApproveTimetableHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "entryID")
		if err := svc.Approve(r.Context(), id); err != nil {
			if errors.Is(err, exams.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no such entry")
				return
			}
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": exams.StatusApproved})
	}
}

// GET /exams/timetable?department_id=...&status=...
func ListTimetableHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deptID := r.URL.Query().Get("department_id")
		if deptID == "" {
			writeError(w, http.StatusBadRequest, "department_id required")
			return
		}
		entries, err := svc.Timetable(r.Context(), deptID, r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load timetable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

// POST /exams/timetable/{entryID}/seating/generate
func GenerateSeatingHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seats, err := svc.GenerateSeating(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			if errors.Is(err, exams.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no such entry")
				return
			}
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"seats": seats})
	}
}

type confirmSeatingReq struct {
	Seats []exams.SeatAssignment `json:"seats" validate:"required,min=1"`
}

// POST /exams/timetable/{entryID}/seating/confirm
func ConfirmSeatingHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmSeatingReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad seating payload: "+err.Error())
			return
		}
		if err := svc.ConfirmSeating(r.Context(), req.Seats); err != nil {
			writeError(w, http.StatusInternalServerError, "confirm seating")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	}
}

// GET /exams/timetable/{entryID}/seating
func ListSeatingHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seats, err := svc.Seating(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load seating")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"seats": seats})
	}
}

// POST /exams/timetable/{entryID}/invigilation/generate
func GenerateInvigilationHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		duties, err := svc.GenerateInvigilation(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			if errors.Is(err, exams.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no such entry")
				return
			}
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"duties": duties})
	}
}

type confirmInvigilationReq struct {
	Duties []exams.InvigilatorDuty `json:"duties" validate:"required,min=1"`
}

// POST /exams/timetable/{entryID}/invigilation/confirm
func ConfirmInvigilationHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmInvigilationReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad duties payload: "+err.Error())
			return
		}
		if err := svc.ConfirmInvigilation(r.Context(), req.Duties); err != nil {
			writeError(w, http.StatusInternalServerError, "confirm invigilation")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	}
}

// GET /exams/timetable/{entryID}/invigilation
func ListInvigilationHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		duties, err := svc.Duties(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load duties")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"duties": duties})
	}
}

// GET /me/hallticket/{entryID}
func HallTicketHandler(svc *exams.Service, students *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := rbac.IdentityFromContext(r.Context())
		st, err := students.GetStudentByUser(r.Context(), id.UserID)
		if err != nil {
			writeError(w, http.StatusNotFound, "no student record for this account")
			return
		}
		ticket, err := svc.HallTicketFor(r.Context(), chi.URLParam(r, "entryID"), st.ID)
		if err != nil {
			if errors.Is(err, exams.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no seat for this exam")
				return
			}
			writeError(w, http.StatusInternalServerError, "hall ticket")
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	}
}

type createRoomReq struct {
	Block    string `json:"block" validate:"required"`
	Number   string `json:"number" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=500"`
}

// POST /exams/rooms
func CreateRoomHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad room payload: "+err.Error())
			return
		}
		room, err := svc.AddRoom(r.Context(), exams.Room{
			Block: req.Block, Number: req.Number, Capacity: req.Capacity,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "create room")
			return
		}
		writeJSON(w, http.StatusCreated, room)
	}
}

// GET /exams/rooms
func ListRoomsHandler(svc *exams.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := svc.Rooms(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load rooms")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
	}
}
