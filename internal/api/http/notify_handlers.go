package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spas-edu/spas-server/internal/notify"
	"github.com/spas-edu/spas-server/internal/rbac"
)

type publishReq struct {
	UserID     string `json:"user_id"`
	TargetRole string `json:"target_role" validate:"omitempty,oneof=student teacher hod coordinator principal"`
	Title      string `json:"title" validate:"required,max=200"`
	Message    string `json:"message" validate:"required,max=2000"`
	Type       string `json:"type" validate:"omitempty,oneof=info warning exam marks"`
}

// POST /notifications
func PublishNotificationHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publishReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad notification payload: "+err.Error())
			return
		}
		var (
			n   notify.Notification
			err error
		)
		switch {
		case req.UserID != "":
			n, err = svc.NotifyUser(r.Context(), req.UserID, req.Title, req.Message, req.Type)
		case req.TargetRole != "":
			n, err = svc.NotifyRole(r.Context(), req.TargetRole, req.Title, req.Message, req.Type)
		default:
			n, err = svc.NotifyAll(r.Context(), req.Title, req.Message, req.Type)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "publish notification")
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

// GET /notifications?limit=N
func ListNotificationsHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := rbac.IdentityFromContext(r.Context())
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		ns, err := svc.ListFor(r.Context(), id.UserID, id.Role, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load notifications")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notifications": ns})
	}
}

// GET /notifications/unread
func UnreadCountHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := rbac.IdentityFromContext(r.Context())
		n, err := svc.UnreadCount(r.Context(), id.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "unread count")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"unread": n})
	}
}

// POST /notifications/{notificationID}/read
func MarkReadHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := rbac.IdentityFromContext(r.Context())
		err := svc.MarkRead(r.Context(), chi.URLParam(r, "notificationID"), id.UserID)
		if err != nil {
			if errors.Is(err, notify.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no such notification")
				return
			}
			writeError(w, http.StatusInternalServerError, "mark read")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
