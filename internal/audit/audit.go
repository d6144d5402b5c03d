package audit

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spas-edu/spas-server/internal/rbac"
)

// Event is one recorded action. Type is "METHOD path" for HTTP-sourced
// events; Key identifies the actor.
type Event struct {
	Offset    int64  `json:"offset"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	CreatedAt int64  `json:"created_at"`
}

type Recorder struct{ db *sql.DB }

func NewRecorder(db *sql.DB) *Recorder { return &Recorder{db: db} }

func (r *Recorder) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, role, typ, key, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.UserID, e.Role, e.Type, e.Key, time.Now().Unix())
	return err
}

func (r *Recorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, role, typ, key, created_at
		 FROM audit_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.UserID, &e.Role, &e.Type, &e.Key, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Middleware records every mutating request by the authenticated
// caller. Reads are not logged. Failures to append never block the
// request.
func Middleware(rec *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				id := rbac.IdentityFromContext(r.Context())
				e := Event{
					UserID: id.UserID,
					Role:   id.Role,
					Type:   r.Method + " " + r.URL.Path,
					Key:    id.UserID,
				}
				if err := rec.Append(r.Context(), e); err != nil {
					log.Warn().Err(err).Str("type", e.Type).Msg("audit append failed")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
