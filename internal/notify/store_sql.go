package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notify: not found")

type Store interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListForUser(ctx context.Context, userID, role string, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id,user_id,target_role,title,message,typ,is_read,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, nullIfEmpty(n.UserID), nullIfEmpty(n.TargetRole),
		n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt.Unix())
	return n, err
}

func (s *SQLStore) ListForUser(ctx context.Context, userID, role string, limit int) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, target_role, title, message, typ, is_read, created_at
		 FROM notifications
		 WHERE user_id=$1 OR target_role=$2 OR (user_id IS NULL AND target_role IS NULL)
		 ORDER BY created_at DESC
		 LIMIT $3`, userID, role, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		var n Notification
		var uid, trole sql.NullString
		var created int64
		if err := rows.Scan(&n.ID, &uid, &trole, &n.Title, &n.Message, &n.Type, &n.IsRead, &created); err != nil {
			return nil, err
		}
		n.UserID = uid.String
		n.TargetRole = trole.String
		n.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND is_read=$2`,
		userID, false).Scan(&n)
	return n, err
}

func (s *SQLStore) MarkRead(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=$1 WHERE id=$2 AND user_id=$3`,
		true, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
