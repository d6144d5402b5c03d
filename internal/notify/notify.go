package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Notification kinds, used by clients to pick an icon.
const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeExam    = "exam"
	TypeMarks   = "marks"
)

// Notification targets exactly one of: a user (UserID set), a role
// (TargetRole set), or everyone (neither set).
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	TargetRole string    `json:"target_role,omitempty"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Service publishes and reads notifications.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// NotifyUser sends a direct notification.
func (s *Service) NotifyUser(ctx context.Context, userID, title, message, typ string) (Notification, error) {
	if userID == "" {
		return Notification{}, fmt.Errorf("notify: user id required")
	}
	return s.publish(ctx, Notification{UserID: userID, Title: title, Message: message, Type: typ})
}

// NotifyRole broadcasts to every user holding a role.
func (s *Service) NotifyRole(ctx context.Context, role, title, message, typ string) (Notification, error) {
	if role == "" {
		return Notification{}, fmt.Errorf("notify: role required")
	}
	return s.publish(ctx, Notification{TargetRole: role, Title: title, Message: message, Type: typ})
}

// NotifyAll broadcasts to everyone.
func (s *Service) NotifyAll(ctx context.Context, title, message, typ string) (Notification, error) {
	return s.publish(ctx, Notification{Title: title, Message: message, Type: typ})
}

func (s *Service) publish(ctx context.Context, n Notification) (Notification, error) {
	if n.Title == "" || n.Message == "" {
		return Notification{}, fmt.Errorf("notify: title and message required")
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}
	out, err := s.store.Create(ctx, n)
	if err != nil {
		return Notification{}, fmt.Errorf("create notification: %w", err)
	}
	log.Info().
		Str("notification_id", out.ID).
		Str("target_role", out.TargetRole).
		Str("type", out.Type).
		Msg("notification published")
	return out, nil
}

// ListFor returns the notifications visible to a user: direct ones plus
// role and global broadcasts, newest first.
func (s *Service) ListFor(ctx context.Context, userID, role string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListForUser(ctx, userID, role, limit)
}

// UnreadCount counts a user's unread direct notifications. Broadcasts
// carry no per-user read state and are excluded.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

// MarkRead flags a direct notification read. Only the addressee may do
// so.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.store.MarkRead(ctx, id, userID)
}
