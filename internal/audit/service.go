package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only: there are no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records authentication events.
// Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.UserID == 0 && e.Email == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) LogRegistered(ctx context.Context, userID int64, email string, o Origin) error {
	return s.Append(ctx, Event{
		Type:      EventTypeRegistered,
		UserID:    userID,
		Email:     email,
		IPAddress: o.IP,
		RequestID: o.RequestID,
		Message:   "account registered",
	})
}

func (s *Service) LogLoginSucceeded(ctx context.Context, userID int64, email string, o Origin) error {
	return s.Append(ctx, Event{
		Type:      EventTypeLoginSucceeded,
		UserID:    userID,
		Email:     email,
		IPAddress: o.IP,
		RequestID: o.RequestID,
		Message:   "login succeeded",
	})
}

// LogLoginFailed records a rejected login; reason is stored as the message.
func (s *Service) LogLoginFailed(ctx context.Context, email, reason string, o Origin) error {
	return s.Append(ctx, Event{
		Type:      EventTypeLoginFailed,
		Email:     email,
		IPAddress: o.IP,
		RequestID: o.RequestID,
		Message:   reason,
	})
}

func (s *Service) LogPasswordReset(ctx context.Context, userID int64, email string, o Origin) error {
	return s.Append(ctx, Event{
		Type:      EventTypePasswordReset,
		UserID:    userID,
		Email:     email,
		IPAddress: o.IP,
		RequestID: o.RequestID,
		Message:   "password reset",
	})
}
