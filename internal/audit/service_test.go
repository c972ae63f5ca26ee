package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestService_AppendRequiresTypeAndSubject(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Email: "a@example.com"}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{Type: EventTypeLoginFailed}); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.Events()) != 0 {
		t.Fatalf("invalid events must not be stored")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	o := Origin{IP: "1.2.3.4", RequestID: "req-1"}

	if err := svc.LogLoginSucceeded(context.Background(), 42, "a@example.com", o); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogLoginFailed(context.Background(), "b@example.com", "invalid credentials", o); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].IPAddress != "1.2.3.4" || evs[0].RequestID != "req-1" {
		t.Fatalf("expected origin captured")
	}
	if evs[0].Type != EventTypeLoginSucceeded || evs[0].UserID != 42 {
		t.Fatalf("expected login_succeeded for user 42, got %+v", evs[0])
	}
	if evs[1].Type != EventTypeLoginFailed || evs[1].UserID != 0 || evs[1].Message != "invalid credentials" {
		t.Fatalf("unexpected failed login event: %+v", evs[1])
	}
	if evs[0].ID == "" || evs[0].ID == evs[1].ID {
		t.Fatalf("expected distinct ids")
	}
	if evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at set")
	}
}

func TestService_NilIsNotConfigured(t *testing.T) {
	var svc *Service
	if err := svc.LogRegistered(context.Background(), 1, "a@example.com", Origin{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresRepo_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO auth_events").
		WithArgs("ev-1", "login_failed", nil, "a@example.com", "1.2.3.4", "req-1", "invalid credentials", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepo(db)
	err = repo.Append(context.Background(), Event{
		ID:        "ev-1",
		Type:      EventTypeLoginFailed,
		Email:     "a@example.com",
		IPAddress: "1.2.3.4",
		RequestID: "req-1",
		Message:   "invalid credentials",
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMemoryRepo_Lookups(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	o := Origin{IP: "1.2.3.4"}

	steps := []error{
		svc.LogRegistered(ctx, 1, "a@example.com", o),
		svc.LogLoginFailed(ctx, "a@example.com", "invalid credentials", o),
		svc.LogLoginFailed(ctx, "a@example.com", "throttled", o),
		svc.LogLoginFailed(ctx, "b@example.com", "invalid credentials", o),
		svc.LogLoginSucceeded(ctx, 1, "a@example.com", o),
		svc.LogPasswordReset(ctx, 2, "b@example.com", o),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if got := repo.FailedLogins("a@example.com"); got != 2 {
		t.Fatalf("expected 2 failed logins for a, got %d", got)
	}
	user1 := repo.ForUser(1)
	if len(user1) != 2 || user1[0].Type != EventTypeRegistered || user1[1].Type != EventTypeLoginSucceeded {
		t.Fatalf("unexpected events for user 1: %+v", user1)
	}
	if got := repo.ForUser(0); len(got) != 0 {
		t.Fatalf("anonymous events must not match user 0, got %d", len(got))
	}
	if got := repo.OfType(EventTypePasswordReset); len(got) != 1 || got[0].UserID != 2 {
		t.Fatalf("unexpected password_reset events: %+v", got)
	}
	if got := len(repo.Events()); got != 6 {
		t.Fatalf("expected 6 events, got %d", got)
	}
}
