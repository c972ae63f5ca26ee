package audit

import (
	"context"
	"sync"
)

// MemoryRepo keeps auth events in process memory, in append order.
// Tests and local runs without Postgres use it.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of every event.
func (r *MemoryRepo) Events() []Event {
	return r.filter(func(Event) bool { return true })
}

// OfType returns the events of type t, oldest first.
func (r *MemoryRepo) OfType(t EventType) []Event {
	return r.filter(func(e Event) bool { return e.Type == t })
}

// ForUser returns the events tied to userID, oldest first.
func (r *MemoryRepo) ForUser(userID int64) []Event {
	return r.filter(func(e Event) bool { return userID != 0 && e.UserID == userID })
}

// FailedLogins counts login_failed events recorded for email.
func (r *MemoryRepo) FailedLogins(email string) int {
	return len(r.filter(func(e Event) bool {
		return e.Type == EventTypeLoginFailed && e.Email == email
	}))
}

func (r *MemoryRepo) filter(keep func(Event) bool) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
