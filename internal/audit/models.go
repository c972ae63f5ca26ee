package audit

import "time"

// Event is an immutable, append-only record of an authentication event.
//
// Invariants:
// - Events are never updated or deleted (auth_events rejects UPDATE/DELETE).
// - ip and request id capture are best-effort; audit failures never block login.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// UserID is zero when the event could not be tied to an account
	// (e.g. a failed login for an unknown email).
	UserID int64  `json:"user_id,omitempty" db:"user_id"`
	Email  string `json:"email,omitempty" db:"email"`

	// IPAddress is the client IP as resolved by gin.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`
	RequestID string `json:"request_id,omitempty" db:"request_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeRegistered     EventType = "registered"
	EventTypeLoginSucceeded EventType = "login_succeeded"
	EventTypeLoginFailed    EventType = "login_failed"
	EventTypePasswordReset  EventType = "password_reset"
)

// Origin describes where a request came from.
type Origin struct {
	IP        string
	RequestID string
}
