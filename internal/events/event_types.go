package events

import (
	"time"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSaleRecorded     EventType = "sale_recorded"
	EventPaymentRecorded  EventType = "payment_recorded"
	EventRequestSubmitted EventType = "request_submitted"
	EventRequestApproved  EventType = "request_approved"
	EventRequestRejected  EventType = "request_rejected"
	EventUserChanged      EventType = "user_changed"
	EventUserDeleted      EventType = "user_deleted"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LedgerPayload accompanies sale and payment events.
type LedgerPayload struct {
	Transaction domain.Transaction `json:"transaction"`
	User        domain.User        `json:"user"`
}

// RequestPayload accompanies request lifecycle events. User is the requester
// after the transition.
type RequestPayload struct {
	Request domain.SystemRequest `json:"request"`
	User    domain.User          `json:"user"`
}

// UserPayload accompanies user_changed. Deleted users carry only the id.
type UserPayload struct {
	User domain.User `json:"user"`
}
