package repository

import (
	"strings"
	"time"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// Snapshot is the working copy of the four canonical collections handed to
// Directory.Update. Slices are kept in insertion order.
type Snapshot struct {
	Users        []domain.User
	Orders       []domain.Order
	Transactions []domain.Transaction
	Requests     []domain.SystemRequest

	now func() time.Time
}

func (s *Snapshot) clone() *Snapshot {
	out := &Snapshot{
		Users:        make([]domain.User, len(s.Users)),
		Orders:       append([]domain.Order(nil), s.Orders...),
		Transactions: append([]domain.Transaction(nil), s.Transactions...),
		Requests:     append([]domain.SystemRequest(nil), s.Requests...),
		now:          s.now,
	}
	for i, u := range s.Users {
		out.Users[i] = u.Clone()
	}
	return out
}

// User returns a pointer into the snapshot for in-place mutation.
func (s *Snapshot) User(id string) (*domain.User, bool) {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i], true
		}
	}
	return nil, false
}

// UserByEmail finds a user by email, ignoring case.
func (s *Snapshot) UserByEmail(email string) (*domain.User, bool) {
	for i := range s.Users {
		if email != "" && strings.EqualFold(s.Users[i].Email, email) {
			return &s.Users[i], true
		}
	}
	return nil, false
}

// RemoveUser drops the user with id and reports whether it existed.
func (s *Snapshot) RemoveUser(id string) bool {
	for i := range s.Users {
		if s.Users[i].ID == id {
			s.Users = append(s.Users[:i], s.Users[i+1:]...)
			return true
		}
	}
	return false
}

// Order returns a pointer into the snapshot for in-place mutation.
func (s *Snapshot) Order(id string) (*domain.Order, bool) {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return &s.Orders[i], true
		}
	}
	return nil, false
}

// Request returns a pointer into the snapshot for in-place mutation.
func (s *Snapshot) Request(id string) (*domain.SystemRequest, bool) {
	for i := range s.Requests {
		if s.Requests[i].ID == id {
			return &s.Requests[i], true
		}
	}
	return nil, false
}

func (s *Snapshot) hasTransaction(id string) bool {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return true
		}
	}
	return false
}

// Now is the directory clock.
func (s *Snapshot) Now() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Snapshot) millis() int64 {
	return s.Now().UnixMilli()
}

// NewUserID returns an unused user id.
func (s *Snapshot) NewUserID() string {
	return uniqueID("", s.millis(), func(id string) bool { _, ok := s.User(id); return ok })
}

// NewTransactionID returns an unused transaction id.
func (s *Snapshot) NewTransactionID() string {
	return uniqueID("TX-", s.millis(), s.hasTransaction)
}

// NewOrderID returns an id unused by both orders and requests, since an order
// request shares its order's id.
func (s *Snapshot) NewOrderID() string {
	return uniqueID("ORD-", s.millis(), func(id string) bool {
		_, order := s.Order(id)
		_, req := s.Request(id)
		return order || req
	})
}

// NewRequestID returns an unused request id.
func (s *Snapshot) NewRequestID() string {
	return uniqueID("REQ-", s.millis(), func(id string) bool { _, ok := s.Request(id); return ok })
}
