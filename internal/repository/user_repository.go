package repository

import (
	"context"
	"time"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// UserRepository is the user-facing slice of the directory needed by
// authentication and user management.
type UserRepository interface {
	Users() []domain.User
	User(id string) (domain.User, error)
	FindByIdentifier(identifier string) []domain.User
	AddUser(ctx context.Context, u domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error)
	DeleteUser(ctx context.Context, callerID, targetID string) error
}

// SessionRepository remembers the signed-in user and the signed-out sessions
// between restarts.
type SessionRepository interface {
	RememberSession(ctx context.Context, userID string) error
	ForgetSession(ctx context.Context) error
	RememberedSession(ctx context.Context) (string, bool, error)
	EndSession(ctx context.Context, sessionID string, until time.Time) error
	SessionEnded(ctx context.Context, sessionID string) (bool, error)
}

var (
	_ UserRepository    = (*Directory)(nil)
	_ SessionRepository = (*Directory)(nil)
)
