package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/auth"
	"github.com/spec-kit/farm-portal/internal/config"
	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/persistence"
	"github.com/spec-kit/farm-portal/internal/repository"
)

type fixture struct {
	kv        *persistence.MemoryKV
	dir       *repository.Directory
	ledger    *LedgerService
	approvals *ApprovalService
	users     *UserService
	sessions  *SessionManager
	published []events.Event
	admin     domain.User
	customer  domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{kv: persistence.NewMemoryKV(nil)}
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	dir, err := repository.Open(context.Background(), f.kv, zap.NewNop(),
		repository.WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	f.dir = dir

	dispatcher := events.NewInMemoryDispatcher()
	for _, typ := range []events.EventType{
		events.EventSaleRecorded, events.EventPaymentRecorded, events.EventRequestSubmitted,
		events.EventRequestApproved, events.EventRequestRejected, events.EventUserChanged, events.EventUserDeleted,
	} {
		dispatcher.Subscribe(typ, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}

	f.ledger = NewLedgerService(LedgerDependencies{Directory: dir, Dispatcher: dispatcher})
	f.approvals = NewApprovalService(ApprovalDependencies{Directory: dir, Dispatcher: dispatcher})
	f.users = NewUserService(UserDependencies{Directory: dir, Dispatcher: dispatcher})
	f.sessions = NewSessionManager(config.AuthConfig{ChallengeDigits: 5}, SessionDependencies{
		Users:    dir,
		Remember: dir,
		Tokens:   auth.NewTokenManager("test-secret", 60),
	})
	f.sessions.RegisterHandlers(dispatcher)

	f.admin, err = dir.User(domain.ReservedAdminID)
	require.NoError(t, err)
	f.customer, err = dir.User(domain.DefaultCustomerID)
	require.NoError(t, err)
	return f
}

// login signs identifier in on a fresh session.
func (f *fixture) login(t *testing.T, identifier, password string) *Session {
	t.Helper()
	s := f.sessions.Open()
	_, err := s.Login(context.Background(), identifier, password, s.Challenge())
	require.NoError(t, err)
	return s
}

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func sp(s string) *string { return &s }
