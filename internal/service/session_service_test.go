package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/farm-portal/internal/auth"
	"github.com/spec-kit/farm-portal/internal/config"
	"github.com/spec-kit/farm-portal/internal/domain"
)

func TestLoginChecksChallengeFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.sessions.Open()

	code := s.Challenge()
	require.Len(t, code, 5)

	_, err := s.Login(ctx, "admin", "1111", "00000")
	assert.ErrorIs(t, err, domain.ErrChallengeMismatch)
	assert.NotEqual(t, "", s.Challenge())

	stale := code
	for s.Challenge() == stale {
		s.RegenerateChallenge()
	}
	_, err = s.Login(ctx, "admin", "1111", stale)
	assert.ErrorIs(t, err, domain.ErrChallengeMismatch)

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestLoginCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.sessions.Open()

	before := s.Challenge()
	_, err := s.Login(ctx, "admin", "WRONG", before)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody", "1111", s.Challenge())
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = s.Login(ctx, "2222@gmail.com", "2222 ", s.Challenge())
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	user, err := s.Login(ctx, "  1111@MAIL.COM ", "1111", " "+s.Challenge()+" ")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservedAdminID, user.ID)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, user, current)

	remembered, ok, err := f.dir.RememberedSession(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.ReservedAdminID, remembered)
}

func TestLogoutAndResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tab := f.login(t, "customer user", "2222")

	next := f.sessions.Open()
	resumed, err := next.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCustomerID, resumed.ID)

	require.NoError(t, tab.Logout(ctx))
	_, ok := tab.Current()
	assert.False(t, ok)

	_, err = f.sessions.Open().Resume(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResumeRequiresExistingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "2222@gmail.com", "2222")

	require.NoError(t, f.users.Delete(ctx, f.admin, f.customer.ID))

	_, err := f.sessions.Open().Resume(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletedUserIsSignedOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tab := f.login(t, "2222@gmail.com", "2222")

	require.NoError(t, f.users.Delete(ctx, f.admin, f.customer.ID))

	_, ok := tab.Current()
	assert.False(t, ok)
	_, err := f.sessions.ResolveSession(ctx, tab.ID(), f.customer.ID)
	assert.Error(t, err)
}

func TestManagerLoginIssuesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.sessions.Open()

	_, _, err := f.sessions.Login(ctx, "missing-session", "admin", "1111", s.Challenge())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	user, tok, err := f.sessions.Login(ctx, s.ID(), "admin", "1111", s.Challenge())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), tok.SessionID)
	assert.Equal(t, user.ID, tok.UserID)
	assert.Equal(t, domain.RoleAdmin, tok.Role)

	resolved, err := f.sessions.ResolveSession(ctx, s.ID(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = f.sessions.ResolveSession(ctx, s.ID(), f.customer.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResolveSessionAfterRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.sessions.ResolveSession(ctx, "tab-from-before", f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, f.customer.ID, user.ID)

	s, ok := f.sessions.Get("tab-from-before")
	require.True(t, ok)
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, f.customer.ID, current.ID)

	_, err = f.sessions.ResolveSession(ctx, "another-tab", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoggedOutSessionStaysOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.sessions.Open()

	_, _, err := f.sessions.Login(ctx, s.ID(), "admin", "1111", s.Challenge())
	require.NoError(t, err)
	require.NoError(t, f.sessions.Logout(ctx, s.ID()))

	_, ok := f.sessions.Get(s.ID())
	assert.False(t, ok)
	_, err = f.sessions.ResolveSession(ctx, s.ID(), domain.ReservedAdminID)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	assert.ErrorIs(t, f.sessions.Logout(ctx, s.ID()), domain.ErrNotFound)
}

func TestLoggedOutSessionStaysOutAfterRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.sessions.Open()

	_, _, err := f.sessions.Login(ctx, s.ID(), "admin", "1111", s.Challenge())
	require.NoError(t, err)
	require.NoError(t, f.sessions.Logout(ctx, s.ID()))

	restarted := NewSessionManager(config.AuthConfig{ChallengeDigits: 5}, SessionDependencies{
		Users:    f.dir,
		Remember: f.dir,
		Tokens:   auth.NewTokenManager("test-secret", 60),
	})
	_, err = restarted.ResolveSession(ctx, s.ID(), domain.ReservedAdminID)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, ok := restarted.Get(s.ID())
	assert.False(t, ok)
}

func TestReattachKeepsRememberedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "2222@gmail.com", "2222")

	_, err := f.sessions.ResolveSession(ctx, "tab-from-before", f.admin.ID)
	require.NoError(t, err)

	id, ok, err := f.dir.RememberedSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.customer.ID, id)
}

func TestSweepDropsIdleSignedOutSessions(t *testing.T) {
	f := newFixture(t)
	idle := f.sessions.Open()
	signedIn := f.login(t, "admin", "1111")

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, f.sessions.Sweep(time.Millisecond))

	_, ok := f.sessions.Get(idle.ID())
	assert.False(t, ok)
	_, ok = f.sessions.Get(signedIn.ID())
	assert.True(t, ok)
}

func TestRequestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.sessions.RequestPasswordReset(ctx, "2222@gmail.com"))
	assert.NoError(t, f.sessions.RequestPasswordReset(ctx, "nobody@farm.test"))
	assert.ErrorIs(t, f.sessions.RequestPasswordReset(ctx, "  "), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.sessions.RequestPasswordReset(ctx, "not-an-email"), domain.ErrInvalidInput)
}
