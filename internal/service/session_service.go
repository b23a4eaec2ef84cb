package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/auth"
	"github.com/spec-kit/farm-portal/internal/config"
	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/repository"
)

// Session is one signed-in view of the portal. It keeps a copy of the
// current user, never a reference into the directory; the copy is refreshed
// through user events.
type Session struct {
	id       string
	users    repository.UserRepository
	remember repository.SessionRepository
	logger   *zap.Logger
	digits   int

	mu        sync.Mutex
	challenge string
	current   *domain.User
	lastSeen  time.Time
}

func newSession(id string, users repository.UserRepository, remember repository.SessionRepository, logger *zap.Logger, digits int) *Session {
	s := &Session{
		id:       id,
		users:    users,
		remember: remember,
		logger:   logger,
		digits:   digits,
		lastSeen: time.Now(),
	}
	s.challenge = auth.NewChallenge(digits)
	return s
}

// ID identifies the session.
func (s *Session) ID() string { return s.id }

// Challenge returns the code the login form must echo back.
func (s *Session) Challenge() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challenge
}

// RegenerateChallenge replaces the challenge and returns the new one.
func (s *Session) RegenerateChallenge() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenge = auth.NewChallenge(s.digits)
	return s.challenge
}

// Login checks the challenge first, then the credentials. The identifier is
// compared with username and email ignoring case, the password exactly. Any
// failure regenerates the challenge.
func (s *Session) Login(ctx context.Context, identifier, password, code string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if strings.TrimSpace(code) != s.challenge {
		s.challenge = auth.NewChallenge(s.digits)
		return domain.User{}, domain.ErrChallengeMismatch
	}

	var (
		user  domain.User
		found bool
	)
	for _, candidate := range s.users.FindByIdentifier(identifier) {
		if candidate.Password == password {
			user, found = candidate, true
			break
		}
	}
	s.challenge = auth.NewChallenge(s.digits)
	if !found {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	s.signIn(ctx, user)
	return user.Clone(), nil
}

// Logout clears the current user and the remembered session.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.challenge = auth.NewChallenge(s.digits)
	return s.remember.ForgetSession(ctx)
}

// Resume signs in the remembered user without credentials, provided the
// remembered id still names an account.
func (s *Session) Resume(ctx context.Context) (domain.User, error) {
	id, ok, err := s.remember.RememberedSession(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("no remembered session: %w", domain.ErrNotFound)
	}
	return s.ResumeUser(ctx, id)
}

// ResumeUser signs in userID without credentials if the account exists.
func (s *Session) ResumeUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.User(userID)
	if err != nil {
		return domain.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.signIn(ctx, user)
	return user.Clone(), nil
}

// attach makes user current without remembering it, for a session resumed
// from its bearer token.
func (s *Session) attach(user domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	u := user.Clone()
	s.current = &u
	return u.Clone()
}

// signIn requires s.mu held.
func (s *Session) signIn(ctx context.Context, user domain.User) {
	u := user.Clone()
	s.current = &u
	if err := s.remember.RememberSession(ctx, user.ID); err != nil {
		s.logger.Warn("remember session", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// Current returns a copy of the signed-in user.
func (s *Session) Current() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.User{}, false
	}
	return s.current.Clone(), true
}

func (s *Session) refresh(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == user.ID {
		u := user.Clone()
		s.current = &u
	}
}

func (s *Session) drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == userID {
		s.current = nil
	}
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == nil && s.lastSeen.Before(cutoff)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// SessionManager tracks the sessions of every connected client and issues
// their bearer tokens.
type SessionManager struct {
	users    repository.UserRepository
	remember repository.SessionRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
	digits   int

	mu       sync.RWMutex
	sessions map[string]*Session
	ended    map[string]time.Time
}

// SessionDependencies wires the session manager.
type SessionDependencies struct {
	Users    repository.UserRepository
	Remember repository.SessionRepository
	Tokens   *auth.TokenManager
	Logger   *zap.Logger
}

// NewSessionManager builds the manager.
func NewSessionManager(cfg config.AuthConfig, deps SessionDependencies) *SessionManager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		users:    deps.Users,
		remember: deps.Remember,
		tokens:   deps.Tokens,
		logger:   logger,
		digits:   cfg.ChallengeDigits,
		sessions: make(map[string]*Session),
		ended:    make(map[string]time.Time),
	}
}

// RegisterHandlers keeps session copies in step with directory changes.
func (m *SessionManager) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventUserChanged, m.handleUserChanged)
	dispatcher.Subscribe(events.EventUserDeleted, m.handleUserDeleted)
}

func (m *SessionManager) handleUserChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserPayload)
	if !ok {
		return fmt.Errorf("user_changed: unexpected payload %T", event.Payload)
	}
	for _, s := range m.all() {
		s.refresh(payload.User)
	}
	return nil
}

func (m *SessionManager) handleUserDeleted(_ context.Context, event events.Event) error {
	for _, s := range m.all() {
		s.drop(event.UserID)
	}
	return nil
}

func (m *SessionManager) all() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Open starts a fresh, signed-out session.
func (m *SessionManager) Open() *Session {
	return m.openWithID(uuid.NewString())
}

func (m *SessionManager) openWithID(id string) *Session {
	s := newSession(id, m.users, m.remember, m.logger, m.digits)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *SessionManager) lookup(id string) (*Session, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// Login signs in on session sessionID and issues a token for it.
func (m *SessionManager) Login(ctx context.Context, sessionID, identifier, password, code string) (domain.User, domain.Token, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return domain.User{}, domain.Token{}, err
	}
	user, err := s.Login(ctx, identifier, password, code)
	if err != nil {
		m.logger.Info("login failed", zap.String("session_id", sessionID), zap.Error(err))
		return domain.User{}, domain.Token{}, err
	}
	tok, err := m.tokens.GenerateToken(s.ID(), user)
	if err != nil {
		return domain.User{}, domain.Token{}, err
	}
	m.logger.Info("login", zap.String("session_id", sessionID), zap.String("user_id", user.ID))
	return user, tok, nil
}

// Resume signs the remembered user in on sessionID and issues a token.
func (m *SessionManager) Resume(ctx context.Context, sessionID string) (domain.User, domain.Token, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return domain.User{}, domain.Token{}, err
	}
	user, err := s.Resume(ctx)
	if err != nil {
		return domain.User{}, domain.Token{}, err
	}
	tok, err := m.tokens.GenerateToken(s.ID(), user)
	if err != nil {
		return domain.User{}, domain.Token{}, err
	}
	return user, tok, nil
}

// Logout signs the session out and forgets it. The session id is recorded
// as ended in the store until its tokens expire, so it cannot be resumed
// after a restart either.
func (m *SessionManager) Logout(ctx context.Context, sessionID string) error {
	s, err := m.lookup(sessionID)
	if err != nil {
		return err
	}
	now := time.Now()
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.ended[sessionID] = now
	m.mu.Unlock()
	m.logger.Info("logout", zap.String("session_id", sessionID))

	endErr := m.remember.EndSession(ctx, sessionID, now.Add(m.tokens.TTL()))
	if endErr != nil {
		m.logger.Error("persist ended session", zap.String("session_id", sessionID), zap.Error(endErr))
	}
	return errors.Join(s.Logout(ctx), endErr)
}

// ResolveSession returns the current user of sessionID. A session unknown to
// this process, for instance after a restart, is re-attached to userID as
// long as that account still exists. A session that was signed out stays
// signed out, here or in an earlier run. Re-attaching leaves the remembered
// session untouched.
func (m *SessionManager) ResolveSession(ctx context.Context, sessionID, userID string) (domain.User, error) {
	m.mu.RLock()
	_, ended := m.ended[sessionID]
	m.mu.RUnlock()
	if ended {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if s, ok := m.Get(sessionID); ok {
		s.touch()
		user, signedIn := s.Current()
		if !signedIn || user.ID != userID {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return user, nil
	}

	ended, err := m.remember.SessionEnded(ctx, sessionID)
	if err != nil {
		return domain.User{}, err
	}
	if ended {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	user, err := m.users.User(userID)
	if err != nil {
		return domain.User{}, err
	}
	return m.openWithID(sessionID).attach(user), nil
}

// Sweep forgets signed-out sessions idle for longer than maxIdle and reports
// how many were removed. Logged-out ids are kept until their tokens expire.
func (m *SessionManager) Sweep(maxIdle time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, at := range m.ended {
		if now.Sub(at) > m.tokens.TTL() {
			delete(m.ended, id)
		}
	}
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RequestPasswordReset acknowledges a reset request. The answer is the same
// whether or not an account uses email.
func (m *SessionManager) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("email required: %w", domain.ErrInvalidInput)
	}
	matched := false
	for _, u := range m.users.FindByIdentifier(email) {
		if strings.EqualFold(u.Email, email) {
			matched = true
			break
		}
	}
	m.logger.Info("password reset requested", zap.Bool("account_found", matched))
	return nil
}

var _ auth.SessionResolver = (*SessionManager)(nil)
