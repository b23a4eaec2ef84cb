package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/repository"
)

const dateLayout = "2006-01-02"

// publisher fans domain events out synchronously, so subscribers such as
// session copies are up to date before the publishing call returns.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func newPublisher(dispatcher events.Dispatcher, logger *zap.Logger) publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return publisher{dispatcher: dispatcher, logger: logger}
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (p publisher) userChanged(ctx context.Context, actor domain.User, user domain.User) {
	p.publishEvent(ctx, events.Event{
		Type:    events.EventUserChanged,
		UserID:  user.ID,
		Actor:   actorOf(actor),
		Payload: events.UserPayload{User: user.Clone()},
	})
}

func actorOf(u domain.User) events.Actor {
	return events.Actor{UserID: u.ID, Role: u.Role}
}

// requireAdmin checks the actor's role as currently stored, not the copy the
// caller holds.
func requireAdmin(s *repository.Snapshot, actor domain.User) error {
	current, ok := s.User(actor.ID)
	if !ok || !current.IsAdmin() {
		return fmt.Errorf("admin role required: %w", domain.ErrForbidden)
	}
	return nil
}

func requireAdminView(dir *repository.Directory, actor domain.User) error {
	var err error
	dir.View(func(s *repository.Snapshot) { err = requireAdmin(s, actor) })
	return err
}

func requireCustomer(s *repository.Snapshot, actor domain.User) (*domain.User, error) {
	current, ok := s.User(actor.ID)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", actor.ID, domain.ErrNotFound)
	}
	if current.IsAdmin() {
		return nil, fmt.Errorf("customer account required: %w", domain.ErrForbidden)
	}
	return current, nil
}
