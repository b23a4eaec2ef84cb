package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/repository"
)

// UserService is the admin's account management.
type UserService struct {
	directory *repository.Directory
	publisher
}

// UserDependencies wires the user service.
type UserDependencies struct {
	Directory  *repository.Directory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		directory: deps.Directory,
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// List returns every account.
func (s *UserService) List(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if err := requireAdminView(s.directory, actor); err != nil {
		return nil, err
	}
	return s.directory.Users(), nil
}

// Get returns one account. Customers may only read their own.
func (s *UserService) Get(ctx context.Context, actor domain.User, id string) (domain.User, error) {
	if id != actor.ID {
		if err := requireAdminView(s.directory, actor); err != nil {
			return domain.User{}, err
		}
	}
	return s.directory.User(id)
}

// Create adds an account. New accounts start with a zero balance.
func (s *UserService) Create(ctx context.Context, actor domain.User, u domain.User) (domain.User, error) {
	if err := requireAdminView(s.directory, actor); err != nil {
		return domain.User{}, err
	}
	if (u.MilkLiter != nil && u.MilkLiter.IsNegative()) || (u.MilkPrice != nil && u.MilkPrice.IsNegative()) {
		return domain.User{}, fmt.Errorf("milk quota must not be negative: %w", domain.ErrInvalidAmount)
	}
	u.ID = ""
	u.Balance = decimal.Zero

	created, err := s.directory.AddUser(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user created", zap.String("user_id", created.ID), zap.String("role", string(created.Role)))
	s.userChanged(ctx, actor, created)
	return created, nil
}

// Update applies patch to the account with id directly, bypassing approval.
func (s *UserService) Update(ctx context.Context, actor domain.User, id string, patch domain.UserPatch) (domain.User, error) {
	if err := requireAdminView(s.directory, actor); err != nil {
		return domain.User{}, err
	}
	if (patch.MilkLiter != nil && patch.MilkLiter.IsNegative()) || (patch.MilkPrice != nil && patch.MilkPrice.IsNegative()) {
		return domain.User{}, fmt.Errorf("milk quota must not be negative: %w", domain.ErrInvalidAmount)
	}

	updated, err := s.directory.UpdateUser(ctx, id, patch)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user updated", zap.String("user_id", updated.ID))
	s.userChanged(ctx, actor, updated)
	return updated, nil
}

// Delete removes the account with id. Its transactions, orders and requests
// stay on record.
func (s *UserService) Delete(ctx context.Context, actor domain.User, id string) error {
	if err := requireAdminView(s.directory, actor); err != nil {
		return err
	}
	if err := s.directory.DeleteUser(ctx, actor.ID, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:   events.EventUserDeleted,
		UserID: id,
		Actor:  actorOf(actor),
	})
	return nil
}
