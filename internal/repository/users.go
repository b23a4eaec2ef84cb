package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// AddUser stores u, assigning an id when empty. Emails must be unique.
func (d *Directory) AddUser(ctx context.Context, u domain.User) (domain.User, error) {
	if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.Email) == "" {
		return domain.User{}, fmt.Errorf("username and email required: %w", domain.ErrInvalidInput)
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Role != domain.RoleAdmin && u.Role != domain.RoleUser {
		return domain.User{}, fmt.Errorf("role %q: %w", u.Role, domain.ErrInvalidInput)
	}

	var created domain.User
	err := d.Update(ctx, func(s *Snapshot) error {
		if _, exists := s.UserByEmail(u.Email); exists {
			return fmt.Errorf("email %s: %w", u.Email, domain.ErrAlreadyExists)
		}
		if u.ID == "" {
			u.ID = s.NewUserID()
		} else if _, exists := s.User(u.ID); exists {
			return fmt.Errorf("user %s: %w", u.ID, domain.ErrAlreadyExists)
		}
		created = u.Clone()
		s.Users = append(s.Users, created)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return created.Clone(), nil
}

// UpdateUser merges patch into the user with id.
func (d *Directory) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	var updated domain.User
	err := d.Update(ctx, func(s *Snapshot) error {
		u, ok := s.User(id)
		if !ok {
			return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		if patch.Email != nil {
			if other, exists := s.UserByEmail(*patch.Email); exists && other.ID != id {
				return fmt.Errorf("email %s: %w", *patch.Email, domain.ErrAlreadyExists)
			}
		}
		patch.ApplyTo(u)
		updated = u.Clone()
		return nil
	})
	return updated, err
}

// DeleteUser removes the target user and nothing else. The reserved admin and
// the caller's own account cannot be deleted.
func (d *Directory) DeleteUser(ctx context.Context, callerID, targetID string) error {
	return d.Update(ctx, func(s *Snapshot) error {
		target, ok := s.User(targetID)
		if !ok {
			return fmt.Errorf("user %s: %w", targetID, domain.ErrNotFound)
		}
		if target.IsReservedAdmin() {
			return fmt.Errorf("reserved admin account: %w", domain.ErrForbidden)
		}
		if targetID == callerID {
			return fmt.Errorf("cannot delete the signed-in account: %w", domain.ErrForbidden)
		}
		s.RemoveUser(targetID)
		return nil
	})
}

// FindByIdentifier returns copies of every user whose username or email
// matches identifier, ignoring case and surrounding whitespace.
func (d *Directory) FindByIdentifier(identifier string) []domain.User {
	var out []domain.User
	d.View(func(s *Snapshot) {
		for _, u := range s.Users {
			if u.MatchesIdentifier(identifier) {
				out = append(out, u.Clone())
			}
		}
	})
	return out
}
