package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// DefaultUsers returns the built-in accounts that always exist.
func DefaultUsers() []domain.User {
	liter := decimal.NewFromInt(2)
	price := decimal.NewFromInt(80)
	return []domain.User{
		{
			ID:          domain.ReservedAdminID,
			Username:    "Admin",
			Email:       domain.ReservedAdminEmail,
			Password:    "1111",
			Designation: "Super Admin",
			Photo:       "https://api.dicebear.com/7.x/avataaars/svg?seed=admin",
			Role:        domain.RoleAdmin,
			Phone:       "01500000000",
			Balance:     decimal.Zero,
		},
		{
			ID:          domain.DefaultCustomerID,
			Username:    "Customer User",
			Email:       "2222@gmail.com",
			Password:    "2222",
			Designation: "Customer",
			Photo:       "https://api.dicebear.com/7.x/avataaars/svg?seed=customer",
			Role:        domain.RoleUser,
			Phone:       "01700000000",
			MilkLiter:   &liter,
			MilkPrice:   &price,
			Balance:     decimal.Zero,
		},
	}
}

func (d *Directory) bootstrap(ctx context.Context) error {
	state := &Snapshot{now: d.now}

	users, err := d.loadUsers(ctx)
	if err != nil {
		return err
	}
	state.Users = users

	if state.Orders, err = loadCollection[domain.Order](ctx, d, KeyOrders); err != nil {
		return err
	}
	if state.Transactions, err = loadCollection[domain.Transaction](ctx, d, KeyTransactions); err != nil {
		return err
	}
	if state.Requests, err = loadCollection[domain.SystemRequest](ctx, d, KeyRequests); err != nil {
		return err
	}

	encoded, err := json.Marshal(state.Users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if string(encoded) != string(d.stored[KeyUsers]) {
		if err := d.kv.Save(ctx, map[string][]byte{KeyUsers: encoded}); err != nil {
			return fmt.Errorf("persist users: %w", err)
		}
	}
	d.stored[KeyUsers] = encoded
	d.state = state

	d.logger.Info("directory loaded",
		zap.Int("users", len(state.Users)),
		zap.Int("orders", len(state.Orders)),
		zap.Int("transactions", len(state.Transactions)),
		zap.Int("requests", len(state.Requests)),
		zap.Int("warnings", len(d.warnings)))
	return nil
}

// loadUsers reads persisted users and appends any built-in account missing
// from them. Absent or unreadable data yields just the built-ins.
func (d *Directory) loadUsers(ctx context.Context) ([]domain.User, error) {
	data, ok, err := d.kv.Load(ctx, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyUsers, err)
	}
	if !ok {
		return DefaultUsers(), nil
	}

	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		d.corrupt(KeyUsers, err)
		return DefaultUsers(), nil
	}
	if canonical, err := json.Marshal(nonNil(users)); err == nil {
		d.stored[KeyUsers] = canonical
	}

	for _, builtin := range DefaultUsers() {
		if !containsIdentity(users, builtin) {
			users = append(users, builtin)
		}
	}
	return users, nil
}

func containsIdentity(users []domain.User, target domain.User) bool {
	for _, u := range users {
		if u.ID == target.ID || strings.EqualFold(u.Email, target.Email) {
			return true
		}
	}
	return false
}

// loadCollection degrades to an empty collection when the stored document is
// not valid JSON for T.
func loadCollection[T any](ctx context.Context, d *Directory, key string) ([]T, error) {
	empty, _ := json.Marshal([]T{})

	data, ok, err := d.kv.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		d.stored[key] = empty
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		d.corrupt(key, err)
		d.stored[key] = empty
		return []T{}, nil
	}
	items = nonNil(items)
	canonical, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	d.stored[key] = canonical
	return items, nil
}

func (d *Directory) corrupt(key string, cause error) {
	err := fmt.Errorf("%s: %w: %v", key, domain.ErrPersistenceCorrupt, cause)
	d.warnings = append(d.warnings, err)
	d.logger.Warn("persisted collection is corrupt; starting empty", zap.String("key", key), zap.Error(cause))
}
