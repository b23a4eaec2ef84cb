package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RememberSession persists userID for auto-resume.
func (d *Directory) RememberSession(ctx context.Context, userID string) error {
	data, err := json.Marshal(userID)
	if err != nil {
		return err
	}
	if err := d.kv.Save(ctx, map[string][]byte{KeySession: data}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// ForgetSession clears the remembered user.
func (d *Directory) ForgetSession(ctx context.Context) error {
	if err := d.kv.Save(ctx, map[string][]byte{KeySession: nil}); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// RememberedSession returns the remembered user id, if any. Unreadable data
// counts as no session.
func (d *Directory) RememberedSession(ctx context.Context) (string, bool, error) {
	data, ok, err := d.kv.Load(ctx, KeySession)
	if err != nil || !ok {
		return "", false, err
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil || id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// EndSession records sessionID as signed out until the given time, so its
// tokens stay rejected across restarts. Expired records are pruned.
func (d *Directory) EndSession(ctx context.Context, sessionID string, until time.Time) error {
	d.endedMu.Lock()
	defer d.endedMu.Unlock()

	ended, err := d.endedSessions(ctx)
	if err != nil {
		return err
	}
	now := d.now()
	for id, expiry := range ended {
		if !expiry.After(now) {
			delete(ended, id)
		}
	}
	ended[sessionID] = until

	data, err := json.Marshal(ended)
	if err != nil {
		return err
	}
	if err := d.kv.Save(ctx, map[string][]byte{KeyEndedSessions: data}); err != nil {
		return fmt.Errorf("persist ended session: %w", err)
	}
	return nil
}

// SessionEnded reports whether sessionID was signed out and its record has
// not expired yet.
func (d *Directory) SessionEnded(ctx context.Context, sessionID string) (bool, error) {
	d.endedMu.Lock()
	defer d.endedMu.Unlock()

	ended, err := d.endedSessions(ctx)
	if err != nil {
		return false, err
	}
	until, ok := ended[sessionID]
	return ok && until.After(d.now()), nil
}

// endedSessions requires d.endedMu held. Unreadable data counts as empty.
func (d *Directory) endedSessions(ctx context.Context) (map[string]time.Time, error) {
	ended := make(map[string]time.Time)
	data, ok, err := d.kv.Load(ctx, KeyEndedSessions)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := json.Unmarshal(data, &ended); err != nil {
			d.logger.Warn("ended sessions unreadable", zap.Error(err))
			return make(map[string]time.Time), nil
		}
	}
	return ended, nil
}
