// Package settings keeps per-user preferences next to the exam collection.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/identity"
	"github.com/dmitrijs2005/provas/internal/repositories/slots"
)

// NotificationsKey is the slot holding the notifications toggle as a JSON
// boolean.
const NotificationsKey = "notificacoesAtivadas"

type Store struct {
	slots slots.Repository
	key   string
}

func New(repo slots.Repository, session identity.Session) *Store {
	key := NotificationsKey
	if !session.IsAnonymous() {
		key += "/" + session.UserID
	}
	return &Store{slots: repo, key: key}
}

// Notifications reports whether reminders are enabled. They are on until
// the user turns them off.
func (s *Store) Notifications(ctx context.Context) (bool, error) {
	raw, err := s.slots.Get(ctx, s.key)
	if err != nil {
		return true, fmt.Errorf("settings %s: %w: %w", s.key, common.ErrStorageUnavailable, err)
	}
	if len(raw) == 0 {
		return true, nil
	}

	var enabled bool
	if err := json.Unmarshal(raw, &enabled); err != nil {
		return true, fmt.Errorf("settings %s: %w: %w", s.key, common.ErrMalformedData, err)
	}
	return enabled, nil
}

func (s *Store) SetNotifications(ctx context.Context, enabled bool) error {
	raw, _ := json.Marshal(enabled)
	if err := s.slots.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("settings %s: %w: %w", s.key, common.ErrStorageUnavailable, err)
	}
	return nil
}
