// Package localstore persists the user's own exam collection as one encoded
// blob in a slot. Whole-collection replace is the only write primitive.
package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/identity"
	"github.com/dmitrijs2005/provas/internal/models"
	"github.com/dmitrijs2005/provas/internal/repositories/slots"
)

type Store struct {
	slots slots.Repository
	key   string
}

// New binds a store to one slot. With an authenticated session the key is
// namespaced by user id so accounts sharing a device never share records.
func New(repo slots.Repository, baseKey string, session identity.Session) *Store {
	if baseKey == "" {
		baseKey = common.DefaultSlotKey
	}
	key := baseKey
	if !session.IsAnonymous() {
		key = baseKey + "/" + session.UserID
	}
	return &Store{slots: repo, key: key}
}

// Key returns the slot the collection lives in.
func (s *Store) Key() string {
	return s.key
}

// LoadAll returns the last saved list, or an empty list when nothing was
// saved yet. Medium failures are reported as common.ErrStorageUnavailable and
// undecodable content as common.ErrMalformedData.
func (s *Store) LoadAll(ctx context.Context) ([]models.ExamRecord, error) {
	raw, err := s.slots.Get(ctx, s.key)
	if err != nil {
		return nil, mapMediumError("load", err)
	}

	list, err := codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	return list, nil
}

// SaveAll replaces the persisted collection. On failure the previous value is
// left untouched.
func (s *Store) SaveAll(ctx context.Context, list []models.ExamRecord) error {
	blob, err := codec.Encode(list)
	if err != nil {
		return err
	}

	if err := s.slots.Set(ctx, s.key, blob); err != nil {
		return mapMediumError("save", err)
	}
	return nil
}

// Clear removes the slot. The next LoadAll returns an empty list.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return mapMediumError("clear", err)
	}
	return nil
}

func mapMediumError(op string, err error) error {
	if errors.Is(err, common.ErrMalformedData) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageUnavailable, err)
}
