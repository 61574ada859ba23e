package slots

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/cryptox"
)

// SaltKey is the reserved slot holding the key-derivation salt in clear.
const SaltKey = "__salt"

// Sealed encrypts values before handing them to the wrapped repository.
// The cipher key is derived once per instance from the passphrase and a salt
// persisted under SaltKey, created on first write.
type Sealed struct {
	inner      Repository
	passphrase []byte

	mu  sync.Mutex
	key []byte
}

func NewSealed(inner Repository, passphrase []byte) *Sealed {
	return &Sealed{inner: inner, passphrase: append([]byte{}, passphrase...)}
}

func (s *Sealed) cipherKey(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	salt, err := s.inner.Get(ctx, SaltKey)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		salt, err = cryptox.NewSalt()
		if err != nil {
			return nil, err
		}
		if err := s.inner.Set(ctx, SaltKey, salt); err != nil {
			return nil, err
		}
	}

	s.key = cryptox.DeriveKey(s.passphrase, salt)
	cryptox.Wipe(s.passphrase)
	s.passphrase = nil
	return s.key, nil
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil || raw == nil {
		return raw, err
	}

	k, err := s.cipherKey(ctx)
	if err != nil {
		return nil, err
	}

	plain, err := cryptox.Open(raw, k)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open slot[%s]: %v", common.ErrMalformedData, key, err)
	}
	return plain, nil
}

func (s *Sealed) Set(ctx context.Context, key string, value []byte) error {
	k, err := s.cipherKey(ctx)
	if err != nil {
		return err
	}

	sealed, err := cryptox.Seal(value, k)
	if err != nil {
		return fmt.Errorf("failed to seal slot[%s]: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
