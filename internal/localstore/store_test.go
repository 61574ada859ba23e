package localstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/identity"
	"github.com/dmitrijs2005/provas/internal/models"
	"github.com/dmitrijs2005/provas/internal/repositories/slots"
)

// flakyRepo wraps a memory repository and fails on demand.
type flakyRepo struct {
	slots.Repository
	getErr error
	setErr error
	delErr error
}

func (f *flakyRepo) Delete(ctx context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	return f.Repository.Delete(ctx, key)
}

func (f *flakyRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.Get(ctx, key)
}

func (f *flakyRepo) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Repository.Set(ctx, key, value)
}

func sample() []models.ExamRecord {
	return []models.ExamRecord{
		{ID: "1", Name: "ENEM", Date: "2024-11-03", Description: "national exam", Origin: models.OriginUser},
		{ID: "2", Name: "Math", Date: "2024-12-01", Origin: models.OriginUser},
	}
}

func TestNew_SlotKey(t *testing.T) {
	repo := slots.NewMemoryRepository()

	assert.Equal(t, "provas", New(repo, "", identity.Anonymous()).Key())
	assert.Equal(t, "custom", New(repo, "custom", identity.Anonymous()).Key())
	assert.Equal(t, "provas/uid-1", New(repo, "provas", identity.Session{UserID: "uid-1"}).Key())
}

func TestLoadAll_AbsentSlotIsEmpty(t *testing.T) {
	s := New(slots.NewMemoryRepository(), "", identity.Anonymous())

	got, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSaveAllThenLoadAll(t *testing.T) {
	s := New(slots.NewMemoryRepository(), "", identity.Anonymous())
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, sample()))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestSessionsDoNotShareCollections(t *testing.T) {
	repo := slots.NewMemoryRepository()
	ctx := context.Background()

	alice := New(repo, "", identity.Session{UserID: "alice"})
	bob := New(repo, "", identity.Session{UserID: "bob"})

	require.NoError(t, alice.SaveAll(ctx, sample()))

	got, err := bob.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadAll_MediumFailure(t *testing.T) {
	boom := errors.New("disk gone")
	s := New(&flakyRepo{Repository: slots.NewMemoryRepository(), getErr: boom}, "", identity.Anonymous())

	_, err := s.LoadAll(context.Background())
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	require.ErrorIs(t, err, boom)
}

func TestLoadAll_MalformedContent(t *testing.T) {
	repo := slots.NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "provas", []byte(`{"broken":`)))

	_, err := New(repo, "", identity.Anonymous()).LoadAll(ctx)
	require.ErrorIs(t, err, common.ErrMalformedData)
	require.NotErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestLoadAll_SealedWrongPassphraseIsMalformed(t *testing.T) {
	inner := slots.NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, New(slots.NewSealed(inner, []byte("right")), "", identity.Anonymous()).SaveAll(ctx, sample()))

	_, err := New(slots.NewSealed(inner, []byte("wrong")), "", identity.Anonymous()).LoadAll(ctx)
	require.ErrorIs(t, err, common.ErrMalformedData)
}

func TestSaveAll_FailureLeavesPreviousValue(t *testing.T) {
	repo := &flakyRepo{Repository: slots.NewMemoryRepository()}
	s := New(repo, "", identity.Anonymous())
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, sample()))

	repo.setErr = errors.New("write failed")
	err := s.SaveAll(ctx, sample()[:1])
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	repo.setErr = nil
	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestConcurrentLoadSeesWholeLists(t *testing.T) {
	s := New(slots.NewMemoryRepository(), "", identity.Anonymous())
	ctx := context.Background()

	short := sample()[:1]
	long := sample()
	require.NoError(t, s.SaveAll(ctx, short))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			list := short
			if i%2 == 0 {
				list = long
			}
			assert.NoError(t, s.SaveAll(ctx, list))
		}(i)
		go func() {
			defer wg.Done()
			got, err := s.LoadAll(ctx)
			assert.NoError(t, err)
			if len(got) == 1 {
				assert.Equal(t, short, got)
			} else {
				assert.Equal(t, long, got)
			}
		}()
	}
	wg.Wait()
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := slots.NewMemoryRepository()
	s := New(repo, "", identity.Anonymous())

	require.NoError(t, s.SaveAll(ctx, sample()))
	require.NoError(t, s.Clear(ctx))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// clearing an absent slot is fine
	require.NoError(t, s.Clear(ctx))
}

func TestClear_MediumFailure(t *testing.T) {
	boom := errors.New("read-only filesystem")
	s := New(&flakyRepo{Repository: slots.NewMemoryRepository(), delErr: boom}, "", identity.Anonymous())

	err := s.Clear(context.Background())
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	require.ErrorIs(t, err, boom)
}
