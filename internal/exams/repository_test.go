package exams

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/provas/internal/catalog"
	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/identity"
	"github.com/dmitrijs2005/provas/internal/localstore"
	"github.com/dmitrijs2005/provas/internal/logging"
	"github.com/dmitrijs2005/provas/internal/models"
	"github.com/dmitrijs2005/provas/internal/repositories/slots"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// flakyRepo fails writes while failSet is true.
type flakyRepo struct {
	slots.Repository
	failSet atomic.Bool
	failGet atomic.Bool
}

var errDisk = errors.New("disk full")

func (f *flakyRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet.Load() {
		return nil, errDisk
	}
	return f.Repository.Get(ctx, key)
}

func (f *flakyRepo) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet.Load() {
		return errDisk
	}
	return f.Repository.Set(ctx, key, value)
}

func (f *flakyRepo) Delete(ctx context.Context, key string) error {
	if f.failSet.Load() {
		return errDisk
	}
	return f.Repository.Delete(ctx, key)
}

// fakeReader returns canned results and counts calls.
type fakeReader struct {
	calls   atomic.Int32
	records []models.ExamRecord
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeReader) FetchAll(ctx context.Context) ([]models.ExamRecord, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return clone(f.records), nil
}

type fixedIDs struct{ id string }

func (f fixedIDs) NewID() string { return f.id }

func newRepo(t *testing.T, reader CatalogReader, opts ...Option) (*Repository, *flakyRepo, *localstore.Store) {
	t.Helper()
	medium := &flakyRepo{Repository: slots.NewMemoryRepository()}
	store := localstore.New(medium, "", identity.Anonymous())
	if reader == nil {
		reader = &fakeReader{}
	}
	return New(store, reader, opts...), medium, store
}

func catalogRecords() []models.ExamRecord {
	return []models.ExamRecord{
		{ID: "enem", Name: "ENEM", Date: "05/11/2024", Origin: models.OriginCatalog},
		{ID: "fuvest", Name: "Fuvest", Date: "17/11/2024", StudyContent: "Lista", Origin: models.OriginCatalog},
	}
}

func TestCreate_AddsExactlyOneRecord(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newRepo(t, nil)

	pairs := [][2]string{{"ENEM", "2024-11-03"}, {"Math", "01/12/2024"}, {" padded ", "x"}}
	for _, p := range pairs {
		before := repo.ListUser()

		rec, err := repo.Create(ctx, p[0], p[1], "")
		require.NoError(t, err)

		after := repo.ListUser()
		require.Len(t, after, len(before)+1)
		assert.Equal(t, rec, after[len(after)-1])
		assert.Equal(t, p[0], rec.Name)
		assert.Equal(t, p[1], rec.Date)
		assert.Equal(t, models.OriginUser, rec.Origin)
		assert.Equal(t, -1, models.IndexOf(before, rec.ID))
	}
}

func TestCreate_BlankFieldsAreRejected(t *testing.T) {
	ctx := context.Background()
	repo, _, store := newRepo(t, nil)

	_, err := repo.Create(ctx, "Kept", "2024-01-01", "")
	require.NoError(t, err)
	want := repo.ListUser()

	cases := [][2]string{{"", "2024-01-01"}, {"Math", ""}, {"   ", "2024-01-01"}, {"Math", "\t"}}
	for _, c := range cases {
		_, err := repo.Create(ctx, c[0], c[1], "desc")
		require.ErrorIs(t, err, common.ErrValidation)
	}

	assert.Equal(t, want, repo.ListUser())

	stored, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, stored)
}

func TestCreate_ValidationMessageNamesFields(t *testing.T) {
	repo, _, _ := newRepo(t, nil)

	_, err := repo.Create(context.Background(), "", "", "")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "name and date")
}

func TestDelete_RemovesRecord(t *testing.T) {
	ctx := context.Background()
	repo, _, store := newRepo(t, nil)

	a, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "B", "2", "")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, a.ID))

	assert.Equal(t, []models.ExamRecord{b}, repo.ListUser())
	stored, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ExamRecord{b}, stored)
}

func TestDelete_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newRepo(t, nil)

	_, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)
	before := repo.ListUser()

	require.NoError(t, repo.Delete(ctx, "does-not-exist"))
	assert.Equal(t, before, repo.ListUser())
}

func TestScenario_CreateThenFailedDeleteKeepsRecord(t *testing.T) {
	ctx := context.Background()
	repo, medium, _ := newRepo(t, nil)

	list, err := repo.RefreshUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, repo.ListUser())

	rec, err := repo.Create(ctx, "ENEM", "2024-11-03", "national exam")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)

	got := repo.ListUser()
	require.Len(t, got, 1)
	assert.Equal(t, "ENEM", got[0].Name)
	assert.Equal(t, "2024-11-03", got[0].Date)
	assert.Equal(t, "national exam", got[0].Description)

	medium.failSet.Store(true)
	err = repo.Delete(ctx, rec.ID)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	assert.Equal(t, []models.ExamRecord{rec}, repo.ListUser())
}

func TestCreate_FailedWriteLeavesSnapshot(t *testing.T) {
	ctx := context.Background()
	repo, medium, _ := newRepo(t, nil)

	_, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)
	before := repo.ListUser()

	medium.failSet.Store(true)
	_, err = repo.Create(ctx, "B", "2", "")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	assert.Equal(t, before, repo.ListUser())
}

func TestCreate_LoadsNeverLoadedCollectionFirst(t *testing.T) {
	ctx := context.Background()
	medium := slots.NewMemoryRepository()
	store := localstore.New(medium, "", identity.Anonymous())
	stored := []models.ExamRecord{
		{ID: "1", Name: "Old", Date: "1", Origin: models.OriginUser},
	}
	require.NoError(t, store.SaveAll(ctx, stored))

	repo := New(store, &fakeReader{})
	assert.Equal(t, StateEmpty, repo.UserState())

	_, err := repo.Create(ctx, "New", "2", "")
	require.NoError(t, err)

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Old", got[0].Name)
	assert.Equal(t, StateLoaded, repo.UserState())
}

func TestCreate_CollidingIDFallsBackToUUID(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newRepo(t, nil, WithIDGenerator(fixedIDs{id: "42"}))

	first, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)
	assert.Equal(t, "42", first.ID)

	second, err := repo.Create(ctx, "B", "2", "")
	require.NoError(t, err)
	_, err = uuid.Parse(second.ID)
	assert.NoError(t, err)
}

func TestRefreshUser_FailureKeepsSnapshotAndState(t *testing.T) {
	ctx := context.Background()
	repo, medium, _ := newRepo(t, nil)

	medium.failGet.Store(true)
	_, err := repo.RefreshUser(ctx)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.Equal(t, StateEmpty, repo.UserState())

	medium.failGet.Store(false)
	rec, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)

	medium.failGet.Store(true)
	_, err = repo.RefreshUser(ctx)
	require.Error(t, err)
	assert.Equal(t, StateLoaded, repo.UserState())
	assert.Equal(t, []models.ExamRecord{rec}, repo.ListUser())
}

func TestRefreshUser_MalformedThenClear(t *testing.T) {
	ctx := context.Background()
	medium := slots.NewMemoryRepository()
	require.NoError(t, medium.Set(ctx, common.DefaultSlotKey, []byte(`{"not":"a list"}`)))
	repo := New(localstore.New(medium, "", identity.Anonymous()), &fakeReader{})

	_, err := repo.RefreshUser(ctx)
	require.ErrorIs(t, err, common.ErrMalformedData)

	require.NoError(t, repo.ClearUser(ctx))
	assert.Empty(t, repo.ListUser())
	assert.Equal(t, StateLoaded, repo.UserState())

	list, err := repo.RefreshUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClearUser_FailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo, medium, _ := newRepo(t, nil)

	rec, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)

	medium.failSet.Store(true)
	require.ErrorIs(t, repo.ClearUser(ctx), common.ErrStorageUnavailable)
	assert.Equal(t, []models.ExamRecord{rec}, repo.ListUser())
}

func TestListUser_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newRepo(t, nil)

	_, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)

	got := repo.ListUser()
	got[0].Name = "mutated"

	assert.Equal(t, "A", repo.ListUser()[0].Name)
}

func TestFindUserAndCatalog(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newRepo(t, &fakeReader{records: catalogRecords()})

	_, ok := repo.FindUser("x")
	assert.False(t, ok)
	_, ok = repo.FindCatalog("enem")
	assert.False(t, ok)

	rec, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)
	_, err = repo.RefreshCatalog(ctx)
	require.NoError(t, err)

	got, ok := repo.FindUser(rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	cat, ok := repo.FindCatalog("fuvest")
	require.True(t, ok)
	assert.Equal(t, "Lista", cat.StudyContent)

	_, ok = repo.FindUser("fuvest")
	assert.False(t, ok)
}

func TestRefreshCatalog_Idempotent(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{records: catalogRecords()}
	repo, _, _ := newRepo(t, reader)

	assert.Empty(t, repo.ListCatalog())

	first, err := repo.RefreshCatalog(ctx)
	require.NoError(t, err)
	second, err := repo.RefreshCatalog(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("snapshots differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, second, repo.ListCatalog())
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestRefreshCatalog_FailureRetainsPrevious(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{records: catalogRecords()}
	repo, _, _ := newRepo(t, reader)

	reader.err = common.ErrNetwork
	_, err := repo.RefreshCatalog(ctx)
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.Equal(t, StateEmpty, repo.CatalogState())
	assert.Empty(t, repo.ListCatalog())

	reader.err = nil
	_, err = repo.RefreshCatalog(ctx)
	require.NoError(t, err)

	reader.err = common.ErrRemoteUnavailable
	_, err = repo.RefreshCatalog(ctx)
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
	assert.Equal(t, StateLoaded, repo.CatalogState())
	assert.Equal(t, catalogRecords(), repo.ListCatalog())
	assert.Equal(t, int32(3), reader.calls.Load())
}

func TestScenario_CatalogWithIncompleteDocument(t *testing.T) {
	docs := []codec.Document{
		{ID: "a", Fields: map[string]any{"nome": "ENEM", "data": "05/11/2024"}},
		{ID: "b", Fields: map[string]any{"data": "17/11/2024"}},
		{ID: "c", Fields: map[string]any{"nome": "Unicamp", "data": "27/10/2024"}},
	}
	src := catalog.SourceFunc(func(ctx context.Context) ([]codec.Document, error) { return docs, nil })
	repo, _, _ := newRepo(t, catalog.NewReader(src, logging.Nop()))

	_, err := repo.RefreshCatalog(context.Background())
	require.NoError(t, err)

	got := repo.ListCatalog()
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.Equal(t, models.OriginCatalog, rec.Origin)
	}
	assert.Empty(t, repo.ListUser())
}

func TestRefreshCatalog_ConcurrentCallsShareOneFetch(t *testing.T) {
	reader := &fakeReader{
		records: catalogRecords(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	repo, _, _ := newRepo(t, reader)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	results := make([][]models.ExamRecord, n)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = repo.RefreshCatalog(ctx)
	}()
	<-reader.started
	assert.Equal(t, StateRefreshing, repo.CatalogState())

	for i := 1; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = repo.RefreshCatalog(ctx)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(reader.release)
	wg.Wait()

	assert.Equal(t, int32(1), reader.calls.Load())
	for _, r := range results {
		assert.Equal(t, catalogRecords(), r)
	}
	assert.Equal(t, StateLoaded, repo.CatalogState())
}

func TestRefreshCatalog_IgnoresCallerCancellation(t *testing.T) {
	reader := &fakeReader{records: catalogRecords()}
	repo, _, _ := newRepo(t, reader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.RefreshCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, repo.ListCatalog(), 2)
}

func TestConcurrentCreatesAreAllPersisted(t *testing.T) {
	ctx := context.Background()
	repo, _, store := newRepo(t, nil)

	const n = 25
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, "exam", "date", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap := repo.ListUser()
	require.Len(t, snap, n)

	ids := make(map[string]struct{}, n)
	for _, r := range snap {
		ids[r.ID] = struct{}{}
	}
	assert.Len(t, ids, n)

	stored, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, stored)
}

func TestRefreshUserDoesNotOverwriteNewerMutation(t *testing.T) {
	ctx := context.Background()
	repo, _, store := newRepo(t, nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.RefreshUser(ctx)
		}()
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, "exam", string(rune('a'+i)), "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 20)
	assert.Equal(t, stored, repo.ListUser())
}

func TestSubscribe_EventsInCommitOrder(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newRepo(t, &fakeReader{records: catalogRecords()})

	var (
		mu     sync.Mutex
		events []Event
	)
	cancel := repo.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	a, err := repo.Create(ctx, "A", "1", "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "B", "2", "")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.RefreshCatalog(ctx)
	require.NoError(t, err)

	cancel()
	cancel()
	_, err = repo.Create(ctx, "C", "3", "")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	// the first event is the implicit load before the first create
	require.Len(t, events, 5)
	sizes := make([]int, 0, len(events))
	for _, ev := range events[:4] {
		assert.Equal(t, CollectionUser, ev.Collection)
		sizes = append(sizes, len(ev.Records))
	}
	assert.Equal(t, []int{0, 1, 2, 1}, sizes)
	assert.Equal(t, CollectionCatalog, events[4].Collection)
	assert.Equal(t, catalogRecords(), events[4].Records)
}

func TestRefreshInBackground(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{records: catalogRecords()}
	repo, medium, _ := newRepo(t, reader)

	require.NoError(t, <-repo.RefreshInBackground(ctx, CollectionCatalog))
	assert.Len(t, repo.ListCatalog(), 2)

	require.NoError(t, <-repo.RefreshInBackground(ctx, CollectionUser))
	assert.Equal(t, StateLoaded, repo.UserState())

	medium.failGet.Store(true)
	done := repo.RefreshInBackground(ctx, CollectionUser)
	assert.ErrorIs(t, <-done, common.ErrStorageUnavailable)

	_, open := <-done
	assert.False(t, open)
}

func TestCollectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo, medium, _ := newRepo(t, &fakeReader{records: catalogRecords()})

	medium.failGet.Store(true)
	_, err := repo.RefreshUser(ctx)
	require.Error(t, err)

	_, err = repo.RefreshCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, repo.UserState())
	assert.Equal(t, StateLoaded, repo.CatalogState())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "refreshing", StateRefreshing.String())
	assert.Equal(t, "unknown", State(9).String())
}
