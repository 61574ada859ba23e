package exams

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/provas/internal/idgen"
	"github.com/dmitrijs2005/provas/internal/logging"
	"github.com/dmitrijs2005/provas/internal/models"
)

// LocalStore is the whole-collection persistence the user snapshot relies on.
type LocalStore interface {
	LoadAll(ctx context.Context) ([]models.ExamRecord, error)
	SaveAll(ctx context.Context, list []models.ExamRecord) error
	Clear(ctx context.Context) error
}

// CatalogReader fetches the complete remote catalog in one round trip.
type CatalogReader interface {
	FetchAll(ctx context.Context) ([]models.ExamRecord, error)
}

// idAttempts bounds how often a generated id may collide with a stored one
// before a random UUID is used instead.
const idAttempts = 8

// Repository coordinates the local store and the catalog reader. The zero
// value is not usable; build one with New.
type Repository struct {
	local  LocalStore
	reader CatalogReader
	ids    idgen.Generator
	logger logging.Logger

	// userMu serializes Create, Delete, RefreshUser and ClearUser.
	userMu    sync.Mutex
	user      atomic.Pointer[[]models.ExamRecord]
	userState atomic.Int32

	// catalogMu orders catalog publication against subscription.
	catalogMu    sync.Mutex
	catalog      atomic.Pointer[[]models.ExamRecord]
	catalogState atomic.Int32
	flight       singleflight.Group

	subsMu  sync.Mutex
	subs    map[uint64]func(Event)
	nextSub uint64
}

type Option func(*Repository)

func WithIDGenerator(g idgen.Generator) Option {
	return func(r *Repository) { r.ids = g }
}

func WithLogger(l logging.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

func New(local LocalStore, reader CatalogReader, opts ...Option) *Repository {
	r := &Repository{
		local:  local,
		reader: reader,
		ids:    idgen.NewTimestampGenerator(),
		logger: logging.Nop(),
		subs:   make(map[uint64]func(Event)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("module", "exams")
	return r
}

// ListUser returns the resident user snapshot, empty before the first load.
func (r *Repository) ListUser() []models.ExamRecord {
	return load(&r.user)
}

// FindUser looks id up in the resident user snapshot.
func (r *Repository) FindUser(id string) (models.ExamRecord, bool) {
	return find(&r.user, id)
}

func (r *Repository) UserState() State {
	return State(r.userState.Load())
}

// RefreshUser replaces the user snapshot with the stored collection. On
// failure the snapshot is unchanged and the error is returned.
func (r *Repository) RefreshUser(ctx context.Context) ([]models.ExamRecord, error) {
	ctx = context.WithoutCancel(ctx)

	r.userMu.Lock()
	defer r.userMu.Unlock()

	prev := r.UserState()
	r.userState.Store(int32(StateRefreshing))

	list, err := r.local.LoadAll(ctx)
	if err != nil {
		r.userState.Store(int32(prev))
		r.logger.Warn(ctx, "user collection load failed", "error", err)
		return nil, err
	}

	r.publishUser(list)
	return clone(list), nil
}

// Create validates the input, appends a new user record, persists the whole
// collection and only then publishes it.
func (r *Repository) Create(ctx context.Context, name, date, description string) (models.ExamRecord, error) {
	in := CreateInput{Name: name, Date: date, Description: description}
	if err := in.Validate(); err != nil {
		return models.ExamRecord{}, err
	}

	ctx = context.WithoutCancel(ctx)

	r.userMu.Lock()
	defer r.userMu.Unlock()

	current, err := r.currentUserLocked(ctx)
	if err != nil {
		return models.ExamRecord{}, err
	}

	rec := models.ExamRecord{
		ID:          r.newID(current),
		Name:        in.Name,
		Date:        in.Date,
		Description: in.Description,
		Origin:      models.OriginUser,
	}

	next := append(clone(current), rec)
	if err := r.local.SaveAll(ctx, next); err != nil {
		r.logger.Warn(ctx, "create not persisted", "id", rec.ID, "error", err)
		return models.ExamRecord{}, err
	}

	r.publishUser(next)
	r.logger.Debug(ctx, "exam created", "id", rec.ID)
	return rec, nil
}

// Delete removes the user record with id. An unknown id is a no-op. When the
// write fails the pre-delete snapshot stays resident.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx = context.WithoutCancel(ctx)

	r.userMu.Lock()
	defer r.userMu.Unlock()

	current, err := r.currentUserLocked(ctx)
	if err != nil {
		return err
	}

	idx := models.IndexOf(current, id)
	if idx < 0 {
		return nil
	}

	next := make([]models.ExamRecord, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)

	if err := r.local.SaveAll(ctx, next); err != nil {
		r.logger.Warn(ctx, "delete not persisted", "id", id, "error", err)
		return err
	}

	r.publishUser(next)
	r.logger.Debug(ctx, "exam deleted", "id", id)
	return nil
}

// ClearUser removes every user record from the store and publishes an
// empty snapshot. It also recovers a slot whose content cannot be decoded.
func (r *Repository) ClearUser(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	r.userMu.Lock()
	defer r.userMu.Unlock()

	if err := r.local.Clear(ctx); err != nil {
		r.logger.Warn(ctx, "clear failed", "error", err)
		return err
	}

	r.publishUser(nil)
	return nil
}

// currentUserLocked returns the resident list, loading it first when the
// collection was never loaded. Callers hold userMu.
func (r *Repository) currentUserLocked(ctx context.Context) ([]models.ExamRecord, error) {
	if p := r.user.Load(); p != nil {
		return *p, nil
	}

	list, err := r.local.LoadAll(ctx)
	if err != nil {
		r.logger.Warn(ctx, "user collection load failed", "error", err)
		return nil, err
	}

	r.publishUser(list)
	return list, nil
}

func (r *Repository) newID(current []models.ExamRecord) string {
	for range idAttempts {
		id := r.ids.NewID()
		if models.IndexOf(current, id) < 0 {
			return id
		}
	}
	return uuid.NewString()
}

func (r *Repository) publishUser(list []models.ExamRecord) {
	snap := clone(list)
	r.user.Store(&snap)
	r.userState.Store(int32(StateLoaded))
	r.notify(Event{Collection: CollectionUser, Records: snap})
}

// ListCatalog returns the last fetched catalog, empty before the first
// successful fetch.
func (r *Repository) ListCatalog() []models.ExamRecord {
	return load(&r.catalog)
}

// FindCatalog looks id up in the resident catalog snapshot.
func (r *Repository) FindCatalog(id string) (models.ExamRecord, bool) {
	return find(&r.catalog, id)
}

func (r *Repository) CatalogState() State {
	return State(r.catalogState.Load())
}

// RefreshCatalog fetches the remote catalog and replaces the snapshot.
// Concurrent calls share one fetch. On failure the previous snapshot is kept
// and the error is returned; there is no retry.
func (r *Repository) RefreshCatalog(ctx context.Context) ([]models.ExamRecord, error) {
	ctx = context.WithoutCancel(ctx)

	v, err, shared := r.flight.Do(string(CollectionCatalog), func() (any, error) {
		prev := r.CatalogState()
		r.catalogState.Store(int32(StateRefreshing))

		list, err := r.reader.FetchAll(ctx)
		if err != nil {
			r.catalogState.Store(int32(prev))
			r.logger.Warn(ctx, "catalog refresh failed", "error", err)
			return nil, err
		}

		r.catalogMu.Lock()
		defer r.catalogMu.Unlock()

		snap := clone(list)
		r.catalog.Store(&snap)
		r.catalogState.Store(int32(StateLoaded))
		r.notify(Event{Collection: CollectionCatalog, Records: snap})

		r.logger.Debug(ctx, "catalog refreshed", "records", len(snap))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		r.logger.Debug(ctx, "catalog refresh coalesced")
	}
	return clone(v.([]models.ExamRecord)), nil
}

// Refresh reloads the given collection.
func (r *Repository) Refresh(ctx context.Context, c Collection) ([]models.ExamRecord, error) {
	if c == CollectionCatalog {
		return r.RefreshCatalog(ctx)
	}
	return r.RefreshUser(ctx)
}

// RefreshInBackground runs Refresh on its own goroutine. The returned
// channel yields the outcome once and is then closed.
func (r *Repository) RefreshInBackground(ctx context.Context, c Collection) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := r.Refresh(ctx, c)
		done <- err
	}()
	return done
}

// Subscribe registers fn for snapshot events, which arrive in commit order
// on the goroutine that committed them. fn must not call mutating methods of
// the repository. The returned func unregisters fn.
func (r *Repository) Subscribe(fn func(Event)) (cancel func()) {
	r.subsMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subsMu.Lock()
			delete(r.subs, id)
			r.subsMu.Unlock()
		})
	}
}

func (r *Repository) notify(ev Event) {
	r.subsMu.Lock()
	fns := make([]func(Event), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subsMu.Unlock()

	for _, fn := range fns {
		fn(Event{Collection: ev.Collection, Records: clone(ev.Records)})
	}
}

func load(p *atomic.Pointer[[]models.ExamRecord]) []models.ExamRecord {
	snap := p.Load()
	if snap == nil {
		return []models.ExamRecord{}
	}
	return clone(*snap)
}

func find(p *atomic.Pointer[[]models.ExamRecord], id string) (models.ExamRecord, bool) {
	snap := p.Load()
	if snap == nil {
		return models.ExamRecord{}, false
	}
	if i := models.IndexOf(*snap, id); i >= 0 {
		return (*snap)[i], true
	}
	return models.ExamRecord{}, false
}
