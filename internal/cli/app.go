package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/exams"
	"github.com/dmitrijs2005/provas/internal/identity"
	"github.com/dmitrijs2005/provas/internal/logging"
	"github.com/dmitrijs2005/provas/internal/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// examService is the part of exams.Repository the client uses.
type examService interface {
	ListUser() []models.ExamRecord
	FindUser(id string) (models.ExamRecord, bool)
	UserState() exams.State
	RefreshUser(ctx context.Context) ([]models.ExamRecord, error)
	Create(ctx context.Context, name, date, description string) (models.ExamRecord, error)
	Delete(ctx context.Context, id string) error
	ClearUser(ctx context.Context) error

	ListCatalog() []models.ExamRecord
	FindCatalog(id string) (models.ExamRecord, bool)
	CatalogState() exams.State
	RefreshCatalog(ctx context.Context) ([]models.ExamRecord, error)
	RefreshInBackground(ctx context.Context, c exams.Collection) <-chan error
	Subscribe(fn func(exams.Event)) (cancel func())
}

type settingsService interface {
	Notifications(ctx context.Context) (bool, error)
	SetNotifications(ctx context.Context, enabled bool) error
}

type App struct {
	exams    examService
	settings settingsService
	session  identity.Session
	logger   logging.Logger
	interval time.Duration
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error

	mu          sync.RWMutex
	mode        Mode
	catalogSeen int
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

// StartCatalogWatcher refreshes the catalog every interval until ctx is
// done. A failed fetch switches the client to offline mode; a successful one
// publishes a snapshot, which watchEvents turns back into online mode.
func (a *App) StartCatalogWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.observeCatalog(ctx, <-a.exams.RefreshInBackground(ctx, exams.CollectionCatalog))
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) observeCatalog(ctx context.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, common.ErrNetwork), errors.Is(err, common.ErrRemoteUnavailable):
		a.setMode(ctx, ModeOffline)
	default:
		a.logger.Error(ctx, "catalog refresh", "error", err)
		a.setMode(ctx, ModeOffline)
	}
}

// watchEvents subscribes the client to repository snapshots until Close.
func (a *App) watchEvents(ctx context.Context) {
	a.mu.Lock()
	a.catalogSeen = -1
	a.mu.Unlock()

	unsubscribe := a.exams.Subscribe(func(ev exams.Event) { a.onEvent(ctx, ev) })
	a.closers = append(a.closers, func() error {
		unsubscribe()
		return nil
	})
}

// onEvent runs on the goroutine that committed the snapshot. A catalog
// snapshot means the remote answered, so the client is online.
func (a *App) onEvent(ctx context.Context, ev exams.Event) {
	switch ev.Collection {
	case exams.CollectionCatalog:
		a.setMode(ctx, ModeOnline)

		a.mu.Lock()
		changed := a.catalogSeen != len(ev.Records)
		a.catalogSeen = len(ev.Records)
		a.mu.Unlock()

		if changed {
			fmt.Fprintf(a.out, "Catalog updated: %d exams\n", len(ev.Records))
		}
	case exams.CollectionUser:
		a.logger.Debug(ctx, "user exams changed", "records", len(ev.Records))
	}
}

// Close releases the medium and remote clients in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run loads the user collection, subscribes to snapshots and blocks in the
// REPL. The first catalog fetch and the periodic watcher run in the
// background, so a slow remote never delays the prompt.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.watchEvents(ctx)

	if _, err := a.exams.RefreshUser(ctx); err != nil {
		a.printErr(err)
	}

	go func() {
		a.observeCatalog(ctx, <-a.exams.RefreshInBackground(ctx, exams.CollectionCatalog))
	}()
	go a.StartCatalogWatcher(ctx, a.interval)

	a.Root(ctx, os.Stdin)
}
