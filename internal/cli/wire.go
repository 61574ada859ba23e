package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/provas/internal/catalog"
	"github.com/dmitrijs2005/provas/internal/codec"
	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/config"
	"github.com/dmitrijs2005/provas/internal/cryptox"
	"github.com/dmitrijs2005/provas/internal/database"
	"github.com/dmitrijs2005/provas/internal/exams"
	"github.com/dmitrijs2005/provas/internal/identity"
	"github.com/dmitrijs2005/provas/internal/idgen"
	"github.com/dmitrijs2005/provas/internal/localstore"
	"github.com/dmitrijs2005/provas/internal/logging"
	"github.com/dmitrijs2005/provas/internal/repositories/slots"
	"github.com/dmitrijs2005/provas/internal/settings"
)

// NewApp builds the client from cfg. A catalog backend that cannot be set up
// does not stop the client: it starts offline and reports the cause on every
// refresh.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	app := &App{
		logger:   logger.With("module", "cli"),
		interval: cfg.CatalogRefreshInterval,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		mode:     ModeOffline,
	}

	session, err := resolveSession(cfg)
	if err != nil {
		return nil, err
	}
	app.session = session

	medium, err := app.openMedium(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	if cfg.EncryptLocal {
		pass, err := GetPassword("Enter passphrase", app.out)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("passphrase: %w", err)
		}
		medium = slots.NewSealed(medium, pass)
		cryptox.Wipe(pass)
	}

	ids, err := idgen.New(cfg.IDScheme)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	source := app.openCatalogSource(ctx, cfg)

	app.exams = exams.New(
		localstore.New(medium, cfg.SlotKey, session),
		catalog.NewReader(source, logger),
		exams.WithIDGenerator(ids),
		exams.WithLogger(logger),
	)
	app.settings = settings.New(medium, session)

	return app, nil
}

func resolveSession(cfg *config.Config) (identity.Session, error) {
	if cfg.IDToken == "" {
		return identity.Anonymous(), nil
	}
	session, err := identity.NewHMACVerifier([]byte(cfg.IDTokenSecret)).Verify(cfg.IDToken)
	if err != nil {
		return identity.Session{}, fmt.Errorf("id token: %w", err)
	}
	return session, nil
}

func (a *App) openMedium(ctx context.Context, cfg *config.Config) (slots.Repository, error) {
	switch cfg.StorageBackend {
	case "memory":
		return slots.NewMemoryRepository(), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			a.logger.Warn(ctx, "redis not reachable yet", "addr", cfg.RedisAddr, "error", err)
		}
		return slots.NewRedisRepository(client, "provas:"), nil

	default:
		db, err := database.InitDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
		}
		a.closers = append(a.closers, db.Close)
		return slots.NewSQLiteRepository(db), nil
	}
}

func (a *App) openCatalogSource(ctx context.Context, cfg *config.Config) catalog.Source {
	source, closer, err := newCatalogSource(ctx, cfg)
	if err != nil {
		a.logger.Warn(ctx, "catalog backend unavailable", "backend", cfg.CatalogBackend, "error", err)
		return unavailableSource(err)
	}
	if closer != nil {
		a.closers = append(a.closers, closer.Close)
	}
	return source
}

func newCatalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, io.Closer, error) {
	switch cfg.CatalogBackend {
	case "s3":
		client, err := catalog.NewS3Client(ctx, catalog.S3Options{
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewS3Source(client, cfg.S3Bucket, cfg.CatalogCollection), nil, nil

	case "postgres":
		db, err := database.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunPostgresMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return catalog.NewPostgresSource(db, cfg.CatalogCollection), db, nil

	default:
		client, err := catalog.NewFirestoreClient(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
		if err != nil {
			return nil, nil, err
		}
		src := catalog.NewFirestoreSource(client, cfg.CatalogCollection)
		return src, src, nil
	}
}

// unavailableSource fails every fetch with the setup error.
func unavailableSource(cause error) catalog.Source {
	return catalog.SourceFunc(func(ctx context.Context) ([]codec.Document, error) {
		return nil, fmt.Errorf("%w: %w", common.ErrRemoteUnavailable, cause)
	})
}
