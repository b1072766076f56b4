package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/penguin-works/kouji-backend/config"
	"github.com/penguin-works/kouji-backend/internal/fsys"
	"github.com/penguin-works/kouji-backend/internal/kouji/repository"
	"github.com/penguin-works/kouji-backend/internal/kouji/service"
	"github.com/penguin-works/kouji-backend/internal/logging"
	"github.com/penguin-works/kouji-backend/internal/storage/postgres"
	"github.com/penguin-works/kouji-backend/internal/storage/redis"
)

// App holds the services shared by the API server, the worker and the MCP
// server.
type App struct {
	Config    *config.Config
	FS        *fsys.Service
	Kouji     *service.Service
	Store     service.Store
	StoreKind string

	closers []func() error
}

// Close releases store connections.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewApp wires the filesystem service, the configured date store and the
// kouji service.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logging.SetLevel(cfg.App.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	fs, err := fsys.NewService(cfg.FS.Root)
	if err != nil {
		return nil, err
	}
	fs.IncludeHidden = cfg.FS.IncludeHidden

	app := &App{Config: cfg, FS: fs, StoreKind: cfg.Kouji.Store}
	if err := app.openStore(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.Kouji = service.New(fs, app.Store, service.Config{
		DefaultPath: cfg.Kouji.Path,
		Location:    loc,
	})
	return app, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Kouji.Store {
	case config.StoreYAML:
		path, err := fsys.ExpandHome(cfg.Kouji.StorePath)
		if err != nil {
			return err
		}
		if path, err = filepath.Abs(path); err != nil {
			return fmt.Errorf("resolve store path: %w", err)
		}
		a.Store = repository.NewYAMLStore(path)

	case config.StoreRedis:
		client, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		a.Store = repository.NewRedisStore(client)

	case config.StorePostgres:
		db, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		pg := repository.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		a.Store = pg

	default:
		return fmt.Errorf("unknown store %q", cfg.Kouji.Store)
	}
	return nil
}
