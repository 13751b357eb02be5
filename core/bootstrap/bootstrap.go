// Package bootstrap initializes shared infrastructure in a fixed order:
// logger, Postgres, migrations, Redis-backed session store.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/pxc1984/musicclubbot/core/config"
	coredatabase "github.com/pxc1984/musicclubbot/core/database"
	"github.com/pxc1984/musicclubbot/core/dialog"
	"github.com/pxc1984/musicclubbot/core/logger"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error

	// SessionStore overrides the Redis-backed dialog store, used by tests.
	SessionStore dialog.Store
}

// Result exposes infrastructure initialized by the pipeline.
type Result struct {
	DB       *sqlx.DB
	Redis    *redis.Client
	Sessions dialog.Store
}

// Run initializes the logger, connects to Postgres, applies migrations, and
// opens the session store.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	res := &Result{DB: db, Sessions: opts.SessionStore}
	if res.Sessions == nil {
		client := redis.NewClient(&redis.Options{
			Addr:     opts.Config.Redis.Addr,
			Password: opts.Config.Redis.Password,
			DB:       opts.Config.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: redis ping failed: %w", err)
		}
		res.Redis = client
		res.Sessions = dialog.NewRedisStore(client)
	}

	return res, nil
}

// Close releases everything Run opened.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if r.DB != nil {
		if err := r.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
