// Package app wires the stores named by a config.Config into one bundle
// shared by the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-local-store/internal/api"
	"github.com/hackgods/clinic-local-store/internal/clinic"
	"github.com/hackgods/clinic-local-store/internal/config"
	"github.com/hackgods/clinic-local-store/internal/db"
	"github.com/hackgods/clinic-local-store/internal/kv"
	"github.com/hackgods/clinic-local-store/internal/preferences"
	"github.com/hackgods/clinic-local-store/internal/records"
	redisclient "github.com/hackgods/clinic-local-store/internal/redis"
	"github.com/hackgods/clinic-local-store/internal/seed"
	"github.com/hackgods/clinic-local-store/internal/session"
)

const (
	sessionPrefix     = "clinic:session:"
	preferencesPrefix = "clinic:preferences:"
)

type App struct {
	Repo         records.Repository
	Session      *session.Store
	Preferences  *preferences.Store
	Clinic       *clinic.Service
	Dependencies []api.Dependency

	closers []func() error
}

// Open connects every backend cfg selects and migrates the record schema.
// On error, whatever was already opened is closed again.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{}
	if err := a.open(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context, cfg config.Config) error {
	conn, dialect, err := a.openSQL(ctx, cfg)
	if err != nil {
		return err
	}

	repo, err := records.NewSQLRepository(ctx, conn, dialect)
	if err != nil {
		return fmt.Errorf("record store: %w", err)
	}
	a.Repo = repo

	var (
		rdb    *redis.Client
		locker redisclient.Locker
	)
	if cfg.UsesRedis() {
		rdb, err = redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.Dependencies = append(a.Dependencies, api.Dependency{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		locker = redisclient.NewRedisKeyLocker(rdb, cfg.LockTTL)
		log.Printf("connected to redis addr=%s", cfg.RedisAddr)
	}

	var sessionBackend kv.Store = kv.NewMemory()
	if cfg.SessionBackend == config.BackendRedis {
		sessionBackend = kv.NewRedisStore(rdb, sessionPrefix, cfg.SessionTTL)
	}

	var prefsBackend kv.Store
	if cfg.PreferencesBackend == config.BackendRedis {
		prefsBackend = kv.NewRedisStore(rdb, preferencesPrefix, 0)
	} else {
		prefsBackend, err = kv.NewSQLStore(ctx, conn, dialect)
		if err != nil {
			return fmt.Errorf("preference store: %w", err)
		}
	}

	a.Session = session.New(sessionBackend)
	a.Preferences = preferences.New(prefsBackend)
	if locker != nil {
		a.Session.WithLocker(locker)
		a.Preferences.WithLocker(locker)
	}
	a.Clinic = clinic.NewService(a.Repo, a.Session)

	log.Printf("stores ready driver=%s session=%s preferences=%s", cfg.StoreDriver, cfg.SessionBackend, cfg.PreferencesBackend)
	return nil
}

func (a *App) openSQL(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(connectCtx, cfg.PostgresDSN)
		cancel()
		if err != nil {
			return nil, db.Dialect{}, fmt.Errorf("postgres connection: %w", err)
		}
		conn := db.SQLFromPool(pool)
		a.closers = append(a.closers, func() error {
			err := conn.Close()
			pool.Close()
			return err
		})
		a.Dependencies = append(a.Dependencies, api.Dependency{Name: "postgres", Check: pool.Ping, Required: true})
		log.Println("connected to postgres")
		return conn, db.Postgres, nil

	default:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, db.Dialect{}, err
		}
		a.closers = append(a.closers, conn.Close)
		a.Dependencies = append(a.Dependencies, api.Dependency{Name: "sqlite", Check: conn.PingContext, Required: true})
		log.Printf("opened sqlite path=%s", cfg.SQLitePath)
		return conn, db.SQLite, nil
	}
}

// Bootstrap applies the configured seed mode.
func (a *App) Bootstrap(ctx context.Context, mode string) error {
	switch mode {
	case config.SeedOff:
		return nil
	case config.SeedReset:
		return seed.ResetToReferenceData(ctx, a.Repo)
	case config.SeedIfEmpty:
		seeded, err := seed.SeedIfEmpty(ctx, a.Repo)
		if err != nil {
			return err
		}
		if !seeded {
			log.Println("seed skipped, store already has records")
		}
		return nil
	}
	return fmt.Errorf("unknown seed mode %q", mode)
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("error closing backend: %v", err)
		}
	}
	a.closers = nil
}
