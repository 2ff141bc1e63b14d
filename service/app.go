package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"bizdash/app/auth"
	"bizdash/app/gateway"
	"bizdash/app/models"
	"bizdash/app/notify"
	"bizdash/app/repositories"
	"bizdash/app/repositories/postgres"
	"bizdash/app/routes"
	"bizdash/app/scheduler"
	"bizdash/app/services"
	"bizdash/app/session"
	"bizdash/app/store"
	"bizdash/config"
)

// App holds every wired component of a running dashboard.
type App struct {
	Config    config.Config
	KV        repositories.KV
	Scheduler *scheduler.Scheduler
	Store     *store.Store
	Notes     *notify.Queue
	Sessions  *session.Store
	Dashboard *services.DashboardService
	Auth      *services.AuthService

	closeKV func()
}

// badgerPath is where the badger backend keeps its files.
func badgerPath(cfg config.Config) string {
	return filepath.Join(cfg.BadgerDir, "badger")
}

// openKV opens the storage backend selected by cfg. The returned func
// releases it.
func openKV(ctx context.Context, cfg config.Config) (repositories.KV, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		kv, err := postgres.NewKV(ctx, cfg.DatabaseURL, cfg.DBTimeout)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case config.StorageMemory:
		kv, err := repositories.OpenBadgerKV("")
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil
	default:
		kv, err := repositories.OpenBadgerKV(badgerPath(cfg))
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {
			if err := kv.Close(); err != nil {
				log.Printf("Failed to close badger: %v", err)
			}
		}, nil
	}
}

func sessionOptions(cfg config.Config, clock scheduler.Clock, ids *scheduler.IDSource) []session.Option {
	opts := []session.Option{
		session.WithClock(clock),
		session.WithIDSource(ids),
		session.WithSeed(&models.Registration{
			Name:     session.DefaultAdmin.Name,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Role:     models.RoleAdmin,
		}),
	}
	if cfg.HashPasswords {
		opts = append(opts, session.WithPasswordHasher(session.BcryptHasher{Cost: cfg.BcryptCost}))
	}
	return opts
}

// NewApp opens storage and wires the services on top of it.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage, err)
	}
	return newApp(cfg, kv, closeKV, scheduler.RealClock{})
}

func newApp(cfg config.Config, kv repositories.KV, closeKV func(), clock scheduler.Clock) (*App, error) {
	ids := scheduler.NewIDSource(clock)
	sessions, err := session.Open(kv, sessionOptions(cfg, clock, ids)...)
	if err != nil {
		closeKV()
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	sched := scheduler.New(clock)
	st := store.New(store.DefaultState(cfg.ItemsPerPage))
	notes := notify.NewQueue(clock,
		notify.WithTTL(cfg.NotificationTTL),
		notify.WithIDSource(ids),
		notify.WithScheduler(sched),
		notify.WithMirror(st),
	)
	gw := gateway.NewHTTPGateway(cfg.APIBaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		gateway.WithClock(clock),
		gateway.WithIDSource(ids),
		gateway.WithLatency(cfg.WriteLatency),
	)
	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL).WithClock(clock)

	return &App{
		Config:    cfg,
		KV:        kv,
		Scheduler: sched,
		Store:     st,
		Notes:     notes,
		Sessions:  sessions,
		Dashboard: services.NewDashboardService(st, gw, notes, sched, cfg.SearchDebounce),
		Auth:      services.NewAuthService(sessions, st, kv, tokens, notes),
		closeKV:   closeKV,
	}, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return routes.SetupRoutes(routes.Deps{
		Dashboard:   a.Dashboard,
		Auth:        a.Auth,
		CORSOrigins: a.Config.CORSOrigins,
	})
}

// Close stops timers and releases storage.
func (a *App) Close() {
	a.Notes.Close()
	a.Scheduler.Stop()
	a.Store.Close()
	if a.closeKV != nil {
		a.closeKV()
	}
}
