// Package app assembles the HTTP server from configuration: storage,
// sessions, services, middleware and routes.
package app

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/carbon-tracker/internal/config"
	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/handler"
	"github.com/iliyamo/carbon-tracker/internal/metrics"
	"github.com/iliyamo/carbon-tracker/internal/middleware"
	"github.com/iliyamo/carbon-tracker/internal/queue"
	"github.com/iliyamo/carbon-tracker/internal/repository"
	"github.com/iliyamo/carbon-tracker/internal/router"
	"github.com/iliyamo/carbon-tracker/internal/service"
	"github.com/iliyamo/carbon-tracker/internal/session"
)

// App is a wired server.
type App struct {
	Echo     *echo.Echo
	Metrics  *metrics.Metrics
	Sessions session.Store
	Auth     *service.Auth
	Ledger   *service.Ledger
	Events   *service.Events
	Accounts *service.Accounts

	closers []io.Closer
}

// New wires every component.  rdb may be nil: sessions then live in
// memory and rate limiting and response caching are off.
func New(cfg config.Config, logger *log.Logger, db *database.DB, rdb *redis.Client) *App {
	m := metrics.New()
	sessionTTL := time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour

	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb, sessionTTL, "carbon:session")
	} else {
		logger.Warn("redis unavailable, sessions kept in process memory")
		store = session.NewMemoryStore(sessionTTL, nil)
	}

	users := repository.NewUserRepo(db)
	a := &App{Metrics: m, Sessions: store}

	a.Events = service.NewEvents(repository.NewEventRepo(db), users, logger.WithPrefix("events"), m)
	if cfg.RabbitMQURL != "" {
		pub := queue.NewPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		a.Events.WithPublisher(pub)
		a.closers = append(a.closers, pub)
		logger.Info("publishing usage events", "queue", pub.Queue())
	}
	a.Accounts = service.NewAccounts(users, cfg.BcryptCost)
	a.Ledger = service.NewLedger(users, repository.NewEntryRepo(db), a.Events, m)
	a.Auth = service.NewAuth(a.Accounts, repository.NewTokenRepo(db), store, a.Events, m, service.TokenSettings{
		Secret:         cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
	})
	dashboard := service.NewDashboard(a.Ledger, store, a.Events)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger.WithPrefix("http")))
	e.Use(m.Middleware())

	limiter := middleware.NewTokenBucket(cfg.RateLimit, rdb, m)
	publicCache := middleware.NewRedisCache(cfg.Cache, rdb, m)
	adminCacheCfg := cfg.Cache.WithTTL(cfg.AdminCacheTTL)
	adminCacheCfg.Prefix = cfg.Cache.Prefix + ":admin"
	adminCache := middleware.NewRedisCache(adminCacheCfg, rdb, m)
	a.Events.OnChange(func(ctx context.Context) error {
		return middleware.PurgeCache(ctx, rdb, adminCacheCfg.Prefix)
	})

	router.RegisterRoutes(e, db, m)
	router.RegisterPublic(e, publicCache)
	router.RegisterAuth(e, handler.NewAuthHandler(a.Auth), a.Auth, limiter)
	router.RegisterLedger(e, handler.NewEntryHandler(a.Ledger), handler.NewDashboardHandler(dashboard), a.Auth, limiter)
	router.RegisterAdmin(e, handler.NewAdminHandler(a.Events), a.Auth, adminCache)

	a.Echo = e
	return a
}

// Close releases broker connections.  The database and Redis client belong
// to the caller.
func (a *App) Close() error {
	for _, c := range a.closers {
		_ = c.Close()
	}
	return nil
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			kv := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "ip", v.RemoteIP}
			if v.Error != nil {
				logger.Error("request failed", append(kv, "err", v.Error)...)
				return nil
			}
			logger.Info("request", kv...)
			return nil
		},
	})
}
