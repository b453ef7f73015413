package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iliyamo/carbon-tracker/internal/app"
	"github.com/iliyamo/carbon-tracker/internal/config"
	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.IsProd(), File: cfg.LogFile})

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("open database", "driver", cfg.Driver(), "err", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		logger.Fatal("migrate", "err", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	a := app.New(cfg, logger, db, rdb)
	defer a.Close()

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "driver", cfg.Driver())
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("bye")
}
