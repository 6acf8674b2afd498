package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"variantchess/internal/config"
	"variantchess/internal/game"
	"variantchess/internal/handlers"
	"variantchess/internal/logging"
	"variantchess/internal/match"
	"variantchess/internal/storage"
	"variantchess/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("bad configuration", "err", err)
		os.Exit(2)
	}

	addr := flag.String("addr", cfg.Addr, "listen address")
	debug := flag.Bool("debug", cfg.Debug, "enable debug logging")
	dsn := flag.String("db", cfg.DatabaseURL, "postgres DSN; empty disables persistence")
	flag.Parse()
	if *debug {
		cfg.LogLevel = "debug"
	}
	logging.Init(cfg.LogLevel, cfg.LogJSON)

	templates.SetCommit(commit)

	var store *storage.Store
	if *dsn != "" {
		db, err := storage.New(*dsn)
		if err != nil {
			logging.Error("database unavailable", "err", err)
			os.Exit(1)
		}
		store = storage.NewStore(db)
		logging.Info("persistence enabled")
	}

	def := game.Unlimited()
	if cfg.DefaultInitial > 0 {
		def = game.Increment(cfg.DefaultInitial, cfg.DefaultIncrement)
	}

	hub := match.NewHub(store, cfg.IdleTTL)
	h := handlers.NewHandler(hub, def, commit+" "+buildDate)

	mux := h.Routes()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handlers.LogRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("variantchess listening", "addr", *addr, "commit", commit, "default_time", def.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("forced shutdown", "err", err)
	}
	hub.Close()
	logging.Info("server exited")
}
