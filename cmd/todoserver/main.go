package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/taskcal/internal/audit"
	"github.com/sandeepkv93/taskcal/internal/config"
	"github.com/sandeepkv93/taskcal/internal/logging"
	"github.com/sandeepkv93/taskcal/internal/server"
	"github.com/sandeepkv93/taskcal/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todoserver failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", filepath.Join(config.DefaultDir(), config.DefaultConfigFileName), "path to the TOML config file")
	flag.Parse()

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Console: os.Stderr})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var publisher audit.Publisher = audit.Nop{}
	if cfg.Server.AMQPURL != "" {
		amqpPub, err := audit.DialAMQP(cfg.Server.AMQPURL, cfg.Server.AuditQueue, log)
		if err != nil {
			return err
		}
		publisher = audit.NewAsync(amqpPub, 5*time.Second, log)
	}
	defer func() { _ = publisher.Close() }()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(server.Options{Store: store, Audit: publisher, Logger: log}).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks PostgreSQL when a database URL is configured and the
// sqlite file otherwise.
func openStore(ctx context.Context, cfg config.Server) (storage.TaskStore, error) {
	if cfg.DatabaseURL != "" {
		return storage.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return storage.OpenSQLite(cfg.DBPath)
}
