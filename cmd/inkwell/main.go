// Command inkwell serves the blog API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"github.com/lborres/inkwell"
	fiberadapter "github.com/lborres/inkwell/adapters/fiber"
	"github.com/lborres/inkwell/adapters/memory"
	pgxadapter "github.com/lborres/inkwell/adapters/pgx"
	"github.com/lborres/inkwell/pkg/config"
	"github.com/lborres/inkwell/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "inkwell: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Production(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.SecretGenerated {
		logger.Warn("no secret configured, generated a temporary one; sessions will not survive a restart",
			zap.String("variable", config.Prefix+"SECRET"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db inkwell.StorageAdapter
	if cfg.DatabaseURI != "" {
		pg, err := pgxadapter.Connect(ctx, cfg.DatabaseURI)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		db = pg
		logger.Info("using postgres storage")
	} else {
		db = memory.New()
		logger.Warn("no database configured, using in-memory storage",
			zap.String("variable", config.Prefix+"DATABASE_URI"))
	}

	app := fiber.New(fiber.Config{AppName: "inkwell"})
	app.Use(recoverer.New())

	sessionConfig := cfg.SessionConfig()
	cacheConfig := cfg.CacheConfig()
	cookie := cfg.CookieConfig()

	iw, err := inkwell.New(inkwell.Config{
		Secret:        cfg.Secret,
		Database:      db,
		HTTP:          fiberadapter.New(app, logger.Named("http")),
		CacheConfig:   &cacheConfig,
		SessionConfig: &sessionConfig,
		Cookie:        &cookie,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create inkwell instance: %w", err)
	}

	go iw.Sessions.RunJanitor(ctx, cfg.SessionPurgeInterval)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		errCh <- app.Listen(cfg.Addr(), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
