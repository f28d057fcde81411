package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/trio-pos/api"
	"github.com/angelmondragon/trio-pos/api/routes"
	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/localstore"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/internal/terminal"
	"github.com/angelmondragon/trio-pos/pkg/clock"
	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "terminal"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "terminal",
		TerminalID:  cfg.App.TerminalID,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "terminal stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	store, err := localstore.Open(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	opts := []backend.Option{backend.WithTimeout(cfg.Backend.Timeout)}
	if cfg.Backend.SessionCookie != "" {
		opts = append(opts, backend.WithSessionCookie(cfg.Backend.SessionCookieName, cfg.Backend.SessionCookie))
	}
	client, err := backend.NewClient(cfg.Backend.URL, opts...)
	if err != nil {
		return err
	}
	if cfg.Backend.Username != "" {
		if err := client.Login(ctx, cfg.Backend.Username, cfg.Backend.Password); err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "username", cfg.Backend.Username), "backend session established")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	term, err := terminal.New(terminal.Deps{
		Config:    cfg.Terminal,
		Backend:   client,
		Store:     store.Store,
		Page:      loadPage(ctx, client, cfg.Backend.BillingPath, logg),
		ImagePath: cfg.Backend.ImagePath,
		Clock:     clock.Real{},
		Metrics:   metrics.NewTerminalMetrics(registry),
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	defer term.Close()

	if err := term.Start(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart could not be loaded at startup")
	}

	server := api.NewServer(cfg, routes.NewRouter(cfg, logg, store.Pinger, term, registry))
	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    server.Addr,
		"backend": cfg.Backend.URL,
		"store":   cfg.Store.Driver,
	}), "starting terminal server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logg.Info(shutdownCtx, "shutting down terminal server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loadPage fetches the billing screen from the backend. The embedded shell is used when the
// backend page cannot be fetched or does not parse.
func loadPage(ctx context.Context, client *backend.Client, path string, logg *logger.Logger) *page.Page {
	if path == "" {
		return page.New()
	}
	ctx = logg.WithField(ctx, "path", path)
	body, err := client.FetchPage(ctx, path)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "billing page unavailable, using built-in shell")
		return page.New()
	}
	p, err := page.Parse(bytes.NewReader(body))
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "billing page did not parse, using built-in shell")
		return page.New()
	}
	if !p.Has(page.IDProductsList) || !p.Has(page.IDCartItems) {
		logg.Warn(ctx, "billing page lacks the checkout containers, using built-in shell")
		return page.New()
	}
	return p
}
