// Package app wires the relay components together and manages the
// lifecycle of the HTTP server and the background scheduler.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/audiorelay/internal/config"
	"github.com/edgard/audiorelay/internal/health"
	"github.com/edgard/audiorelay/internal/relay"
	"github.com/edgard/audiorelay/internal/scheduler"
	"github.com/edgard/audiorelay/internal/server"
	"github.com/edgard/audiorelay/internal/telegram"
)

// probeTimeout bounds a single scheduled getMe call.
const probeTimeout = 30 * time.Second

// ErrNoToken is returned by Prober when no bot token is configured.
var ErrNoToken = errors.New("telegram bot token is not configured")

// App holds the assembled relay components.
type App struct {
	logger *slog.Logger
	cfg    *config.Config

	Relay   *relay.Service
	Handler *server.Handler
	Health  *health.Status
	prober  *telegram.Prober
}

// New builds every component from cfg. It does not contact Telegram.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	transport := telegram.NewHTTPTransport(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Telegram.RequestTimeout)
	client := telegram.NewClient(transport, log)
	svc := relay.NewService(relay.Credentials{
		BotToken: cfg.Telegram.Token,
		ChatID:   cfg.Telegram.ChatID,
	}, client, log)

	a := &App{
		logger: log.With("component", "app"),
		cfg:    cfg,
		Relay:  svc,
		Handler: server.NewHandler(svc, server.HandlerOptions{
			CORS:         cfg.Server.CORS,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
		}, log),
	}

	if cfg.Telegram.Token != "" {
		prober, err := telegram.NewProber(cfg.Telegram.APIURL, cfg.Telegram.Token, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create token prober: %w", err)
		}
		a.prober = prober
	}

	probing := cfg.Probe.Enabled && a.prober != nil
	if cfg.Probe.Enabled && !probing {
		a.logger.Warn("Token probe enabled but no bot token configured, probe disabled")
	}
	if !cfg.Telegram.HasCredentials() {
		a.logger.Warn("Telegram credentials not configured, relay requests will fail")
	}
	a.Health = health.NewStatus(cfg.Telegram.HasCredentials(), probing)

	return a, nil
}

// Prober returns the bot token prober, or ErrNoToken.
func (a *App) Prober() (*telegram.Prober, error) {
	if a.prober == nil {
		return nil, ErrNoToken
	}
	return a.prober, nil
}

// Jobs returns the scheduled jobs for the current configuration.
func (a *App) Jobs() []scheduler.Job {
	if !a.cfg.Probe.Enabled || a.prober == nil {
		return nil
	}
	return []scheduler.Job{{
		Name:       scheduler.ProbeTaskName,
		Schedule:   a.cfg.Probe.Schedule,
		Task:       scheduler.NewProbeTask(a.prober, a.Health, probeTimeout, a.logger),
		RunOnStart: true,
	}}
}

// HTTPHandler returns the routed, logged HTTP handler.
func (a *App) HTTPHandler() http.Handler {
	return server.NewMux(a.cfg.Server.Path, a.Handler, a.Health, a.logger)
}

// Run serves HTTP and runs scheduled jobs until ctx is cancelled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting relay orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	srv := server.New(a.cfg.Server, a.HTTPHandler(), a.logger)
	g.Go(func() error {
		if err := srv.Run(gCtx); err != nil {
			return err
		}
		if gCtx.Err() == nil {
			return fmt.Errorf("http server stopped unexpectedly")
		}
		return nil
	})

	if jobs := a.Jobs(); len(jobs) > 0 {
		sched, err := scheduler.NewScheduler(a.logger, jobs)
		if err != nil {
			return err
		}
		g.Go(func() error {
			a.logger.Info("Starting scheduler...")
			if err := sched.Start(gCtx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			a.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := sched.Stop(); err != nil {
				a.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	a.logger.Info("Relay running. Waiting for shutdown signal or error...")
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Relay stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Relay stopped gracefully.")
	return nil
}
