// internal/app/app.go

// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/law-makers/rostercrawl/internal/auth"
	"github.com/law-makers/rostercrawl/internal/browser"
	"github.com/law-makers/rostercrawl/internal/config"
	"github.com/law-makers/rostercrawl/internal/engine"
	"github.com/law-makers/rostercrawl/internal/ratelimit"
	"github.com/law-makers/rostercrawl/internal/retry"
	"github.com/law-makers/rostercrawl/internal/utils/headers"
	"github.com/law-makers/rostercrawl/internal/utils/output"
	"github.com/law-makers/rostercrawl/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Browser sessions are not
// owned by it: each run acquires and releases its own.
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Throttle *ratelimit.HostThrottle

	sessionsOnce sync.Once
	sessions     *auth.Store
	sessionsErr  error

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It configures the global logger and the page-advance throttle. The
// session store is opened on first use since probing the keyring can
// prompt on some desktops.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := setupLogger(cfg, os.Stderr)

	throttle := ratelimit.NewHostThrottle(cfg.PageRateLimitRPS, cfg.PageRateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.PageRateLimitRPS).
		Int("burst", cfg.PageRateLimitBurst).
		Msg("Page throttle initialized")

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Throttle:  throttle,
		startTime: time.Now(),
	}, nil
}

// setupLogger installs the global zerolog logger. Info is hidden unless
// -v is given; the progress bar covers routine output.
func setupLogger(cfg *config.Config, w io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.InfoLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	log.Logger.Debug().
		Str("level", level.String()).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")
	return &log.Logger
}

// Sessions returns the cookie session store
func (a *Application) Sessions() (*auth.Store, error) {
	a.sessionsOnce.Do(func() {
		a.sessions, a.sessionsErr = auth.NewStore()
		if a.sessionsErr == nil {
			a.Logger.Debug().Str("backend", a.sessions.Backend()).Msg("Session store opened")
		}
	})
	return a.sessions, a.sessionsErr
}

// BrowserOptions derives the browser launch options from the config,
// loading the named session's cookies when one is configured.
func (a *Application) BrowserOptions() (browser.Options, error) {
	cfg := a.Config
	hdrs, err := headers.ParseHeaders(cfg.Headers)
	if err != nil {
		return browser.Options{}, err
	}

	opts := browser.Options{
		Headless:      cfg.Headless,
		UserAgent:     cfg.UserAgent,
		Proxy:         cfg.Proxy,
		ChromePath:    cfg.ChromePath,
		ActionTimeout: cfg.ActionTimeout,
		Headers:       hdrs,
	}

	if cfg.Session != "" {
		store, err := a.Sessions()
		if err != nil {
			return browser.Options{}, fmt.Errorf("failed to open session store: %w", err)
		}
		session, err := store.Load(cfg.Session)
		if errors.Is(err, auth.ErrSessionExpired) {
			a.Logger.Warn().Str("session", cfg.Session).Msg("Session expired, cookies may be rejected")
		} else if err != nil {
			return browser.Options{}, err
		}
		opts.Cookies = session.Cookies
	}
	return opts, nil
}

// NewSession launches a browser configured from the application config.
// It is the session factory handed to the orchestrator.
func (a *Application) NewSession(ctx context.Context) (engine.Driver, error) {
	opts, err := a.BrowserOptions()
	if err != nil {
		return nil, err
	}
	return browser.NewSession(ctx, opts)
}

// NewOrchestrator builds a scrape run from the config. exporter may be nil.
func (a *Application) NewOrchestrator(exporter engine.Exporter, onPage func(engine.PageEvent)) (*engine.Orchestrator, error) {
	cfg := a.Config

	filters, err := engine.NewFilterSelector(cfg.Selectors.FilterOption)
	if err != nil {
		return nil, err
	}
	extractor, err := engine.NewRowExtractor(cfg.Selectors.RowSelectors(), models.RowPolicy(cfg.OnRowError))
	if err != nil {
		return nil, err
	}

	pagination := engine.PaginationOptions{
		NextControl:    engine.CSS(cfg.Selectors.NextControl),
		DisabledMarker: cfg.Selectors.DisabledMarker,
		AdvanceScript:  cfg.Selectors.AdvanceScript,
		SettleMode:     models.SettleMode(cfg.SettleMode),
		SettleDelay:    cfg.SettleDelay,
		SettleTimeout:  cfg.SettleTimeout,
		PollInterval:   cfg.PollInterval,
		Throttle:       a.Throttle,
		ThrottleKey:    cfg.URL,
	}

	rc := retry.DefaultConfig()
	rc.MaxAttempts = cfg.NavigateAttempts

	opts := engine.Options{
		URL:          cfg.URL,
		Filters:      cfg.Filters,
		Fullscreen:   cfg.Fullscreen,
		MaxPages:     cfg.MaxPages,
		ResolveLinks: cfg.AbsoluteLinks,
		Retry:        rc,
		OnPage:       onPage,
	}
	if cfg.Selectors.Ready != "" {
		opts.ReadyLocator = engine.CSS(cfg.Selectors.Ready)
	}

	return engine.NewOrchestrator(opts, a.NewSession, filters, extractor, pagination, exporter)
}

// NewExporter creates the record exporter for the configured output
func (a *Application) NewExporter() (*output.Exporter, error) {
	header, err := output.Header(a.Config.HeaderLocale)
	if err != nil {
		return nil, err
	}
	return output.NewExporter(a.Config.Output, header)
}

// Close releases application resources.
//
// A context with a timeout should be provided to prevent indefinite blocking.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
