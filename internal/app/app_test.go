package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/law-makers/rostercrawl/internal/auth"
	"github.com/law-makers/rostercrawl/internal/config"
	"github.com/law-makers/rostercrawl/internal/utils/output"
	"github.com/rs/zerolog"
)

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg := config.Defaults()
	cfg.JSONLog = true
	var buf bytes.Buffer
	logger := setupLogger(cfg, &buf)

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("expected info to map to warn, got %s", zerolog.GlobalLevel())
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("page", "3").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"page":"3"`) {
		t.Errorf("unexpected log output: %s", out)
	}

	cfg.LogLevel = "debug"
	setupLogger(cfg, &buf)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", zerolog.GlobalLevel())
	}
}

func TestBrowserOptions(t *testing.T) {
	cfg := config.Defaults()
	cfg.Headers = []string{"Accept-Language: ru"}
	cfg.Session = "skaters"
	cfg.Proxy = "http://127.0.0.1:3128"
	a := newTestApp(t, cfg)

	store := auth.NewFileStore(t.TempDir())
	a.sessionsOnce.Do(func() { a.sessions = store })
	if err := store.Save(auth.NewSessionData("skaters", cfg.URL, []auth.Cookie{{Name: "sid", Value: "1"}})); err != nil {
		t.Fatal(err)
	}

	opts, err := a.BrowserOptions()
	if err != nil {
		t.Fatalf("BrowserOptions failed: %v", err)
	}
	if len(opts.Cookies) != 1 || opts.Cookies[0].Name != "sid" {
		t.Errorf("expected session cookies, got %+v", opts.Cookies)
	}
	if opts.Headers["Accept-Language"] != "ru" {
		t.Errorf("expected parsed headers, got %v", opts.Headers)
	}
	if opts.Proxy != cfg.Proxy || !opts.Headless {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestBrowserOptions_MissingSession(t *testing.T) {
	cfg := config.Defaults()
	cfg.Session = "nope"
	a := newTestApp(t, cfg)
	a.sessionsOnce.Do(func() { a.sessions = auth.NewFileStore(t.TempDir()) })

	if _, err := a.BrowserOptions(); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestNewOrchestratorAndExporter(t *testing.T) {
	cfg := config.Defaults()
	cfg.Output = "skaters.xlsx"
	cfg.HeaderLocale = "ru"
	a := newTestApp(t, cfg)

	exp, err := a.NewExporter()
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}
	if exp.Format() != output.FormatXLSX {
		t.Errorf("expected xlsx exporter, got %s", exp.Format())
	}

	if _, err := a.NewOrchestrator(exp, nil); err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
}
