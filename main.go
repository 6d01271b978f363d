package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rivo/tview"
	"golang.org/x/term"

	"github.com/mordilloSan/slogger/internal/config"
	"github.com/mordilloSan/slogger/logger"
	"github.com/mordilloSan/slogger/panel"
)

// Example demonstrating the slogger façade, the log panel and its HTTP view.
//
//	./slogger                     console only
//	./slogger -ui                 console plus terminal panel (Ctrl+L)
//	./slogger -http :9090         serve /entries, /export and /metrics
//	./slogger -config slog.yaml   load settings (SLOGGER_LEVEL overrides level)
func main() {
	configPath := flag.String("config", "", "path to a .yaml, .yml, .json or .json5 config file")
	ui := flag.Bool("ui", false, "show the terminal log panel")
	addr := flag.String("http", "", "serve the log panel over HTTP on this address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("CONFIG", err.Error())
		os.Exit(1)
	}
	if *ui {
		cfg.UI = true
	}
	if *addr != "" {
		cfg.HTTP = *addr
	}

	reg := prometheus.NewRegistry()
	lc := cfg.Logger(term.IsTerminal(int(os.Stdout.Fd())))
	lc.Registerer = reg
	lc.SyslogPrefix = os.Getenv("JOURNAL_STREAM") != ""
	if cfg.UI {
		// The terminal belongs to the panel while it runs.
		lc.Stdout, lc.Stderr = io.Discard, io.Discard
	}
	logger.Init(lc)

	p := panel.New()
	logger.ActivateUI(p)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HTTP != "" {
		srv := &http.Server{
			Addr:         cfg.HTTP,
			Handler:      panel.NewRouter(p, panel.RouterOptions{Gatherer: reg, Logger: logger.Default()}),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("HTTP", "log panel listening on", cfg.HTTP)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP", err.Error())
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if !cfg.UI {
		demo()
		if cfg.HTTP != "" {
			<-ctx.Done()
		}
		return
	}

	app := tview.NewApplication()
	host := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[::b]slogger demo[::-]\n\nCtrl+L toggles the log panel, Enter expands an entry,\nCtrl+X clears, Ctrl+E exports, Ctrl+C quits.")
	exportDir := cfg.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	view := panel.NewView(p, app, host, exportDir)

	go func() {
		<-ctx.Done()
		view.Close()
		app.Stop()
	}()
	go demo()

	err = app.SetRoot(view.Primitive(), true).Run()
	view.Close()
	if err != nil {
		logger.SetDefault(logger.New(logger.Config{}))
		logger.Error("UI", err.Error())
		os.Exit(1)
	}
}

func demo() {
	logger.Log("starting at", time.Now().Format(time.RFC3339))
	logger.Info("hello", "world")
	logger.Error("DB", "connection failed", errors.New("connection timeout"))

	logger.Log("REQUEST", "completed", map[string]any{
		"duration_ms": 42,
		"status":      200,
		"path":        "/api/users",
		"method":      "GET",
	})

	logger.TimeStart("boot", "asset load")
	time.Sleep(120 * time.Millisecond)
	logger.TimeEnd("boot", "asset load")
	logger.TimeEnd("never-started")

	logger.Group("cache")
	logger.Log("lookup", map[string]any{"key": "user:123", "hit": true, "ttl_seconds": 300})
	logger.GroupEnd()

	logger.SetStructured(true)
	logger.Info("AUTH", "token refreshed", map[string]string{"user": "ada"})
	logger.SetStructured(false)

	logger.SetLevel(logger.ErrorLevel)
	logger.Log("suppressed below the error level")
	logger.SetDefaultLevel()
}
