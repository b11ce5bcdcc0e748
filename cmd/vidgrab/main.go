// Command vidgrab runs the video download orchestration service: an HTTP API
// that probes a link's available qualities, downloads a chosen one to a temp
// file, and tracks users and download statistics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vidgrab/vidgrab/internal/broadcast"
	"github.com/vidgrab/vidgrab/internal/download"
	"github.com/vidgrab/vidgrab/internal/metrics"
	"github.com/vidgrab/vidgrab/internal/platform"
	"github.com/vidgrab/vidgrab/internal/server"
	"github.com/vidgrab/vidgrab/internal/store"
)

var version = "dev"

type cli struct {
	Addr          string           `help:"Address to listen on." default:":8080"`
	DownloadDir   string           `help:"Directory for downloaded files." default:"downloads"`
	DBPath        string           `help:"Path to the statistics database." default:"vidgrab.db"`
	SessionTTL    time.Duration    `help:"How long probed video info stays cached per user (0 disables expiry)." default:"30m"`
	YtdlpPath     string           `help:"Path to the yt-dlp binary." default:"yt-dlp"`
	NotifyWebhook string           `help:"URL the broadcast endpoint posts messages to (empty disables broadcasting)."`
	ProbeTimeout  time.Duration    `help:"Timeout for metadata probes." default:"30s"`
	LogLevel      string           `help:"Log level (debug, info, warn, error)." enum:"debug,info,warn,error" default:"info"`
	LogFormat     string           `help:"Log format (text, json)." enum:"text,json" default:"text"`
	Version       kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	var flags cli
	kctx := kong.Parse(&flags,
		kong.Name("vidgrab"),
		kong.Description("Video download orchestration service."),
		kong.Vars{"version": version},
	)
	kctx.FatalIfErrorf(run(flags))
}

func run(flags cli) error {
	logger, err := newLogger(flags.LogLevel, flags.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if err := platform.EnsureDir(flags.DownloadDir); err != nil {
		return fmt.Errorf("ensuring download dir: %w", err)
	}

	st := store.New(store.WithLogger(logger))
	if err := st.Open(flags.DBPath); err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = st.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.New(registry)

	ytdlp := platform.NewYTDLP(
		platform.WithBinary(flags.YtdlpPath),
		platform.WithProbeTimeout(flags.ProbeTimeout),
	)

	engine := download.NewService(ytdlp, ytdlp, download.Config{
		DownloadDir: flags.DownloadDir,
		SessionTTL:  flags.SessionTTL,
		Logger:      logger,
	},
		download.WithRecorder(st),
		download.WithObserver(engineMetrics),
	)
	engine.Start()
	defer engine.Stop()

	var serverOpts []server.Option
	if flags.NotifyWebhook != "" {
		sender := broadcast.NewWebhookSender(flags.NotifyWebhook)
		serverOpts = append(serverOpts, server.WithBroadcaster(broadcast.NewService(st, sender, logger)))
	}

	srv := server.New(server.Config{
		Address:  flags.Addr,
		Registry: registry,
		Logger:   logger,
	}, engine, st, st, serverOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("vidgrab started", "version", version, "address", flags.Addr,
		"download_dir", flags.DownloadDir, "db", flags.DBPath)

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: lvl})
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return slog.New(handler), nil
}
