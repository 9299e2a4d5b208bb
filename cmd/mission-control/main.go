package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shipkit/mission-control/internal/codebase"
	"github.com/shipkit/mission-control/internal/config"
	"github.com/shipkit/mission-control/internal/eventlog"
	"github.com/shipkit/mission-control/internal/health"
	"github.com/shipkit/mission-control/internal/inbox"
	"github.com/shipkit/mission-control/internal/metrics"
	"github.com/shipkit/mission-control/internal/recommend"
	"github.com/shipkit/mission-control/internal/registry"
	"github.com/shipkit/mission-control/internal/server"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("addr", cfg.ListenAddr()).
		Str("data_dir", cfg.DataDir).
		Msg("starting mission control")

	for _, dir := range []string{cfg.DataDir, cfg.CodebasesDir(), cfg.InboxDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
		}
	}

	// Process-wide state, loaded from disk before serving requests.
	reg := registry.New(cfg.InstanceStaleAfter, cfg.InstanceEvictAfter, logger)

	events, err := eventlog.New(cfg.EventLogPath(), cfg.MaxEvents, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open event log")
	}

	codebases, err := codebase.New(cfg.CodebasesDir(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open codebase store")
	}

	queue, err := inbox.New(cfg.InboxDir(), cfg.ProcessedRetention, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open command inbox")
	}

	knowledge := recommend.DefaultKnowledge()
	if cfg.KnowledgeFile != "" {
		loaded, err := recommend.LoadKnowledge(cfg.KnowledgeFile)
		if err != nil {
			logger.Warn().Err(err).Msg("ignoring knowledge file, using built-in table")
		} else {
			knowledge = loaded
			logger.Info().Str("file", cfg.KnowledgeFile).Int("skills", len(loaded)).Msg("loaded knowledge table")
		}
	}
	engine := recommend.NewEngine(knowledge)

	checker := health.NewChecker(logger)
	checker.Register("data_dir", func(ctx context.Context) health.Status {
		probe := filepath.Join(cfg.DataDir, ".probe")
		if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
			return health.StatusDown
		}
		os.Remove(probe)
		return health.StatusOK
	})

	collector := metrics.New()

	srv := server.New(cfg, reg, events, codebases, engine, queue, checker, collector, logger)

	// Background sweeps: instance staleness/eviction and inbox retention.
	done := make(chan struct{})
	go reg.Run(done, cfg.InstanceSweepInterval)
	go queue.Run(done, cfg.InboxSweepInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info().Str("local", "http://localhost:"+listenPort(cfg)).Msg("mission control running")
	if ip := localIP(); ip != "" && cfg.Host != "127.0.0.1" && cfg.Host != "localhost" {
		logger.Info().Str("network", "http://"+ip+":"+listenPort(cfg)).Msg("reachable on local network")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down mission control")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}

	close(done)
	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

func listenPort(cfg *config.Config) string {
	_, port, err := net.SplitHostPort(cfg.ListenAddr())
	if err != nil {
		return "7777"
	}
	return port
}

// localIP returns the machine's first non-loopback IPv4 address for the
// startup log, or empty when none is found.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}
