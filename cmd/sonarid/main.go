// Command sonarid is the voice-conferencing relay server: it accepts
// PCM audio frames from many peers, mixes concurrently speaking
// clients together, and fans the mix back out in real time.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sonari-audio/sonari/internal/config"
	"github.com/sonari-audio/sonari/internal/logging"
	"github.com/sonari-audio/sonari/internal/relay"
	"github.com/sonari-audio/sonari/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized.
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func startMetricsServer(addr string, logger *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func printBanner(port int) {
	info := version.Get()
	log.Println("sonari voice relay")
	log.Printf("  version %s (%s) built %s, %s", info.Version, info.Commit, info.BuildTime, info.GoVersion)
	log.Printf("  PCM 2ch 48kHz 16-bit, 20ms frames")
	log.Printf("listening on %d", port)
}

func main() {
	cfg := setupConfig()

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	metricsSrv := startMetricsServer(cfg.MetricsAddr, logger)
	if metricsSrv != nil {
		defer func() { _ = metricsSrv.Shutdown(context.Background()) }()
	}

	srv := relay.NewServer(clockwork.NewRealClock(), logger, relay.ThrottleConfig{
		PerSecond: cfg.AcceptRatePerSecond,
		Burst:     cfg.AcceptBurst,
	})

	if err := srv.Listen(context.Background()); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}

	printBanner(relay.ListenPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	shutdownDone := make(chan struct{})
	go func() {
		<-sigCh
		logger.Info("shutdown signal received, cleaning up")
		srv.Shutdown()
		close(shutdownDone)
	}()

	if err := srv.Serve(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	<-shutdownDone

	logger.Info("server stopped gracefully")
}
