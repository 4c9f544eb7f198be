package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/me/quantsched/internal/config"
	"github.com/me/quantsched/internal/logging"
	"github.com/me/quantsched/internal/queue"
	"github.com/me/quantsched/internal/resource"
	"github.com/me/quantsched/internal/server"
)

func main() {
	cfg := config.DefaultServerConfig()

	configFile := flag.String("config", "", "Path to YAML config file")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Queue worker poll interval")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	if *configFile != "" {
		loaded, err := config.LoadServerConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
		// Flags given after -config still win.
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "addr":
				cfg.Addr = f.Value.String()
			case "log-level":
				cfg.LogLevel = f.Value.String()
			case "log-format":
				cfg.LogFormat = f.Value.String()
			case "poll-interval":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					cfg.PollInterval = d
				}
			}
		})
	}

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	sampler, err := resource.NewSystemSampler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize resource sampler: %v\n", err)
		os.Exit(1)
	}

	profile := resource.ProfileFor(cfg.DevMode)
	monitor, err := resource.NewMonitor(profile, sampler, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize resource monitor: %v\n", err)
		os.Exit(1)
	}
	logger.Info("hardware detected",
		"cpu_cores", monitor.TotalCPUCores(),
		"total_ram", humanize.IBytes(uint64(monitor.TotalRAMGB()*(1<<30))),
		"buffer_percent", profile.BufferPercent*100,
		"dev_mode", cfg.DevMode)

	q := queue.New(monitor, logger)
	worker := queue.NewWorker(q, queue.WorkerConfig{PollInterval: cfg.PollInterval}, logger)

	srv := server.New(cfg, monitor, q, logger)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go worker.Start(ctx)

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Stop the queue worker before the HTTP server.
	if err := worker.Stop(); err != nil {
		logger.Error("worker stop error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
