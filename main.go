package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"organizer/pkg/api"
	"organizer/pkg/config"
	"organizer/pkg/logx"
	"organizer/pkg/planner"
	"organizer/pkg/planner/middleware/metrics"
	"organizer/pkg/version"
)

func main() {
	var configPath string
	var host string
	var port int
	var showVersion bool
	flag.StringVar(&configPath, "config", "", "Path to config file (YAML)")
	flag.StringVar(&host, "host", "", "Host to bind to (overrides config)")
	flag.IntVar(&port, "port", 0, "Port to listen on (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("organizer %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		return
	}

	// Use CONFIG_PATH env var if flag not provided
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	logger := logx.NewLogger("main")

	if err := config.LoadConfig(configPath); err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Error("Failed to read config: %v", err)
		os.Exit(1)
	}

	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	var recorder metrics.Recorder = metrics.Nop()
	if cfg.Metrics.Enabled {
		recorder = metrics.NewPrometheusRecorder(cfg.Metrics.Namespace)
	}

	// A missing credential degrades the service instead of killing it: the
	// HTTP surface stays up so the desktop client gets real error responses.
	client, err := planner.NewLLMClient(cfg.Planner, recorder, logger)
	if err != nil {
		logger.Warn("Plan generation disabled: %v", err)
		client = nil
	}

	svc := planner.NewService(client, planner.Options{
		MaxTokens:   cfg.Planner.MaxTokens,
		Temperature: cfg.Planner.Temperature,
		Strict:      cfg.Planner.Strict,
		Recorder:    recorder,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(svc, cfg.Metrics.Enabled)
	if err := server.StartServer(ctx, cfg.Server.Host, cfg.Server.Port); err != nil {
		logger.Error("Failed to start server: %v", err)
		os.Exit(1)
	}

	logger.Info("organizer %s ready: model=%s generation=%v", version.Version, svc.ModelName(), svc.Enabled())

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	<-server.ShutdownDone()
}
