package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lgiavedoni/claw-tools/internal/classify"
	"github.com/lgiavedoni/claw-tools/internal/config"
	"github.com/lgiavedoni/claw-tools/internal/interfaces"
	"github.com/lgiavedoni/claw-tools/internal/metrics"
	"github.com/lgiavedoni/claw-tools/internal/parser"
	"github.com/lgiavedoni/claw-tools/internal/reader"
	"github.com/lgiavedoni/claw-tools/internal/server"
	"github.com/lgiavedoni/claw-tools/internal/service"
	"github.com/lgiavedoni/claw-tools/internal/types"
	"github.com/lgiavedoni/claw-tools/web"
)

// Build information (set by build script)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Application represents the main application
type Application struct {
	config      *types.Config
	feedService interfaces.FeedService
	httpServer  *server.HTTPServer
	monitor     *metrics.Monitor

	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetPrefix("[clawtail] ")

	log.Printf("clawtail v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	app, err := NewApplication()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	log.Printf("clawtail started successfully")
	log.Printf("Watching %s (default file %s)", app.config.LogDir, app.config.LogFile)
	log.Printf("Dashboard available at http://localhost:%d", app.config.HTTPPort)

	<-sigChan
	log.Printf("Shutdown signal received, stopping application...")

	if err := app.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}

	log.Printf("clawtail stopped successfully")
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	app.initializeComponents()
	return app, nil
}

// initializeComponents wires the parse/classify pipeline and the server
func (app *Application) initializeComponents() {
	classifierCfg := classify.DefaultConfig()
	classifierCfg.AgentSentinel = app.config.AgentName
	if len(app.config.SuppressedSubsystems) > 0 {
		classifierCfg.SuppressedSubsystems = app.config.SuppressedSubsystems
	}

	feedService := service.NewFeedService(
		parser.NewLineParser(),
		classify.NewClassifier(classifierCfg),
		reader.NewFileReader(),
	)

	app.monitor = metrics.NewMonitor(metrics.GetFeedMetrics())
	feedService.SetMonitor(app.monitor)

	app.feedService = feedService
	app.httpServer = server.NewHTTPServer(app.config, feedService, web.GetStaticFS())
}

// Start starts all application components
func (app *Application) Start() error {
	go app.monitor.Start(app.ctx, 15*time.Second)

	if err := app.httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops all application components
func (app *Application) Stop() error {
	app.cancel()

	if app.httpServer != nil {
		if err := app.httpServer.Stop(); err != nil {
			return fmt.Errorf("HTTP server stop error: %w", err)
		}
	}
	return nil
}
