package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/study-runner/internal/api"
	"github.com/phrazzld/study-runner/internal/config"
	"github.com/phrazzld/study-runner/internal/events"
	"github.com/phrazzld/study-runner/internal/fingerprint"
	"github.com/phrazzld/study-runner/internal/platform/fixture"
	"github.com/phrazzld/study-runner/internal/platform/learning"
	"github.com/phrazzld/study-runner/internal/study"
	"github.com/phrazzld/study-runner/internal/task"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	registry *task.Registry
	runner   *task.Runner

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	history      *events.Recorder

	orchestrator *study.Orchestrator
	studyHandler *api.StudyHandler
}

// newApplication wires the orchestrator and its collaborators from cfg.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	fingerprints, err := fingerprint.New([]byte(cfg.Study.FingerprintKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create fingerprint generator: %w", err)
	}

	connector, err := newConnector(cfg.Platform, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform connector: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.history = events.NewRecorder(cfg.Study.HistorySize)
	app.eventEmitter.RegisterHandler(app.history)

	app.registry = task.NewRegistry()
	app.runner = task.NewRunner(app.registry, app.eventEmitter, logger)

	app.orchestrator, err = study.NewOrchestrator(app.registry, app.runner, fingerprints, connector, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create study orchestrator: %w", err)
	}

	app.studyHandler, err = api.NewStudyHandler(app.orchestrator, app.history)
	if err != nil {
		return nil, fmt.Errorf("failed to create study handler: %w", err)
	}

	logger.Info("Application initialized successfully", "platform_mode", cfg.Platform.Mode)
	return app, nil
}

// newConnector returns the platform backend selected by cfg.Mode.
func newConnector(cfg config.PlatformConfig, logger *slog.Logger) (study.Connector, error) {
	switch cfg.Mode {
	case "http":
		client, err := learning.NewClient(learning.Config{
			BaseURL:           cfg.BaseURL,
			Timeout:           time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
			ProgressInterval:  time.Duration(cfg.ProgressIntervalSeconds) * time.Second,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.RequestBurst,
		}, learning.NewCookieCache(), logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using learning gateway", "base_url", cfg.BaseURL)
		return client, nil

	case "fixture":
		catalog, err := fixture.LoadFile(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		platform, err := fixture.New(catalog, cfg.FixtureTimeScale, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using fixture platform",
			"fixture_path", cfg.FixturePath,
			"courses", len(catalog.Courses),
			"time_scale", cfg.FixtureTimeScale)
		return platform, nil

	default:
		return nil, fmt.Errorf("unknown platform mode %q", cfg.Mode)
	}
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup cancels all running jobs and waits for them, bounded by ctx.
func (app *application) cleanup(ctx context.Context) {
	if err := app.runner.Shutdown(ctx); err != nil {
		app.logger.Error("Jobs did not stop in time", "error", err, "active_jobs", app.registry.Len())
	}
	app.logger.Info("Application shutdown completed")
}
