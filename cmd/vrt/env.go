package main

import (
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/dom/memdom"
	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scene"
)

// env is the runtime wiring shared by every command.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	diags   *errors.DiagnosticHandler
	printer *errors.Printer
	metrics *metrics.Collector
	tracer  trace.Tracer
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadOrDefault(dir)
}

// newEnv loads the config and builds the env. Logs and diagnostics go to
// stderr.
func newEnv(opts *rootOptions, stderr io.Writer) (*env, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	diags := errors.NewDiagnosticHandler(cfg.Logger(stderr).Handler())
	logger := slog.New(diags)
	slog.SetDefault(logger)

	var tp trace.TracerProvider = noop.NewTracerProvider()
	if cfg.Tracing.Enabled {
		tp = otel.GetTracerProvider()
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		diags:   diags,
		printer: opts.printer(stderr),
		metrics: metrics.NewCollector(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithSubsystem(cfg.Metrics.Subsystem),
		),
		tracer: tp.Tracer(cfg.Tracing.TracerName),
	}, nil
}

// player loads the scene at path and builds a player wired to the env.
func (e *env) player(path string) (*scene.Player, error) {
	s, err := scene.LoadFile(path)
	if err != nil {
		return nil, err
	}

	tracker := reactive.NewTracker(
		reactive.WithEdgePolicy(e.cfg.EdgePolicy()),
		reactive.WithObserver(e.metrics),
	)
	p := scene.NewPlayer(s, memdom.NewDocument(),
		renderer.WithTracker(tracker),
		renderer.WithLogger(e.logger),
		renderer.WithMetrics(e.metrics),
		renderer.WithTracer(e.tracer),
	)
	e.logger.Debug("scene loaded", "scene", s.Name, "frames", s.Len(), "edge_policy", tracker.Policy().String())
	return p, nil
}
