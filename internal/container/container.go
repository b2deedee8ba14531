package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go-motion-inspector/internal/analyzer"
	"go-motion-inspector/internal/config"
	"go-motion-inspector/internal/factory"
	"go-motion-inspector/internal/logger"
	"go-motion-inspector/internal/observer"
	"go-motion-inspector/internal/repository"
	"go-motion-inspector/internal/service"
	"go-motion-inspector/internal/strategy"
	"go-motion-inspector/internal/tracker"
	"go-motion-inspector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	motionConfig   *config.MotionConfig
	registry       *prometheus.Registry
	motionAnalyzer analyzer.MotionAnalyzer
	snapshots      repository.SnapshotRepository
	historic       repository.HistoricRepository
	publisher      *observer.EventPublisher
	hub            *transport.Hub
	motionService  service.MotionService
	monitor        *service.Monitor
	monitorDone    chan struct{}
	handler        http.Handler
}

// NewContainer builds the dependency graph. The monitor is only created
// when a camera is configured.
func NewContainer(cfg *config.Config, motionCfg *config.MotionConfig) (*Container, error) {
	tolerance, err := motionCfg.Tolerance()
	if err != nil {
		return nil, fmt.Errorf("invalid tolerance: %w", err)
	}
	scale, err := motionCfg.DecodeScale()
	if err != nil {
		return nil, err
	}

	analyzerCfg := analyzer.DefaultConfig()
	analyzerCfg.Tolerance = tolerance
	analyzerCfg.Scale = scale
	analyzerCfg.Workers = motionCfg.Workers
	motionAnalyzer, err := analyzer.NewMotionAnalyzer(analyzerCfg)
	if err != nil {
		return nil, err
	}

	c := &Container{
		config:         cfg,
		motionConfig:   motionCfg,
		registry:       prometheus.NewRegistry(),
		motionAnalyzer: motionAnalyzer,
		snapshots:      repository.NewMemorySnapshotRepository(motionCfg.SnapshotCapacity),
		publisher:      observer.NewEventPublisher(),
		hub:            transport.NewHub(),
	}

	c.historic, err = repository.NewSQLiteHistoricRepository(motionCfg.HistoricDB)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open historic: %w", err)
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	c.publisher.Subscribe(observer.NewMetricsObserver(c.registry))
	c.publisher.Subscribe(observer.NewBroadcastObserver(c.hub))

	c.motionService = service.NewMotionService(motionAnalyzer, c.snapshots, c.historic, c.publisher)

	if motionCfg.Camera.Type != "" {
		if c.monitor, err = c.newMonitor(); err != nil {
			c.Close()
			return nil, err
		}
	}

	deps := transport.Dependencies{
		Service:  c.motionService,
		Hub:      c.hub,
		Gatherer: c.registry,
	}
	if c.monitor != nil {
		deps.Monitor = c.monitor
	}
	c.handler = transport.NewHandler(deps, cfg)

	return c, nil
}

func (c *Container) newMonitor() (*service.Monitor, error) {
	components := factory.NewComponentFactory(c.config.CaptureTimeout)

	source, err := components.CameraFactory.CreateSource(c.motionConfig.Camera)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}
	archive, err := components.ArchiveFactory.CreateArchive(c.motionConfig.Archive)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	frames, err := tracker.New(c.motionConfig.Tracker, strategy.NewColorStrategy(c.motionAnalyzer))
	if err != nil {
		return nil, err
	}

	n := c.motionConfig.Notifications
	return service.NewMonitor(
		service.MonitorConfig{
			FastPolling:    c.motionConfig.Polling.Fast,
			SlowPolling:    c.motionConfig.Polling.Slow,
			StateDuration:  c.motionConfig.Polling.StateDuration,
			CaptureTimeout: c.config.CaptureTimeout,
		},
		source,
		c.motionAnalyzer,
		frames,
		archive,
		c.historic,
		c.publisher,
		observer.NewNotificationCadencer(n.Batch, n.Duration, n.MaxDuration),
	), nil
}

// Start runs the camera monitor in the background, if any. It stops when ctx is done.
func (c *Container) Start(ctx context.Context) {
	if c.monitor == nil {
		logger.Logger.Info("No camera configured, monitor disabled")
		return
	}
	c.monitorDone = make(chan struct{})
	go func() {
		defer close(c.monitorDone)
		if err := c.monitor.Run(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("Monitor stopped")
		}
	}()
}

// Close releases every resource held by the container. The context given
// to Start must be cancelled first.
func (c *Container) Close() {
	if c.monitorDone != nil {
		<-c.monitorDone
	}
	if c.monitor != nil {
		c.monitor.Close()
	}
	if c.hub != nil {
		c.hub.Close()
	}
	if c.snapshots != nil {
		c.snapshots.Close()
	}
	if c.historic != nil {
		if err := c.historic.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close historic")
		}
	}
	if c.motionAnalyzer != nil {
		c.motionAnalyzer.Close()
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the motion service
func (c *Container) Service() service.MotionService {
	return c.motionService
}
