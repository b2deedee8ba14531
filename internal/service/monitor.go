package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-motion-inspector/internal/analyzer"
	"go-motion-inspector/internal/camera"
	"go-motion-inspector/internal/logger"
	"go-motion-inspector/internal/observer"
	"go-motion-inspector/internal/repository"
	"go-motion-inspector/internal/storage"
	"go-motion-inspector/internal/tracker"
	"go-motion-inspector/pkg/models"
)

// MonitorConfig holds the polling loop settings
type MonitorConfig struct {
	FastPolling    time.Duration
	SlowPolling    time.Duration
	StateDuration  time.Duration
	CaptureTimeout time.Duration
}

// Monitor polls a camera and turns the frame sequence into motion events
type Monitor struct {
	cfg      MonitorConfig
	source   camera.Source
	analyzer analyzer.MotionAnalyzer
	tracker  *tracker.Tracker
	archive  storage.Archive
	historic repository.HistoricRepository
	events   observer.Subject
	cadencer *observer.NotificationCadencer
	log      *logrus.Entry
	now      func() time.Time

	mu            sync.RWMutex
	running       bool
	inMotion      bool
	lastDetection time.Time
	polling       time.Duration
}

// NewMonitor creates a monitor. archive, historic and events may be nil.
func NewMonitor(
	cfg MonitorConfig,
	source camera.Source,
	motionAnalyzer analyzer.MotionAnalyzer,
	frames *tracker.Tracker,
	archive storage.Archive,
	historic repository.HistoricRepository,
	events observer.Subject,
	cadencer *observer.NotificationCadencer,
) *Monitor {
	if cadencer == nil {
		cadencer = observer.DefaultNotificationCadencer()
	}
	return &Monitor{
		cfg:      cfg,
		source:   source,
		analyzer: motionAnalyzer,
		tracker:  frames,
		archive:  archive,
		historic: historic,
		events:   events,
		cadencer: cadencer,
		log:      logger.ForComponent("monitor").WithField("source", source.Name()),
		now:      time.Now,
		polling:  cfg.SlowPolling,
	}
}

// Run polls until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	m.log.Info("Motion monitor started")
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("Motion monitor stopped")
			return ctx.Err()
		case <-timer.C:
		}

		m.Tick(ctx)

		// Polling only slows down once the camera is stabilized
		wait := m.Polling()
		if !m.tracker.Stabilized() {
			wait = 0
		}
		timer.Reset(wait)
	}
}

// Tick runs one capture and detection step
func (m *Monitor) Tick(ctx context.Context) {
	captureCtx := ctx
	if m.cfg.CaptureTimeout > 0 {
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, m.cfg.CaptureTimeout)
		defer cancel()
	}

	start := time.Now()
	encoded, err := m.source.Capture(captureCtx)
	if err != nil {
		m.log.WithError(err).Warn("Capture failed, retrying on next tick")
		m.publish(ctx, observer.MotionEvent{EventType: observer.CaptureFailed, ErrorMessage: err.Error()})
		return
	}

	snapshot, err := m.analyzer.CreateSnapshot(encoded)
	if err != nil {
		m.publish(ctx, observer.MotionEvent{
			EventType:      observer.SnapshotFailed,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
			EncodedSize:    len(encoded),
		})
		return
	}
	m.publish(ctx, observer.MotionEvent{
		EventType:      observer.SnapshotCreated,
		ProcessingTime: time.Since(start),
		Success:        true,
		EncodedSize:    len(encoded),
	})

	now := m.now()
	_, evicted := m.tracker.Push(snapshot, now)
	if evicted != nil && evicted.Detected {
		m.notifyMotion(ctx, evicted, now)
	} else {
		m.clearMotion(ctx, now)
	}
	m.tracker.Release(evicted)

	detection, err := m.tracker.Detect()
	if err != nil {
		m.log.WithError(err).Error("Motion detection failed")
		return
	}
	if detection.Current != nil && detection.Current.Report != nil {
		m.publish(ctx, observer.MotionEvent{
			EventType:      observer.ComparisonCompleted,
			ProcessingTime: time.Since(start),
			Success:        true,
			MotionID:       detection.Current.MotionID,
			Index:          detection.Current.Index,
			DiffCount:      detection.Current.DiffCount(),
		})
	}
	m.log.WithFields(logrus.Fields{
		"groups":   detection.Groups,
		"detected": detection.Detected,
		"trace":    m.tracker.Trace(),
	}).Debug("Motion window")

	m.mu.Lock()
	if detection.FastPolling {
		m.polling = m.cfg.FastPolling
	} else {
		m.polling = m.cfg.SlowPolling
	}
	m.mu.Unlock()

	m.cadencer.Refresh()
}

// notifyMotion archives a detected frame leaving the window and emits the
// motion events
func (m *Monitor) notifyMotion(ctx context.Context, frame *tracker.Frame, now time.Time) {
	path := m.save(ctx, frame)

	m.mu.Lock()
	starting := m.lastDetection.IsZero()
	m.lastDetection = now
	m.inMotion = true
	m.mu.Unlock()

	event := observer.MotionEvent{
		MotionID:  frame.MotionID,
		Index:     frame.Index,
		DiffCount: frame.DiffCount(),
		Path:      path,
		Success:   true,
	}
	if starting {
		event.EventType = observer.MotionDetected
		m.publish(ctx, event)
	}

	if m.cadencer.CanNotify() {
		event.EventType = observer.MotionImage
		event.Metadata = map[string]interface{}{"name": frame.Name()}
		m.publish(ctx, event)
	} else {
		m.log.WithField("name", frame.Name()).Info("Notification too frequent, ignored")
	}
}

// clearMotion ends the motion state once nothing was detected for StateDuration
func (m *Monitor) clearMotion(ctx context.Context, now time.Time) {
	m.mu.Lock()
	if m.lastDetection.IsZero() || !m.lastDetection.Add(m.cfg.StateDuration).Before(now) {
		m.mu.Unlock()
		return
	}
	m.lastDetection = time.Time{}
	m.inMotion = false
	m.mu.Unlock()

	m.publish(ctx, observer.MotionEvent{EventType: observer.MotionCleared, Success: true})
}

func (m *Monitor) save(ctx context.Context, frame *tracker.Frame) string {
	if m.archive == nil {
		return ""
	}
	image, err := frame.Snapshot.Image()
	if err != nil {
		m.log.WithError(err).Error("Motion frame no longer available")
		return ""
	}

	grid := frame.Snapshot.Grid()
	item := models.HistoricItem{
		MotionID:  frame.MotionID,
		Name:      frame.Name(),
		TakenAt:   frame.CapturedAt,
		Width:     grid.Width * frame.Snapshot.Scale(),
		Height:    grid.Height * frame.Snapshot.Scale(),
		DiffCount: frame.DiffCount(),
	}
	if frame.Report != nil {
		item.SquareX = frame.Report.Diff.SquareX
		item.SquareY = frame.Report.Diff.SquareY
		item.Diffs = frame.Report.Diff.Diffs
	}

	path, err := m.archive.Save(ctx, frame.Dir(), frame.Name(), image, item)
	if err != nil {
		m.log.WithError(err).Error("Failed to archive motion frame")
		return ""
	}
	item.Path = path

	if m.historic != nil {
		if _, err := m.historic.Add(ctx, item); err != nil {
			m.log.WithError(err).Error("Failed to record motion historic")
		}
	}
	m.publish(ctx, observer.MotionEvent{
		EventType: observer.FrameArchived,
		Success:   true,
		MotionID:  frame.MotionID,
		Index:     frame.Index,
		DiffCount: item.DiffCount,
		Path:      path,
	})
	return path
}

// Polling returns the current capture interval
func (m *Monitor) Polling() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.polling
}

// Status reports the loop state
func (m *Monitor) Status() models.MonitorStatus {
	m.mu.RLock()
	status := models.MonitorStatus{
		Running:  m.running,
		Source:   m.source.Name(),
		InMotion: m.inMotion,
	}
	if !m.lastDetection.IsZero() {
		last := m.lastDetection
		status.LastDetection = &last
	}
	m.mu.RUnlock()

	status.Frames = len(m.tracker.Frames())
	status.Stabilized = m.tracker.Stabilized()
	status.Trace = m.tracker.Trace()
	return status
}

// Close releases the frames still held by the tracker
func (m *Monitor) Close() {
	m.tracker.Close()
}

func (m *Monitor) publish(ctx context.Context, event observer.MotionEvent) {
	if m.events != nil {
		m.events.NotifyObservers(ctx, event)
	}
}
