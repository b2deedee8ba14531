package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MotionEvent represents something that happened in the detection pipeline
type MotionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	MotionID       int                    `json:"motion_id,omitempty"`
	Index          int                    `json:"index,omitempty"`
	DiffCount      int                    `json:"diff_count,omitempty"`
	EncodedSize    int                    `json:"encoded_size,omitempty"`
	Path           string                 `json:"path,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of motion event
type EventType string

const (
	// SnapshotCreated when a frame was decoded into a snapshot
	SnapshotCreated EventType = "snapshot_created"
	// SnapshotFailed when a frame could not be decoded
	SnapshotFailed EventType = "snapshot_failed"
	// ComparisonCompleted when two snapshots were compared
	ComparisonCompleted EventType = "comparison_completed"
	// MotionDetected when a motion starts
	MotionDetected EventType = "motion_detected"
	// MotionImage when a motion image notification is emitted
	MotionImage EventType = "motion_image"
	// MotionCleared when no motion was seen for a while
	MotionCleared EventType = "motion_cleared"
	// FrameArchived when a motion frame was written to the archive
	FrameArchived EventType = "frame_archived"
	// CaptureFailed when the camera did not deliver a frame
	CaptureFailed EventType = "capture_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event MotionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event MotionEvent)
}

// LoggingObserver logs motion events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles motion events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event MotionEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.MotionID != 0 {
		fields["motion_id"] = event.MotionID
	}
	if event.Index != 0 {
		fields["index"] = event.Index
	}
	if event.DiffCount != 0 {
		fields["diff_count"] = event.DiffCount
	}
	if event.Path != "" {
		fields["path"] = event.Path
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case SnapshotCreated, ComparisonCompleted:
		entry.Debug("Motion pipeline step completed")
	case SnapshotFailed:
		entry.Warn("Frame could not be decoded")
	case CaptureFailed:
		entry.Error("Camera capture failed")
	case MotionDetected:
		entry.Info("Motion detected")
	case MotionImage:
		entry.Info("Motion image notified")
	case MotionCleared:
		entry.Info("No more motion")
	case FrameArchived:
		entry.Info("Motion frame archived")
	default:
		entry.Info("Motion event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event MotionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
