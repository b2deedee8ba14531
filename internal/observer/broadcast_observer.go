package observer

import (
	"context"

	"go-motion-inspector/pkg/models"
)

// Broadcaster fans events out to live clients
type Broadcaster interface {
	Broadcast(event models.MotionEvent)
}

// BroadcastObserver forwards motion level events to a Broadcaster
type BroadcastObserver struct {
	target Broadcaster
}

// NewBroadcastObserver creates a new broadcast observer
func NewBroadcastObserver(target Broadcaster) Observer {
	return &BroadcastObserver{target: target}
}

// OnEvent forwards motion, archive and capture failure events
func (o *BroadcastObserver) OnEvent(ctx context.Context, event MotionEvent) {
	switch event.EventType {
	case MotionDetected, MotionImage, MotionCleared, FrameArchived, CaptureFailed:
	default:
		return
	}
	o.target.Broadcast(models.MotionEvent{
		Type:      string(event.EventType),
		Timestamp: event.Timestamp,
		MotionID:  event.MotionID,
		Index:     event.Index,
		Count:     event.DiffCount,
		Path:      event.Path,
		Message:   event.ErrorMessage,
	})
}

// GetObserverName returns the observer name
func (o *BroadcastObserver) GetObserverName() string {
	return "broadcast_observer"
}
