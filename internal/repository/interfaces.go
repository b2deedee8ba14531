package repository

import (
	"context"
	"time"

	"go-motion-inspector/internal/motion"
	"go-motion-inspector/pkg/models"
)

// SnapshotRepository defines the interface for stored snapshots
type SnapshotRepository interface {
	// Save stores a snapshot and returns its id
	Save(snapshot *motion.Snapshot) (string, error)

	// Get retrieves a stored snapshot
	Get(id string) (*SnapshotEntry, error)

	// Delete removes and disposes a snapshot
	Delete(id string) error

	// Len returns the number of stored snapshots
	Len() int

	// Close disposes every stored snapshot
	Close() error
}

// SnapshotEntry is a stored snapshot
type SnapshotEntry struct {
	ID        string
	CreatedAt time.Time
	Snapshot  *motion.Snapshot
}

// HistoricRepository defines the interface for the motion historic index
type HistoricRepository interface {
	// Add records an archived motion image and returns its row id
	Add(ctx context.Context, item models.HistoricItem) (int64, error)

	// List returns the newest items first, at most limit of them
	List(ctx context.Context, limit int) ([]models.HistoricItem, error)

	// Count returns the number of recorded items
	Count(ctx context.Context) (int, error)

	Close() error
}
