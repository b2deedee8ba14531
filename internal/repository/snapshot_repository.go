package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"go-motion-inspector/internal/motion"
)

type memorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*SnapshotEntry
	capacity  int
	order     []string
}

// NewMemorySnapshotRepository keeps at most capacity snapshots, disposing
// the oldest beyond that. capacity <= 0 means unbounded.
func NewMemorySnapshotRepository(capacity int) SnapshotRepository {
	return &memorySnapshotRepository{
		snapshots: make(map[string]*SnapshotEntry),
		capacity:  capacity,
	}
}

func (r *memorySnapshotRepository) Save(snapshot *motion.Snapshot) (string, error) {
	if snapshot == nil || snapshot.State() != motion.StateReady {
		return "", ErrInvalidSnapshot
	}

	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshots == nil {
		return "", ErrRepositoryUnavailable
	}
	r.snapshots[id] = &SnapshotEntry{ID: id, CreatedAt: time.Now(), Snapshot: snapshot}
	r.order = append(r.order, id)

	for r.capacity > 0 && len(r.order) > r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		if e, ok := r.snapshots[oldest]; ok {
			e.Snapshot.Dispose()
			delete(r.snapshots, oldest)
		}
	}
	return id, nil
}

func (r *memorySnapshotRepository) Get(id string) (*SnapshotEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.snapshots[id]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return e, nil
}

func (r *memorySnapshotRepository) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.snapshots[id]
	if ok {
		delete(r.snapshots, id)
		for i, o := range r.order {
			if o == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return ErrSnapshotNotFound
	}
	// Dispose waits for comparisons still reading the snapshot
	e.Snapshot.Dispose()
	return nil
}

func (r *memorySnapshotRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots)
}

func (r *memorySnapshotRepository) Close() error {
	r.mu.Lock()
	entries := r.snapshots
	r.snapshots = nil
	r.order = nil
	r.mu.Unlock()

	for _, e := range entries {
		e.Snapshot.Dispose()
	}
	return nil
}
