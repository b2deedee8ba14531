package observer

import (
	"sync"
	"time"
)

// movingCounters is an event counter over a sliding history of steps
type movingCounters struct {
	total    int
	step     int64
	counters [][2]int64 // start second, count
}

func newMovingCounters(depth int, step time.Duration) movingCounters {
	return movingCounters{
		step:     int64(step / time.Second),
		counters: make([][2]int64, depth),
	}
}

func (m *movingCounters) refresh(now int64, increase int) {
	last := len(m.counters) - 1
	if m.counters[last][0]+m.step < now {
		m.total -= int(m.counters[0][1])
		m.counters = append(m.counters[1:], [2]int64{now, 0})
		last = len(m.counters) - 1
	}
	m.counters[last][1] += int64(increase)
	m.total += increase
}

// NotificationCadencer limits motion image notifications. Every batch
// of notifications within the history doubles the wait, from duration
// up to maxDuration.
type NotificationCadencer struct {
	mu          sync.Mutex
	counters    movingCounters
	last        int64
	batch       int
	duration    int64
	maxDuration int64
	now         func() time.Time
}

// NewNotificationCadencer creates a cadencer with a 20 x 1 minute history
func NewNotificationCadencer(batch int, duration, maxDuration time.Duration) *NotificationCadencer {
	if batch <= 0 {
		batch = 5
	}
	return &NotificationCadencer{
		counters:    newMovingCounters(20, time.Minute),
		batch:       batch,
		duration:    int64(duration / time.Second),
		maxDuration: int64(maxDuration / time.Second),
		now:         time.Now,
	}
}

// DefaultNotificationCadencer allows 5 notifications before waiting 15s, capped at 60s
func DefaultNotificationCadencer() *NotificationCadencer {
	return NewNotificationCadencer(5, 15*time.Second, time.Minute)
}

// CanNotify reports whether a notification may be sent now and records it if so
func (c *NotificationCadencer) CanNotify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().Unix()
	c.counters.refresh(now, 0)

	var wait int64
	if batches := c.counters.total / c.batch; batches >= 1 {
		wait = min((int64(1)<<(batches-1))*c.duration, c.maxDuration)
	}

	if c.last+wait <= now {
		c.counters.refresh(now, 1)
		c.last = now
		return true
	}
	return false
}

// Refresh rolls the history forward without counting
func (c *NotificationCadencer) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters.refresh(c.now().Unix(), 0)
}
