// Package tracker groups consecutive snapshots into motions and decides
// whether a sequence is a real motion, a glitch or a new background.
package tracker

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go-motion-inspector/internal/motion"
	"go-motion-inspector/pkg/models"
)

// Config holds the sequence thresholds.
type Config struct {
	// MaxImages is the size of the frame window.
	MaxImages int `yaml:"max_motion_images"`
	// Stabilization is the number of frames ignored after start.
	Stabilization int `yaml:"stabilization_camera"`
	// DifferencesDetection is the minimum differing block count of a motion frame.
	DifferencesDetection int `yaml:"differences_detection"`
	// ThresholdMotion is the number of distinct motion ids that confirms a motion.
	ThresholdMotion int `yaml:"threshold_motion"`
	// ThresholdGlitch is the number of distinct motion ids checked for glitches.
	ThresholdGlitch int `yaml:"threshold_glitch"`
	// DarkLight is the mean light under which frames never open a new motion.
	DarkLight int `yaml:"dark_light"`
}

// DefaultConfig returns the factory thresholds.
func DefaultConfig() Config {
	return Config{
		MaxImages:            10,
		Stabilization:        8,
		DifferencesDetection: 4,
		ThresholdMotion:      3,
		ThresholdGlitch:      2,
		DarkLight:            20,
	}
}

// Validate checks that the thresholds are usable.
func (c Config) Validate() error {
	if c.MaxImages < 2 {
		return fmt.Errorf("max_motion_images must be >= 2 (got %d)", c.MaxImages)
	}
	if c.Stabilization < 0 || c.DifferencesDetection < 1 || c.ThresholdMotion < 1 || c.ThresholdGlitch < 0 {
		return fmt.Errorf("invalid tracker thresholds %+v", c)
	}
	return nil
}

// Comparer compares two snapshots.
type Comparer interface {
	Compare(current, previous *motion.Snapshot) (*models.Report, error)
}

// Frame is one snapshot in the window.
type Frame struct {
	Snapshot   *motion.Snapshot
	Index      int
	MotionID   int // 0 while unassigned
	Report     *models.Report
	Detected   bool
	CapturedAt time.Time
}

// DiffCount is the differing block count of the last comparison.
func (f *Frame) DiffCount() int { return f.Report.Count() }

// Name is the archive base name of the frame.
func (f *Frame) Name() string {
	return fmt.Sprintf("%s Id=%d D=%d", f.CapturedAt.Format("2006-01-02_15-04-05"), f.Index, f.DiffCount())
}

// Dir is the archive directory, one per five minutes.
func (f *Frame) Dir() string {
	t := f.CapturedAt
	return fmt.Sprintf("%04d/%02d/%02d/%02dh%02d", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%5)
}

// Detection is the outcome of Tracker.Detect.
type Detection struct {
	Detected    bool
	FastPolling bool
	Groups      int
	Current     *Frame
}

// Tracker keeps the newest frames and assigns motion ids. It owns the
// snapshots of the window and of the background.
type Tracker struct {
	mu         sync.Mutex
	cfg        Config
	comparer   Comparer
	frames     []*Frame // newest first
	background *Frame
	index      int
	motionID   int
}

// New creates a tracker.
func New(cfg Config, comparer Comparer) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg, comparer: comparer}, nil
}

// Push adds the newest snapshot. When the window is full the oldest
// frame is removed and returned; the caller archives it when Detected
// and hands it back to Release.
func (t *Tracker) Push(s *motion.Snapshot, at time.Time) (current *Frame, evicted *Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.frames) >= t.cfg.MaxImages {
		evicted = t.frames[len(t.frames)-1]
		t.frames = t.frames[:len(t.frames)-1]
	}
	t.index++
	current = &Frame{Snapshot: s, Index: t.index, CapturedAt: at}
	t.frames = append([]*Frame{current}, t.frames...)
	return current, evicted
}

// Release disposes the snapshot of a frame that left the window, unless
// it is still the background.
func (t *Tracker) Release(f *Frame) {
	if f == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseLocked(f)
}

func (t *Tracker) releaseLocked(f *Frame) {
	if f == t.background {
		return
	}
	for _, w := range t.frames {
		if w == f {
			return
		}
	}
	f.Snapshot.Dispose()
}

// Stabilized reports whether enough frames were captured since start.
func (t *Tracker) Stabilized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stabilized()
}

func (t *Tracker) stabilized() bool {
	n := len(t.frames)
	return n >= t.cfg.Stabilization || n >= t.cfg.MaxImages
}

func (t *Tracker) detected(r *models.Report) bool {
	return r != nil && r.Count() >= t.cfg.DifferencesDetection
}

// Detect compares the newest frame with the window and decides whether
// the window holds a motion.
func (t *Tracker) Detect() (Detection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	groups, err := t.assign()
	if err != nil {
		return Detection{}, err
	}

	var d Detection
	d.Groups = len(groups)
	if len(t.frames) > 0 {
		d.Current = t.frames[0]
	}

	switch {
	case d.Groups == 0:
	case d.Groups >= t.cfg.ThresholdMotion:
		d.Detected, d.FastPolling = true, true
	case d.Groups == 1:
		old := t.background
		t.background = t.frames[0]
		if old != nil && old != t.background {
			t.releaseLocked(old)
		}
	case d.Groups <= t.cfg.ThresholdGlitch:
		d.Detected, d.FastPolling = true, true
		for _, members := range groups {
			if members <= 1 {
				d.Detected = false
				break
			}
		}
	}

	if d.Detected {
		for _, f := range t.frames {
			if t.detected(f.Report) {
				f.Detected = true
			}
		}
	}
	return d, nil
}

// assign gives the newest frame a motion id and counts frames per id.
func (t *Tracker) assign() (map[int]int, error) {
	groups := map[int]int{}
	if len(t.frames) < 2 {
		return groups, nil
	}

	current := t.frames[0]
	assigned := false
	for _, previous := range t.frames[1:] {
		report, err := t.comparer.Compare(current.Snapshot, previous.Snapshot)
		if err != nil {
			return nil, err
		}
		current.Report = report

		if !t.stabilized() {
			current.Report = nil
			assigned = true
			break
		}
		if current.Snapshot.Light() <= t.cfg.DarkLight || !t.detected(report) {
			inherit(current, previous.MotionID)
			assigned = true
			break
		}
	}
	if !assigned {
		t.motionID++
		inherit(current, t.motionID)
		if t.background != nil {
			report, err := t.comparer.Compare(current.Snapshot, t.background.Snapshot)
			if err != nil {
				return nil, err
			}
			current.Report = report
		}
	}

	for _, f := range t.frames {
		groups[f.MotionID]++
	}
	return groups, nil
}

func inherit(f *Frame, id int) {
	if f.MotionID == 0 {
		f.MotionID = id
	}
}

// Trace renders the window as "id:count" pairs, newest first.
func (t *Tracker) Trace() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	for _, f := range t.frames {
		if f.MotionID == 0 {
			continue
		}
		histo := 0
		if f.Report != nil {
			histo = f.Report.Diff.DiffHisto
		}
		fmt.Fprintf(&b, "%d:%d%c ", f.MotionID, f.DiffCount(), 'A'+(256-histo)/10)
	}
	return strings.TrimSpace(b.String())
}

// Frames returns the window, newest first.
func (t *Tracker) Frames() []*Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Frame(nil), t.frames...)
}

// Background returns the current background frame, if any.
func (t *Tracker) Background() *Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.background
}

// Close disposes every snapshot still owned by the tracker.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, f := range t.frames {
		f.Snapshot.Dispose()
	}
	if t.background != nil {
		t.background.Snapshot.Dispose()
	}
	t.frames = nil
	t.background = nil
}
