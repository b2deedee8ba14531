package motion

import (
	"sync"
	"sync/atomic"

	"go-motion-inspector/internal/decoder"
	apperrors "go-motion-inspector/internal/errors"
)

var snapshotSeq atomic.Uint64

// State is the lifecycle position of a Snapshot.
type State int

const (
	StateEmpty State = iota
	StateDecoding
	StateReady
	StateFailed
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDecoding:
		return "decoding"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Snapshot is an immutable feature set of one decoded frame together
// with its encoded bytes.
type Snapshot struct {
	mu    sync.RWMutex
	state State
	// seq orders lock acquisition when two snapshots are compared
	seq uint64

	encoded []byte
	scale   int
	grid    Grid

	reds        []uint8
	greens      []uint8
	blues       []uint8
	hues        []uint16
	saturations []uint8
	lights      []uint8
	histogram   [HistogramBuckets]int
	stats       Stats
}

// NewSnapshot decodes encoded through dec at the given scale and
// extracts its block features. The input is copied. On failure nothing
// is retained and the error is InvalidFrame or Decode.
func NewSnapshot(encoded []byte, dec decoder.ScanlineDecoder, scale decoder.Scale) (*Snapshot, error) {
	s := &Snapshot{state: StateEmpty, seq: snapshotSeq.Add(1)}
	if len(encoded) == 0 {
		return nil, apperrors.NewInvalidFrameError("empty encoded frame", nil)
	}

	s.state = StateDecoding
	s.encoded = make([]byte, len(encoded))
	copy(s.encoded, encoded)
	s.scale = int(scale)

	acc := &accumulator{}
	err := dec.Decode(len(s.encoded), scale, decoder.BytesReader(s.encoded), acc.row)
	switch {
	case acc.err != nil:
		err = acc.err
	case err != nil:
		err = apperrors.NewDecodeError("scanline decode failed", err)
	case !acc.ready:
		err = apperrors.NewDecodeError("decoder produced no geometry", nil)
	}
	if err != nil {
		s.fail()
		return nil, err
	}

	acc.extract(s)
	s.state = StateReady
	return s, nil
}

func (s *Snapshot) fail() {
	s.release()
	s.state = StateFailed
}

func (s *Snapshot) release() {
	s.encoded = nil
	s.reds, s.greens, s.blues = nil, nil, nil
	s.hues, s.saturations, s.lights = nil, nil, nil
}

// Dispose releases the encoded bytes and feature arrays. Disposing twice is a no-op.
func (s *Snapshot) Dispose() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed {
		return
	}
	s.release()
	s.state = StateDisposed
}

// State returns the lifecycle state.
func (s *Snapshot) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Grid returns the block grid.
func (s *Snapshot) Grid() Grid { return s.grid }

// Scale returns the decode reduction used to build the snapshot.
func (s *Snapshot) Scale() int { return s.scale }

// Stats returns the global light and saturation statistics.
func (s *Snapshot) Stats() Stats { return s.stats }

// Light returns the mean block light.
func (s *Snapshot) Light() int { return s.stats.MeanLight }

// Size returns the encoded size in bytes, 0 once disposed.
func (s *Snapshot) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.encoded)
}

// Image returns a copy of the encoded bytes.
func (s *Snapshot) Image() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, invalidState(s.state)
	}
	out := make([]byte, len(s.encoded))
	copy(out, s.encoded)
	return out, nil
}

// Features exports every per block array. When report is non-nil its
// diff grid is attached.
func (s *Snapshot) Features(report *Report) (Features, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return Features{}, invalidState(s.state)
	}

	hues := make([]int, len(s.hues))
	for i, h := range s.hues {
		hues[i] = int(h)
	}
	f := Features{
		Width:       s.grid.Width * s.scale,
		Height:      s.grid.Height * s.scale,
		Cols:        s.grid.Cols,
		Rows:        s.grid.Rows,
		BlockWidth:  s.grid.BlockWidth * s.scale,
		BlockHeight: s.grid.BlockHeight * s.scale,
		Reds:        widen(s.reds),
		Greens:      widen(s.greens),
		Blues:       widen(s.blues),
		Hues:        hues,
		Saturations: widen(s.saturations),
		Lights:      widen(s.lights),
		Histogram:   s.histogram,
		Stats:       s.stats,
	}
	if report != nil && len(report.Diff.Diffs) == s.grid.Count() {
		f.Diffs = report.Diff.Diffs
	}
	return f, nil
}

// acquire read-locks a ready snapshot for the duration of a comparison.
func (s *Snapshot) acquire() error {
	if s == nil {
		return apperrors.NewInvalidStateError("snapshot is nil", nil)
	}
	s.mu.RLock()
	if s.state != StateReady {
		st := s.state
		s.mu.RUnlock()
		return invalidState(st)
	}
	return nil
}

func (s *Snapshot) releaseRead() { s.mu.RUnlock() }

// acquirePair read-locks a and b, older snapshot first, so crossed
// comparisons racing a Dispose cannot deadlock. The returned func
// releases both.
func acquirePair(a, b *Snapshot) (func(), error) {
	if a == nil || b == nil {
		return nil, apperrors.NewInvalidStateError("snapshot is nil", nil)
	}
	if a == b {
		if err := a.acquire(); err != nil {
			return nil, err
		}
		return a.releaseRead, nil
	}

	first, second := a, b
	if second.seq < first.seq {
		first, second = second, first
	}
	if err := first.acquire(); err != nil {
		return nil, err
	}
	if err := second.acquire(); err != nil {
		first.releaseRead()
		return nil, err
	}
	return func() {
		second.releaseRead()
		first.releaseRead()
	}, nil
}

func invalidState(st State) error {
	return apperrors.NewInvalidStateError("snapshot is not ready", nil).WithDetails("state=%s", st)
}

func widen(in []uint8) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

// IsInvalidState reports whether err is an InvalidState error.
func IsInvalidState(err error) bool {
	return apperrors.IsType(err, apperrors.ErrorTypeInvalidState)
}
