package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"go-motion-inspector/internal/analyzer"
	"go-motion-inspector/internal/decoder"
	"go-motion-inspector/internal/observer"
)

var (
	background = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	white      = color.RGBA{R: 250, G: 250, B: 250, A: 255}
)

// sceneJPEG encodes a 64x64 dark frame with a 16x16 white square at (x, y)
func sceneJPEG(t *testing.T, x, y int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for py := 0; py < 64; py++ {
		for px := 0; px < 64; px++ {
			c := background
			if px >= x && px < x+16 && py >= y && py < y+16 {
				c = white
			}
			img.Set(px, py, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

func newTestAnalyzer(t *testing.T) analyzer.MotionAnalyzer {
	t.Helper()
	cfg := analyzer.DefaultConfig()
	cfg.Scale = decoder.Scale1X
	cfg.Workers = 1
	a, err := analyzer.NewMotionAnalyzer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

// recordingSubject delivers events synchronously
type recordingSubject struct {
	mu     sync.Mutex
	events []observer.MotionEvent
}

func (s *recordingSubject) Subscribe(observer.Observer)   {}
func (s *recordingSubject) Unsubscribe(observer.Observer) {}

func (s *recordingSubject) NotifyObservers(ctx context.Context, event observer.MotionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSubject) ofType(t observer.EventType) []observer.MotionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []observer.MotionEvent
	for _, e := range s.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}
