// Package camera provides the frame sources the monitor polls.
package camera

import "context"

// Source delivers one encoded JPEG frame per call.
type Source interface {
	Capture(ctx context.Context) ([]byte, error)
	Name() string
}

// DefaultMaxFrameSize bounds a captured frame.
const DefaultMaxFrameSize = 4 << 20
