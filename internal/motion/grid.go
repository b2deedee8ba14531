// Package motion implements block based motion detection over streamed
// JPEG frames: feature extraction, snapshot lifecycle, comparison and
// shape extraction.
package motion

import (
	apperrors "go-motion-inspector/internal/errors"
)

const (
	wideBlock   = 8
	narrowBlock = 5
)

// Grid is the fixed partition of a decoded image into detection blocks.
type Grid struct {
	Width       int
	Height      int
	BlockWidth  int
	BlockHeight int
	Cols        int
	Rows        int
}

// blockSize prefers 8 and falls back to 5 when (dim/8)%8 != 0.
func blockSize(dim int) int {
	if (dim/wideBlock)%8 == 0 {
		return wideBlock
	}
	return narrowBlock
}

// NewGrid derives the block grid of a width x height decoded image.
func NewGrid(width, height int) (Grid, error) {
	if width <= 0 || height <= 0 {
		return Grid{}, apperrors.NewInvalidFrameError("frame has a zero dimension", nil).
			WithDetails("width=%d height=%d", width, height)
	}
	g := Grid{
		Width:       width,
		Height:      height,
		BlockWidth:  blockSize(width),
		BlockHeight: blockSize(height),
	}
	g.Cols = width / g.BlockWidth
	g.Rows = height / g.BlockHeight
	if g.Cols == 0 || g.Rows == 0 {
		return Grid{}, apperrors.NewInvalidFrameError("frame smaller than one block", nil).
			WithDetails("width=%d height=%d", width, height)
	}
	return g, nil
}

// Count is the number of blocks.
func (g Grid) Count() int { return g.Cols * g.Rows }

// BlockArea is the number of pixels in one block.
func (g Grid) BlockArea() int { return g.BlockWidth * g.BlockHeight }

// Index returns the row-major block index.
func (g Grid) Index(col, row int) int { return row*g.Cols + col }

// Covers reports whether pixel (x, y) contributes to a block. Pixels on
// the right and bottom remainder are ignored.
func (g Grid) Covers(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Cols*g.BlockWidth && y < g.Rows*g.BlockHeight
}
