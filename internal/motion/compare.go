package motion

import (
	apperrors "go-motion-inspector/internal/errors"
	"go-motion-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// Channel selects which block features take part in a comparison.
type Channel uint8

const (
	ChannelLight Channel = 1 << iota
	ChannelSaturation
	ChannelHue

	ChannelAll = ChannelLight | ChannelSaturation | ChannelHue
)

const (
	diffMarker = '#'
	sameMarker = ' '
	// histoScale is the score of two identical histograms.
	histoScale = 256
)

// CompareOptions selects channels and shape extraction.
type CompareOptions struct {
	Channels      Channel
	ExtractShapes bool
}

// DefaultCompareOptions compares every channel without shapes.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{Channels: ChannelAll}
}

// Compare classifies every block of current against previous.
//
// Both snapshots must be ready and share a block count. A mask whose
// length differs from the block count is ignored with a warning.
func Compare(current, previous *Snapshot, tol *Tolerance, opts CompareOptions) (*Report, error) {
	if tol == nil {
		return nil, apperrors.NewBadConfigurationError("no tolerance configured", nil)
	}
	release, err := acquirePair(current, previous)
	if err != nil {
		return nil, err
	}
	defer release()

	grid := current.grid
	n := grid.Count()
	if n != previous.grid.Count() {
		return nil, apperrors.NewIncompatibleFormatError("snapshots have different block counts", nil).
			WithDetails("current=%d previous=%d", n, previous.grid.Count())
	}
	if opts.Channels == 0 {
		opts.Channels = ChannelAll
	}

	diffHisto := 0
	for i := range current.histogram {
		diffHisto += abs(current.histogram[i] - previous.histogram[i])
	}
	score := 0
	if diffHisto <= n {
		score = histoScale - (diffHisto<<8)/n
	}
	errHisto := tol.HistoCurve.Evaluate(histoScale - score)
	errLight := tol.LightCurve.Evaluate(errHisto)
	lightTolerance := errLight + abs(current.stats.MeanLight-previous.stats.MeanLight)

	mask := tol.Mask
	if mask != nil && len(mask) != n {
		logger.ForComponent("motion").WithFields(logrus.Fields{
			"mask_length": len(mask),
			"block_count": n,
		}).Warn("Mask length does not match block count, ignoring mask")
		mask = nil
	}

	c := blockComparer{tol: tol, channels: opts.Channels, lightTolerance: lightTolerance}
	diffs := make([]byte, n)
	count := 0
	for i := 0; i < n; i++ {
		differ := c.differ(current, previous, i)
		if differ && mask != nil && mask[i] == MaskedBlock {
			differ = false
		}
		if differ {
			diffs[i] = diffMarker
			count++
		} else {
			diffs[i] = sameMarker
		}
	}

	scale := current.scale
	squareX, squareY := grid.BlockWidth*scale, grid.BlockHeight*scale
	report := &Report{
		Geometry: Geometry{Width: grid.Width * scale, Height: grid.Height * scale},
		Feature: FeatureSummary{
			Light:      current.stats.MeanLight,
			Saturation: current.stats.MeanSaturation,
		},
		Diff: Difference{
			SquareX:     squareX,
			SquareY:     squareY,
			Width:       grid.Cols,
			Height:      grid.Rows,
			Max:         n,
			Count:       count,
			DiffHisto:   score,
			ErrHisto:    errHisto,
			ErrLight:    errLight,
			Diffs:       string(diffs),
			MaskApplied: mask != nil,
		},
	}
	if opts.ExtractShapes && count > 0 {
		report.Shapes = toPixelShapes(extractShapes(diffs, grid.Cols, grid.Rows), squareX, squareY)
	}
	return report, nil
}

type blockComparer struct {
	tol            *Tolerance
	channels       Channel
	lightTolerance int
}

func (c blockComparer) differ(cur, prev *Snapshot, i int) bool {
	curLight, prevLight := int(cur.lights[i]), int(prev.lights[i])
	if c.channels&ChannelLight != 0 && abs(curLight-prevLight) > c.lightTolerance {
		return true
	}
	if c.channels&(ChannelSaturation|ChannelHue) == 0 {
		return false
	}

	lightFactor, ok := gate(curLight, prevLight, c.tol.LowLightFloor)
	if !ok {
		return false
	}

	curSat, prevSat := int(cur.saturations[i]), int(prev.saturations[i])
	if c.channels&ChannelSaturation != 0 && abs(curSat-prevSat) > c.tol.SaturationError*lightFactor {
		return true
	}
	if c.channels&ChannelHue == 0 {
		return false
	}

	satFactor, ok := gate(curSat, prevSat, c.tol.LowSaturationFloor)
	if !ok {
		return false
	}
	return hueDistance(int(cur.hues[i]), int(prev.hues[i])) > c.tol.HueError*max(lightFactor, satFactor)
}

// gate applies the low signal policy to a pair of values: both under the
// floor skips the next channel, exactly one under widens its tolerance.
func gate(a, b, floor int) (factor int, ok bool) {
	aLow, bLow := a < floor, b < floor
	switch {
	case aLow && bLow:
		return 0, false
	case aLow != bLow:
		return lowSignalFactor, true
	}
	return 1, true
}
