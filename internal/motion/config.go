package motion

import (
	"bytes"
	"sync"

	apperrors "go-motion-inspector/internal/errors"
)

const (
	// DefaultSensitivity matches the factory camera setting.
	DefaultSensitivity = 80
	// DefaultLowLightFloor is the light under which a block carries no usable color.
	DefaultLowLightFloor = 20
	// DefaultLowSaturationFloor is the saturation under which hue is noise.
	DefaultLowSaturationFloor = 20
	DefaultSaturationError    = 20
	DefaultHueError           = 30

	// MaskedBlock in a mask suppresses detection on that block.
	MaskedBlock = '/'

	// lowSignalFactor widens a channel tolerance when exactly one side is under its floor.
	lowSignalFactor = 2
)

// Tolerance parameterises a comparison.
type Tolerance struct {
	// LightCurve maps the histogram tolerance to the light error.
	LightCurve ToleranceCurve
	// HistoCurve maps the histogram change (256 - score) to a tolerance.
	HistoCurve ToleranceCurve
	// Mask has one byte per block; MaskedBlock disables the block.
	Mask []byte

	SaturationError    int
	HueError           int
	LowLightFloor      int
	LowSaturationFloor int
}

// ToleranceForSensitivity derives the light curve from a 0..100 sensitivity.
// Higher sensitivity means a smaller light error on large histogram changes.
func ToleranceForSensitivity(sensitivity int, mask []byte) (Tolerance, error) {
	if sensitivity < 0 || sensitivity > 100 {
		return Tolerance{}, apperrors.NewBadConfigurationError("sensitivity must be within 0..100", nil).
			WithDetails("sensitivity=%d", sensitivity)
	}
	e := Interpolate(Point{100, 8}, Point{0, 64}, sensitivity)

	light, err := NewToleranceCurve([CurvePoints]Point{{0, 10}, {30, 10}, {128, e}, {257, e}})
	if err != nil {
		return Tolerance{}, err
	}
	histo, err := NewToleranceCurve([CurvePoints]Point{{0, 0}, {32, 32}, {128, 128}, {257, 257}})
	if err != nil {
		return Tolerance{}, err
	}
	return Tolerance{
		LightCurve:         light,
		HistoCurve:         histo,
		Mask:               NormalizeMask(mask),
		SaturationError:    DefaultSaturationError,
		HueError:           DefaultHueError,
		LowLightFloor:      DefaultLowLightFloor,
		LowSaturationFloor: DefaultLowSaturationFloor,
	}, nil
}

// DefaultTolerance is ToleranceForSensitivity(DefaultSensitivity, nil).
func DefaultTolerance() Tolerance {
	t, _ := ToleranceForSensitivity(DefaultSensitivity, nil)
	return t
}

// Validate checks both curves and the channel errors.
func (t Tolerance) Validate() error {
	if _, err := NewToleranceCurve(t.LightCurve.points); err != nil {
		return err
	}
	if _, err := NewToleranceCurve(t.HistoCurve.points); err != nil {
		return err
	}
	if t.SaturationError < 0 || t.HueError < 0 || t.LowLightFloor < 0 || t.LowSaturationFloor < 0 {
		return apperrors.NewBadConfigurationError("channel tolerances must be >= 0", nil)
	}
	return nil
}

// clone deep copies the mask.
func (t Tolerance) clone() Tolerance {
	if t.Mask != nil {
		t.Mask = append([]byte(nil), t.Mask...)
	}
	return t
}

// NormalizeMask returns nil for masks without any masked block.
func NormalizeMask(mask []byte) []byte {
	if !bytes.ContainsRune(mask, MaskedBlock) {
		return nil
	}
	return append([]byte(nil), mask...)
}

// Detector owns a Tolerance shared by concurrent comparisons. The
// configuration is read locked for the whole of a comparison.
type Detector struct {
	mu        sync.RWMutex
	tolerance Tolerance
}

// NewDetector validates t and wraps it.
func NewDetector(t Tolerance) (*Detector, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Detector{tolerance: t.clone()}, nil
}

// SetTolerance replaces the whole configuration.
func (d *Detector) SetTolerance(t Tolerance) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Mask = NormalizeMask(t.Mask)
	d.mu.Lock()
	d.tolerance = t
	d.mu.Unlock()
	return nil
}

// Tolerance returns a copy of the current configuration.
func (d *Detector) Tolerance() Tolerance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tolerance.clone()
}

// Compare runs Compare under the detector configuration.
func (d *Detector) Compare(current, previous *Snapshot, opts CompareOptions) (*Report, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Compare(current, previous, &d.tolerance, opts)
}
