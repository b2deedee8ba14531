package motion

import (
	"testing"

	apperrors "go-motion-inspector/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToleranceCurve_Evaluate(t *testing.T) {
	c, err := NewToleranceCurve([CurvePoints]Point{{0, 0}, {10, 10}, {20, 5}, {30, 30}})
	require.NoError(t, err)

	tests := []struct {
		x, want int
	}{
		{-1, 0},
		{0, 0},
		{5, 5},
		{10, 10},
		{15, 7},
		{20, 5},
		{25, 17},
		{29, 27},
		{30, 0},
		{100, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Evaluate(tt.x), "x=%d", tt.x)
	}
}

func TestToleranceCurve_Invalid(t *testing.T) {
	_, err := NewToleranceCurve([CurvePoints]Point{{0, 0}, {10, 10}, {10, 5}, {30, 30}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))

	_, err = CurveFromPairs([][2]int{{0, 0}, {1, 1}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))

	c, err := CurveFromPairs([][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}}, c.Pairs())
}

func TestInterpolate_Floor(t *testing.T) {
	assert.Equal(t, 19, Interpolate(Point{100, 8}, Point{0, 64}, 80))
	assert.Equal(t, 64, Interpolate(Point{100, 8}, Point{0, 64}, 0))
	assert.Equal(t, 8, Interpolate(Point{100, 8}, Point{0, 64}, 100))
	assert.Equal(t, -1, floorDiv(-1, 3))
	assert.Equal(t, 0, floorDiv(1, 3))
}

func TestToleranceForSensitivity(t *testing.T) {
	tol, err := ToleranceForSensitivity(80, []byte("  /"))
	require.NoError(t, err)
	assert.Equal(t, 10, tol.LightCurve.Evaluate(0))
	assert.Equal(t, 19, tol.LightCurve.Evaluate(256))
	assert.Equal(t, 256, tol.HistoCurve.Evaluate(256))
	assert.Equal(t, []byte("  /"), tol.Mask)

	tol, err = ToleranceForSensitivity(50, []byte("    "))
	require.NoError(t, err)
	assert.Nil(t, tol.Mask)

	_, err = ToleranceForSensitivity(101, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))
}
