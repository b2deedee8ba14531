package motion

import (
	"image"
	"strings"
	"testing"

	apperrors "go-motion-inspector/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patterned() *image.RGBA {
	img := uniform(40, 40, gray)
	paintBlock(img, 0, 0, 5, red)
	paintBlock(img, 3, 4, 5, blue)
	paintBlock(img, 6, 1, 5, white)
	return img
}

func TestCompare_Reflexive(t *testing.T) {
	tol := DefaultTolerance()
	a := snapshotOf(t, patterned())
	b := snapshotOf(t, patterned())

	for _, pair := range [][2]*Snapshot{{a, a}, {a, b}} {
		r, err := Compare(pair[0], pair[1], &tol, CompareOptions{Channels: ChannelAll, ExtractShapes: true})
		require.NoError(t, err)
		assert.Zero(t, r.Count())
		assert.Equal(t, strings.Repeat(" ", 64), r.Diff.Diffs)
		assert.Equal(t, 256, r.Diff.DiffHisto)
		assert.Empty(t, r.Shapes)
	}
}

func TestCompare_Symmetric(t *testing.T) {
	tol := DefaultTolerance()
	before := snapshotOf(t, patterned())

	img := patterned()
	paintBlock(img, 4, 4, 5, white)
	paintBlock(img, 0, 0, 5, gray)
	paintBlock(img, 7, 7, 5, red)
	after := snapshotOf(t, img)

	ab, err := Compare(after, before, &tol, DefaultCompareOptions())
	require.NoError(t, err)
	ba, err := Compare(before, after, &tol, DefaultCompareOptions())
	require.NoError(t, err)

	assert.Equal(t, ab.Diff.Diffs, ba.Diff.Diffs)
	assert.Equal(t, ab.Count(), ba.Count())
	assert.Equal(t, ab.Diff.DiffHisto, ba.Diff.DiffHisto)
	assert.Positive(t, ab.Count())
}

func TestCompare_SingleCenterBlock(t *testing.T) {
	tol := flatTolerance(t, 10)
	prev := snapshotOf(t, uniform(15, 15, gray))
	img := uniform(15, 15, gray)
	paintBlock(img, 1, 1, 5, white)
	cur := snapshotOf(t, img)

	r, err := Compare(cur, prev, tol, CompareOptions{Channels: ChannelAll, ExtractShapes: true})
	require.NoError(t, err)

	assert.Equal(t, 1, r.Count())
	assert.Equal(t, "    #    ", r.Diff.Diffs)
	assert.Equal(t, 9, r.Diff.Max)
	assert.Equal(t, 3, r.Diff.Width)
	assert.Equal(t, 5, r.Diff.SquareX)
	require.Len(t, r.Shapes, 1)
	assert.Equal(t, Shape{ID: 1, Size: 1, CenterX: 5, CenterY: 5, MinX: 5, MaxX: 5, MinY: 5, MaxY: 5}, r.Shapes[0])
}

func TestCompare_LShape(t *testing.T) {
	tol := flatTolerance(t, 10)
	prev := snapshotOf(t, uniform(20, 20, gray))
	img := uniform(20, 20, gray)
	for _, b := range [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2}} {
		paintBlock(img, b[0], b[1], 5, white)
	}
	cur := snapshotOf(t, img)

	r, err := Compare(cur, prev, tol, CompareOptions{Channels: ChannelAll, ExtractShapes: true})
	require.NoError(t, err)

	assert.Equal(t, 5, r.Count())
	require.Len(t, r.Shapes, 1)
	s := r.Shapes[0]
	assert.Equal(t, 5, s.Size)
	assert.Equal(t, [4]int{0, 10, 0, 10}, [4]int{s.MinX, s.MaxX, s.MinY, s.MaxY})
	assert.Equal(t, 3, s.CenterX)
	assert.Equal(t, 7, s.CenterY)
}

func TestCompare_DiagonalBlocksAreSeparateShapes(t *testing.T) {
	tol := flatTolerance(t, 10)
	prev := snapshotOf(t, uniform(20, 20, gray))
	img := uniform(20, 20, gray)
	paintBlock(img, 0, 0, 5, white)
	paintBlock(img, 1, 1, 5, white)
	cur := snapshotOf(t, img)

	r, err := Compare(cur, prev, tol, CompareOptions{Channels: ChannelAll, ExtractShapes: true})
	require.NoError(t, err)
	require.Len(t, r.Shapes, 2)
	assert.Equal(t, 1, r.Shapes[0].ID)
	assert.Equal(t, 2, r.Shapes[1].ID)
}

func TestCompare_Mask(t *testing.T) {
	prev := snapshotOf(t, uniform(15, 15, red))
	cur := snapshotOf(t, uniform(15, 15, blue))

	tol := flatTolerance(t, 10)
	r, err := Compare(cur, prev, tol, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Equal(t, 9, r.Count())

	tol.Mask = []byte(strings.Repeat("/", 9))
	r, err = Compare(cur, prev, tol, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Zero(t, r.Count())
	assert.True(t, r.Diff.MaskApplied)

	tol.Mask = []byte("/   /   /")
	r, err = Compare(cur, prev, tol, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Equal(t, " ### ### ", r.Diff.Diffs)

	tol.Mask = []byte("//")
	r, err = Compare(cur, prev, tol, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Equal(t, 9, r.Count(), "mask of the wrong length is ignored")
	assert.False(t, r.Diff.MaskApplied)
}

func TestCompare_Channels(t *testing.T) {
	tol := flatTolerance(t, 10)
	prev := snapshotOf(t, uniform(15, 15, red))
	cur := snapshotOf(t, uniform(15, 15, blue))

	r, err := Compare(cur, prev, tol, CompareOptions{Channels: ChannelLight})
	require.NoError(t, err)
	assert.Zero(t, r.Count(), "same light, light only")

	r, err = Compare(cur, prev, tol, CompareOptions{Channels: ChannelAll})
	require.NoError(t, err)
	assert.Equal(t, 9, r.Count(), "hue differs by 240 degrees")
}

func TestCompare_GlobalLightChangeIsCompensated(t *testing.T) {
	tol := flatTolerance(t, 10)
	prev := snapshotOf(t, uniform(15, 15, gray))
	cur := snapshotOf(t, uniform(15, 15, white))

	r, err := Compare(cur, prev, tol, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Zero(t, r.Count())
}

func TestCompare_DarkBlocksIgnoreColor(t *testing.T) {
	tol := flatTolerance(t, 10)
	prev := snapshotOf(t, uniform(15, 15, rgba(20, 2, 2)))
	cur := snapshotOf(t, uniform(15, 15, rgba(2, 2, 20)))

	r, err := Compare(cur, prev, tol, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Zero(t, r.Count())
}

func TestGate(t *testing.T) {
	f, ok := gate(10, 5, 20)
	assert.False(t, ok)
	assert.Zero(t, f)

	f, ok = gate(10, 30, 20)
	assert.True(t, ok)
	assert.Equal(t, 2, f)

	f, ok = gate(30, 10, 20)
	assert.True(t, ok)
	assert.Equal(t, 2, f)

	f, ok = gate(30, 40, 20)
	assert.True(t, ok)
	assert.Equal(t, 1, f)
}

func TestCompare_IncompatibleFormat(t *testing.T) {
	tol := DefaultTolerance()
	a := snapshotOf(t, uniform(15, 15, gray))
	b := snapshotOf(t, uniform(20, 20, gray))

	_, err := Compare(a, b, &tol, DefaultCompareOptions())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeIncompatibleFormat))
}

func TestCompare_InvalidState(t *testing.T) {
	tol := DefaultTolerance()
	a := snapshotOf(t, uniform(15, 15, gray))
	b := snapshotOf(t, uniform(15, 15, gray))

	_, err := Compare(a, nil, &tol, DefaultCompareOptions())
	assert.True(t, IsInvalidState(err))

	b.Dispose()
	_, err = Compare(a, b, &tol, DefaultCompareOptions())
	assert.True(t, IsInvalidState(err))
	_, err = Compare(b, a, &tol, DefaultCompareOptions())
	assert.True(t, IsInvalidState(err))

	_, err = Compare(a, a, nil, DefaultCompareOptions())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))
}

func TestDetector(t *testing.T) {
	d, err := NewDetector(DefaultTolerance())
	require.NoError(t, err)

	bad := DefaultTolerance()
	bad.HueError = -1
	err = d.SetTolerance(bad)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))
	assert.Equal(t, DefaultHueError, d.Tolerance().HueError)

	tol := DefaultTolerance()
	tol.LightCurve, err = NewToleranceCurve([CurvePoints]Point{{0, 5}, {100, 5}, {200, 5}, {300, 5}})
	require.NoError(t, err)
	tol.Mask = []byte("/        ")
	require.NoError(t, d.SetTolerance(tol))
	assert.Equal(t, []byte("/        "), d.Tolerance().Mask)

	tol.Mask = []byte("         ")
	require.NoError(t, d.SetTolerance(tol))
	assert.Nil(t, d.Tolerance().Mask, "a mask without masked blocks is dropped")
	tol.Mask = []byte("/        ")
	require.NoError(t, d.SetTolerance(tol))

	prev := snapshotOf(t, uniform(15, 15, red))
	cur := snapshotOf(t, uniform(15, 15, blue))
	r, err := d.Compare(cur, prev, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Equal(t, 8, r.Count())

	_, err = NewDetector(Tolerance{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))
}

func TestCompare_AdaptiveTolerance(t *testing.T) {
	tol := DefaultTolerance()

	t.Run("whole scene relit", func(t *testing.T) {
		prev := snapshotOf(t, uniform(40, 40, gray))
		cur := snapshotOf(t, uniform(40, 40, white))

		r, err := Compare(cur, prev, &tol, DefaultCompareOptions())
		require.NoError(t, err)

		// Every block changed bucket: the histogram delta exceeds the block count
		assert.Equal(t, 0, r.Diff.DiffHisto)
		assert.Equal(t, 256, r.Diff.ErrHisto)
		assert.Equal(t, 19, r.Diff.ErrLight)
		assert.Zero(t, r.Count())
	})

	t.Run("few blocks changed", func(t *testing.T) {
		prev := snapshotOf(t, uniform(40, 40, gray))
		img := uniform(40, 40, gray)
		for _, b := range [][2]int{{1, 1}, {2, 1}, {5, 6}, {7, 0}} {
			paintBlock(img, b[0], b[1], 5, white)
		}
		cur := snapshotOf(t, img)

		r, err := Compare(cur, prev, &tol, DefaultCompareOptions())
		require.NoError(t, err)

		assert.Equal(t, 224, r.Diff.DiffHisto)
		assert.Equal(t, 32, r.Diff.ErrHisto)
		assert.Equal(t, 10, r.Diff.ErrLight)
		assert.Equal(t, 4, r.Count())
	})
}
