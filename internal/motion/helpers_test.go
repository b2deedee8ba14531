package motion

import (
	"image"
	"image/color"
	"testing"

	"go-motion-inspector/internal/decoder"

	"github.com/stretchr/testify/require"
)

// imageDecoder streams a prepared RGBA image, ignoring the encoded input.
type imageDecoder struct {
	img  *image.RGBA
	band int
	err  error
}

func (d imageDecoder) Decode(length int, scale decoder.Scale, read decoder.ReadFunc, row decoder.RowFunc) error {
	if d.err != nil {
		return d.err
	}
	b := d.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if !row(0, 0, w, h, nil) {
		return decoder.ErrAborted
	}
	band := d.band
	if band <= 0 {
		band = 8
	}
	for y := 0; y < h; y += band {
		rows := min(band, h-y)
		buf := make([]byte, 0, w*rows*3)
		for dy := 0; dy < rows; dy++ {
			for x := 0; x < w; x++ {
				c := d.img.RGBAAt(x, y+dy)
				buf = append(buf, c.R, c.G, c.B)
			}
		}
		if !row(0, y, w, rows, buf) {
			return decoder.ErrAborted
		}
	}
	row(w, h, 0, 0, nil)
	return nil
}

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// paintBlock fills block (col, row) of a block-size grid.
func paintBlock(img *image.RGBA, col, row, size int, c color.RGBA) {
	for y := row * size; y < (row+1)*size; y++ {
		for x := col * size; x < (col+1)*size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func snapshotOf(t *testing.T, img *image.RGBA) *Snapshot {
	t.Helper()
	s, err := NewSnapshot([]byte{0xff, 0xd8}, imageDecoder{img: img}, decoder.Scale1X)
	require.NoError(t, err)
	return s
}

// flatTolerance has a constant light error regardless of the histogram.
func flatTolerance(t *testing.T, lightError int) *Tolerance {
	t.Helper()
	light, err := NewToleranceCurve([CurvePoints]Point{{0, lightError}, {100, lightError}, {200, lightError}, {300, lightError}})
	require.NoError(t, err)
	histo, err := NewToleranceCurve([CurvePoints]Point{{0, 0}, {32, 32}, {128, 128}, {257, 257}})
	require.NoError(t, err)
	return &Tolerance{
		LightCurve:         light,
		HistoCurve:         histo,
		SaturationError:    DefaultSaturationError,
		HueError:           DefaultHueError,
		LowLightFloor:      DefaultLowLightFloor,
		LowSaturationFloor: DefaultLowSaturationFloor,
	}
}

var (
	gray  = color.RGBA{100, 100, 100, 255}
	white = color.RGBA{250, 250, 250, 255}
	red   = color.RGBA{200, 20, 20, 255}
	blue  = color.RGBA{20, 20, 200, 255}
)

func rgba(r, g, b uint8) color.RGBA { return color.RGBA{r, g, b, 255} }
