// Package decoder provides the scanline decoder collaborator used to
// build motion snapshots. Decoded pixels are never held by the caller as
// a full frame: they are pushed in bands of packed RGB rows.
package decoder

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/nfnt/resize"
)

// Scale is the decode reduction factor.
type Scale int

const (
	Scale1X Scale = 1
	Scale2X Scale = 2
	Scale4X Scale = 4
	Scale8X Scale = 8
)

// DefaultBandHeight is the number of rows delivered per band.
const DefaultBandHeight = 8

var (
	// ErrAborted is returned when the row callback stops decoding.
	ErrAborted = errors.New("decode aborted by row callback")
	// ErrEmptyInput is returned for a zero length input.
	ErrEmptyInput = errors.New("empty encoded input")
)

// Valid reports whether s is one of the supported reductions.
func (s Scale) Valid() bool {
	switch s {
	case Scale1X, Scale2X, Scale4X, Scale8X:
		return true
	}
	return false
}

// ParseScale converts 1, 2, 4 or 8 to a Scale.
func ParseScale(v int) (Scale, error) {
	s := Scale(v)
	if !s.Valid() {
		return 0, fmt.Errorf("unsupported decode scale %d", v)
	}
	return s, nil
}

// ReadFunc copies encoded bytes starting at offset into buf and returns
// how many bytes were copied. Zero means no more data.
type ReadFunc func(offset int, buf []byte) int

// RowFunc receives decoded output.
//
// (0, 0, w, h, nil) announces the decoded geometry before any band.
// (x, y, w, h, data) delivers h rows of w packed RGB pixels at (x, y).
// (w, h, 0, 0, nil) marks the end of the image.
//
// Returning false aborts the decode.
type RowFunc func(x, y, w, h int, data []byte) bool

// ScanlineDecoder decodes an encoded image of the given length, pulling
// bytes through read and pushing pixels through row.
type ScanlineDecoder interface {
	Decode(length int, scale Scale, read ReadFunc, row RowFunc) error
}

// BytesReader adapts an in-memory buffer to a ReadFunc.
func BytesReader(data []byte) ReadFunc {
	return func(offset int, buf []byte) int {
		if offset >= len(data) {
			return 0
		}
		return copy(buf, data[offset:])
	}
}

// JPEGDecoder decodes baseline and progressive JPEG.
type JPEGDecoder struct {
	bandHeight int
}

// NewJPEGDecoder creates a JPEG decoder delivering DefaultBandHeight rows per band.
func NewJPEGDecoder() *JPEGDecoder {
	return &JPEGDecoder{bandHeight: DefaultBandHeight}
}

// Decode implements ScanlineDecoder.
func (d *JPEGDecoder) Decode(length int, scale Scale, read ReadFunc, row RowFunc) error {
	if length <= 0 {
		return ErrEmptyInput
	}
	if !scale.Valid() {
		return fmt.Errorf("unsupported decode scale %d", scale)
	}

	img, err := jpeg.Decode(&callbackReader{read: read, length: length})
	if err != nil {
		return fmt.Errorf("jpeg decode: %w", err)
	}

	img = reduce(img, scale)
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if !row(0, 0, width, height, nil) {
		return ErrAborted
	}

	band := make([]byte, width*d.bandHeight*3)
	for y := 0; y < height; y += d.bandHeight {
		rows := min(d.bandHeight, height-y)
		buf := band[:width*rows*3]
		fillBand(img, bounds.Min.X, bounds.Min.Y+y, width, rows, buf)
		if !row(0, y, width, rows, buf) {
			return ErrAborted
		}
	}

	row(width, height, 0, 0, nil)
	return nil
}

// reduce shrinks the image by scale. Images smaller than the scale
// collapse to zero size and are reported as such to the row callback.
func reduce(img image.Image, scale Scale) image.Image {
	if scale == Scale1X {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx()/int(scale), b.Dy()/int(scale)
	if w == 0 || h == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear)
}

func fillBand(img image.Image, x0, y0, width, rows int, buf []byte) {
	i := 0
	if rgba, ok := img.(*image.RGBA); ok {
		for dy := 0; dy < rows; dy++ {
			off := rgba.PixOffset(x0, y0+dy)
			for x := 0; x < width; x++ {
				buf[i], buf[i+1], buf[i+2] = rgba.Pix[off], rgba.Pix[off+1], rgba.Pix[off+2]
				off += 4
				i += 3
			}
		}
		return
	}
	for dy := 0; dy < rows; dy++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x0+x, y0+dy).RGBA()
			buf[i], buf[i+1], buf[i+2] = uint8(r>>8), uint8(g>>8), uint8(b>>8)
			i += 3
		}
	}
}

// callbackReader exposes a ReadFunc as an io.Reader bounded by length.
type callbackReader struct {
	read   ReadFunc
	offset int
	length int
}

func (r *callbackReader) Read(p []byte) (int, error) {
	if r.offset >= r.length {
		return 0, io.EOF
	}
	if rem := r.length - r.offset; len(p) > rem {
		p = p[:rem]
	}
	n := r.read(r.offset, p)
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.offset += n
	return n, nil
}
