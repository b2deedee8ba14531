package motion

import (
	apperrors "go-motion-inspector/internal/errors"
)

// HistogramBuckets is the number of light buckets, each 16 levels wide.
const HistogramBuckets = 16

// accumulator receives decoded bands and sums them per block. It never
// holds a full frame.
type accumulator struct {
	grid      Grid
	ready     bool
	reds      []uint32
	greens    []uint32
	blues     []uint32
	histogram [HistogramBuckets]uint32
	err       error
}

// row is the decoder.RowFunc of a snapshot under construction.
func (a *accumulator) row(x, y, w, h int, data []byte) bool {
	if data == nil {
		if x == 0 && y == 0 && !a.ready {
			return a.announce(w, h)
		}
		return true
	}
	if !a.ready {
		a.err = apperrors.NewDecodeError("band delivered before geometry", nil)
		return false
	}
	if len(data) < w*h*3 {
		a.err = apperrors.NewDecodeError("short band", nil).
			WithDetails("want %d bytes, got %d", w*h*3, len(data))
		return false
	}

	g := a.grid
	limitX := g.Cols * g.BlockWidth
	limitY := g.Rows * g.BlockHeight
	stride := w * 3

	for dy := 0; dy < h; dy++ {
		py := y + dy
		if py < 0 || py >= limitY {
			continue
		}
		base := (py / g.BlockHeight) * g.Cols
		line := data[dy*stride : dy*stride+stride]
		for dx := 0; dx < w; dx++ {
			px := x + dx
			if px < 0 {
				continue
			}
			if px >= limitX {
				break
			}
			r, gr, b := line[dx*3], line[dx*3+1], line[dx*3+2]
			i := base + px/g.BlockWidth
			a.reds[i] += uint32(r)
			a.greens[i] += uint32(gr)
			a.blues[i] += uint32(b)

			light := (uint32(max(r, gr, b)) + uint32(min(r, gr, b))) / 2
			a.histogram[light>>4]++
		}
	}
	return true
}

func (a *accumulator) announce(w, h int) bool {
	grid, err := NewGrid(w, h)
	if err != nil {
		a.err = err
		return false
	}
	n := grid.Count()
	a.grid = grid
	a.reds = make([]uint32, n)
	a.greens = make([]uint32, n)
	a.blues = make([]uint32, n)
	a.ready = true
	return true
}

// extract turns the accumulated sums into per block features.
func (a *accumulator) extract(s *Snapshot) {
	g := a.grid
	n := g.Count()
	area := uint32(g.BlockArea())

	s.grid = g
	s.reds = make([]uint8, n)
	s.greens = make([]uint8, n)
	s.blues = make([]uint8, n)
	s.hues = make([]uint16, n)
	s.saturations = make([]uint8, n)
	s.lights = make([]uint8, n)

	stats := Stats{MinLight: 100, MinSaturation: 100}
	sumLight, sumSat := 0, 0

	for i := 0; i < n; i++ {
		r := uint8(a.reds[i] / area)
		gr := uint8(a.greens[i] / area)
		b := uint8(a.blues[i] / area)
		hue, sat, light := RGBToHSL(r, gr, b)

		s.reds[i], s.greens[i], s.blues[i] = r, gr, b
		s.hues[i] = uint16(hue)
		s.saturations[i] = uint8(sat)
		s.lights[i] = uint8(light)

		sumLight += light
		sumSat += sat
		stats.MinLight = min(stats.MinLight, light)
		stats.MaxLight = max(stats.MaxLight, light)
		stats.MinSaturation = min(stats.MinSaturation, sat)
		stats.MaxSaturation = max(stats.MaxSaturation, sat)
	}
	stats.MeanLight = sumLight / n
	stats.MeanSaturation = sumSat / n
	s.stats = stats

	for i, c := range a.histogram {
		s.histogram[i] = int(c / area)
	}
}
