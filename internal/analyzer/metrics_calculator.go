package analyzer

import (
	"go-motion-inspector/pkg/models"

	"gonum.org/v1/gonum/stat"
)

// statisticsCalculator implements StatisticsCalculator with Gonum
type statisticsCalculator struct{}

// NewStatisticsCalculator creates a new statistics calculator
func NewStatisticsCalculator() StatisticsCalculator {
	return &statisticsCalculator{}
}

// Summarize computes mean and standard deviation of block light and
// saturation, and the number of occupied histogram buckets
func (sc *statisticsCalculator) Summarize(f models.Features) models.FrameStatistics {
	var out models.FrameStatistics

	out.LightMean, out.LightStdDev = meanStdDev(f.Lights)
	out.SaturationMean, out.SaturationStdDev = meanStdDev(f.Saturations)

	for _, c := range f.Histogram {
		if c > 0 {
			out.HistogramOccupancy++
		}
	}
	return out
}

func meanStdDev(values []int) (float64, float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return float64(values[0]), 0
	}
	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
	}
	return stat.MeanStdDev(xs, nil)
}
