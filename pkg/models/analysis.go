package models

import "time"

// Report is the outcome of comparing two snapshots.
// Coordinates and sizes are expressed in source image pixels.
type Report struct {
	Geometry Geometry       `json:"geometry"`
	Feature  FeatureSummary `json:"feature"`
	Diff     Difference     `json:"diff"`
	Shapes   []Shape        `json:"shapes,omitempty"`
}

// Count returns the number of differing blocks
func (r *Report) Count() int {
	if r == nil {
		return 0
	}
	return r.Diff.Count
}

// Geometry is the source image size.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FeatureSummary carries the mean light and saturation of the current snapshot.
type FeatureSummary struct {
	Light      int `json:"light"`
	Saturation int `json:"saturation"`
}

// Difference describes the per block verdict.
type Difference struct {
	SquareX     int    `json:"squarex"`
	SquareY     int    `json:"squarey"`
	Width       int    `json:"width"`  // grid columns
	Height      int    `json:"height"` // grid rows
	Max         int    `json:"max"`
	Count       int    `json:"count"`
	DiffHisto   int    `json:"diffhisto"`
	ErrHisto    int    `json:"errhisto"`
	ErrLight    int    `json:"errlight"`
	Diffs       string `json:"diffs"`
	MaskApplied bool   `json:"mask_applied"`
}

// Shape is a 4-connected region of differing blocks.
type Shape struct {
	ID      int `json:"id"`
	Size    int `json:"size"`
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`
	MinX    int `json:"min_x"`
	MaxX    int `json:"max_x"`
	MinY    int `json:"min_y"`
	MaxY    int `json:"max_y"`
}

// Features is the exported per block content of a snapshot.
type Features struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Cols        int     `json:"cols"`
	Rows        int     `json:"rows"`
	BlockWidth  int     `json:"block_width"`
	BlockHeight int     `json:"block_height"`
	Reds        []int   `json:"reds"`
	Greens      []int   `json:"greens"`
	Blues       []int   `json:"blues"`
	Hues        []int   `json:"hues"`
	Saturations []int   `json:"saturations"`
	Lights      []int   `json:"lights"`
	Histogram   [16]int `json:"histogram"`
	Diffs       string  `json:"diffs,omitempty"`
	Stats       Stats   `json:"stats"`
}

// Stats are the global light and saturation extremes of a snapshot.
type Stats struct {
	MeanLight      int `json:"mean_light"`
	MinLight       int `json:"min_light"`
	MaxLight       int `json:"max_light"`
	MeanSaturation int `json:"mean_saturation"`
	MinSaturation  int `json:"min_saturation"`
	MaxSaturation  int `json:"max_saturation"`
}

// FrameStatistics summarises the dispersion of a snapshot.
type FrameStatistics struct {
	LightMean          float64 `json:"light_mean"`
	LightStdDev        float64 `json:"light_stddev"`
	SaturationMean     float64 `json:"saturation_mean"`
	SaturationStdDev   float64 `json:"saturation_stddev"`
	HistogramOccupancy int     `json:"histogram_occupancy"`
}

// HistoricItem is one archived motion image.
type HistoricItem struct {
	ID        int64     `json:"id"`
	MotionID  int       `json:"motion_id"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	TakenAt   time.Time `json:"taken_at"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SquareX   int       `json:"squarex"`
	SquareY   int       `json:"squarey"`
	Diffs     string    `json:"diffs"`
	DiffCount int       `json:"diff_count"`
}
