package validation

import (
	"go-motion-inspector/pkg/models"
)

// FrameThresholds defines configurable thresholds for frame validation
type FrameThresholds struct {
	// Mean block light at or under which the frame is too dark to open a motion
	DarkLight int
	// Mean block light at or above which the frame is washed out
	BrightLight int
	// Minimum standard deviation of block light
	MinLightStdDev float64
	// Encoded size bounds; above the max the camera quality should be lowered
	MaxEncodedSize int
	MinEncodedSize int
}

// DefaultFrameThresholds returns the default frame thresholds
func DefaultFrameThresholds() FrameThresholds {
	return FrameThresholds{
		DarkLight:      20,
		BrightLight:    235,
		MinLightStdDev: 2.0,
		MaxEncodedSize: 62 * 1024,
		MinEncodedSize: 1024,
	}
}

// FrameValidator handles frame validation logic
type FrameValidator struct {
	thresholds FrameThresholds
}

// NewFrameValidator creates a new frame validator with default thresholds
func NewFrameValidator() *FrameValidator {
	return &FrameValidator{
		thresholds: DefaultFrameThresholds(),
	}
}

// NewFrameValidatorWithThresholds creates a frame validator with custom thresholds
func NewFrameValidatorWithThresholds(thresholds FrameThresholds) *FrameValidator {
	return &FrameValidator{
		thresholds: thresholds,
	}
}

// FrameIssue represents a frame validation issue
type FrameIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// FrameMetrics represents the metrics needed for frame validation
type FrameMetrics struct {
	EncodedSize int
	Stats       models.Stats
	Statistics  models.FrameStatistics
}

// Validate reports the issues of a frame. Issues never reject a frame.
func (fv *FrameValidator) Validate(metrics FrameMetrics) []FrameIssue {
	var issues []FrameIssue

	// 1. Exposure
	if metrics.Stats.MeanLight <= fv.thresholds.DarkLight {
		issues = append(issues, FrameIssue{
			Type:        "too_dark",
			Message:     "Frame is too dark, motions will not be opened on it.",
			Severity:    "warning",
			ActualValue: float64(metrics.Stats.MeanLight),
			Threshold:   float64(fv.thresholds.DarkLight),
		})
	} else if metrics.Stats.MeanLight >= fv.thresholds.BrightLight {
		issues = append(issues, FrameIssue{
			Type:        "too_bright",
			Message:     "Frame is washed out.",
			Severity:    "warning",
			ActualValue: float64(metrics.Stats.MeanLight),
			Threshold:   float64(fv.thresholds.BrightLight),
		})
	}

	// 2. Contrast
	if metrics.Statistics.LightStdDev < fv.thresholds.MinLightStdDev {
		issues = append(issues, FrameIssue{
			Type:        "low_contrast",
			Message:     "Frame has almost no light variation, the camera may be covered.",
			Severity:    "warning",
			ActualValue: metrics.Statistics.LightStdDev,
			Threshold:   fv.thresholds.MinLightStdDev,
		})
	}

	// 3. Encoded size
	if fv.thresholds.MaxEncodedSize > 0 && metrics.EncodedSize > fv.thresholds.MaxEncodedSize {
		issues = append(issues, FrameIssue{
			Type:        "oversized",
			Message:     "Frame is large, lower the camera quality.",
			Severity:    "info",
			ActualValue: float64(metrics.EncodedSize),
			Threshold:   float64(fv.thresholds.MaxEncodedSize),
		})
	} else if metrics.EncodedSize < fv.thresholds.MinEncodedSize {
		issues = append(issues, FrameIssue{
			Type:        "undersized",
			Message:     "Frame is very small, raise the camera quality.",
			Severity:    "info",
			ActualValue: float64(metrics.EncodedSize),
			Threshold:   float64(fv.thresholds.MinEncodedSize),
		})
	}

	return issues
}

// ConvertIssuesToMessages converts frame issues to simple messages
func (fv *FrameValidator) ConvertIssuesToMessages(issues []FrameIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasWarnings checks if there are any warning severity issues
func (fv *FrameValidator) HasWarnings(issues []FrameIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "warning" {
			return true
		}
	}
	return false
}
