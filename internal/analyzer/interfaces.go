package analyzer

import (
	"go-motion-inspector/internal/motion"
	"go-motion-inspector/pkg/models"
)

// MotionAnalyzer defines the main interface for snapshot creation and comparison
type MotionAnalyzer interface {
	// Snapshot creation
	CreateSnapshot(encoded []byte) (*motion.Snapshot, error)
	CreateSnapshots(batch [][]byte) ([]*motion.Snapshot, []error)

	// Comparison under the shared tolerance
	Compare(current, previous *motion.Snapshot, options AnalysisOptions) (*Report, error)

	// Tolerance management
	Configure(tolerance motion.Tolerance) error
	Tolerance() motion.Tolerance

	Statistics(s *motion.Snapshot) (models.FrameStatistics, error)

	// Lifecycle management
	Close() error
}

// StatisticsCalculator handles dispersion metrics of a snapshot
type StatisticsCalculator interface {
	Summarize(features models.Features) models.FrameStatistics
}
