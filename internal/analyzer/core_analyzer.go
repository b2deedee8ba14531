package analyzer

import (
	"sync"

	"go-motion-inspector/internal/decoder"
	"go-motion-inspector/internal/logger"
	"go-motion-inspector/internal/motion"
	"go-motion-inspector/pkg/models"

	"github.com/sirupsen/logrus"
)

// Config wires the analyzer collaborators
type Config struct {
	Tolerance motion.Tolerance
	Scale     decoder.Scale
	Workers   int
	Decoder   decoder.ScanlineDecoder
}

// DefaultConfig uses the JPEG decoder at 8x reduction and the default tolerance
func DefaultConfig() Config {
	return Config{
		Tolerance: motion.DefaultTolerance(),
		Scale:     decoder.Scale8X,
		Decoder:   decoder.NewJPEGDecoder(),
	}
}

// coreAnalyzer implements MotionAnalyzer and orchestrates all components
type coreAnalyzer struct {
	workerPool *WorkerPool
	detector   *motion.Detector
	decoder    decoder.ScanlineDecoder
	scale      decoder.Scale
	statistics StatisticsCalculator
}

// NewMotionAnalyzer creates a new motion analyzer with all components
func NewMotionAnalyzer(cfg Config) (MotionAnalyzer, error) {
	detector, err := motion.NewDetector(cfg.Tolerance)
	if err != nil {
		return nil, err
	}
	if cfg.Decoder == nil {
		cfg.Decoder = decoder.NewJPEGDecoder()
	}
	if !cfg.Scale.Valid() {
		cfg.Scale = decoder.Scale8X
	}

	workerPool := NewWorkerPool(cfg.Workers)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool: workerPool,
		detector:   detector,
		decoder:    cfg.Decoder,
		scale:      cfg.Scale,
		statistics: NewStatisticsCalculator(),
	}, nil
}

// CreateSnapshot decodes one encoded frame
func (ca *coreAnalyzer) CreateSnapshot(encoded []byte) (*motion.Snapshot, error) {
	return motion.NewSnapshot(encoded, ca.decoder, ca.scale)
}

// CreateSnapshots decodes a batch concurrently. Each snapshot is built
// by a single worker; results keep the input order.
func (ca *coreAnalyzer) CreateSnapshots(batch [][]byte) ([]*motion.Snapshot, []error) {
	snapshots := make([]*motion.Snapshot, len(batch))
	errs := make([]error, len(batch))

	var wg sync.WaitGroup
	for i, encoded := range batch {
		i, encoded := i, encoded
		wg.Add(1)
		job := func() {
			defer wg.Done()
			snapshots[i], errs[i] = ca.CreateSnapshot(encoded)
		}
		if !ca.workerPool.Submit(job) {
			job()
		}
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.WithFields(logrus.Fields{
			"batch_size": len(batch),
			"failed":     failed,
		}).Warn("Some frames of the batch could not be decoded")
	}
	return snapshots, errs
}

// Compare classifies current against previous under the shared tolerance
func (ca *coreAnalyzer) Compare(current, previous *motion.Snapshot, options AnalysisOptions) (*Report, error) {
	return ca.detector.Compare(current, previous, options.compareOptions())
}

// Configure replaces the whole tolerance
func (ca *coreAnalyzer) Configure(tolerance motion.Tolerance) error {
	return ca.detector.SetTolerance(tolerance)
}

// Tolerance returns a copy of the current tolerance
func (ca *coreAnalyzer) Tolerance() motion.Tolerance {
	return ca.detector.Tolerance()
}

// Statistics summarises the dispersion of a ready snapshot
func (ca *coreAnalyzer) Statistics(s *motion.Snapshot) (models.FrameStatistics, error) {
	f, err := s.Features(nil)
	if err != nil {
		return models.FrameStatistics{}, err
	}
	return ca.statistics.Summarize(f), nil
}

// Close releases the worker pool
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}
