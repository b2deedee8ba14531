package service

import (
	"context"
	"errors"
	"time"

	"go-motion-inspector/internal/analyzer"
	apperrors "go-motion-inspector/internal/errors"
	"go-motion-inspector/internal/motion"
	"go-motion-inspector/internal/observer"
	"go-motion-inspector/internal/repository"
	"go-motion-inspector/internal/strategy"
	"go-motion-inspector/pkg/models"
	"go-motion-inspector/pkg/validation"
)

// MotionService defines snapshot management, comparison and tolerance operations
type MotionService interface {
	// Snapshots
	CreateSnapshot(ctx context.Context, encoded []byte) (*models.SnapshotResponse, error)
	CreateSnapshots(ctx context.Context, batch [][]byte) (*models.BatchSnapshotResponse, error)
	GetFeatures(ctx context.Context, id, previousID string) (*models.Features, error)
	GetImage(ctx context.Context, id string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, id string) error

	// Comparison
	Compare(ctx context.Context, request models.CompareRequest) (*models.Report, error)

	// Tolerance
	Tolerance() models.ToleranceResponse
	Configure(ctx context.Context, request models.ToleranceRequest) (*models.ToleranceResponse, error)
	ConfigureSensitivity(ctx context.Context, request models.SensitivityRequest) (*models.ToleranceResponse, error)

	// Historic
	Historic(ctx context.Context, limit int) (*models.HistoricResponse, error)
}

// motionService implements MotionService on a single analyzer
type motionService struct {
	analyzer  analyzer.MotionAnalyzer
	snapshots repository.SnapshotRepository
	historic  repository.HistoricRepository
	validator *validation.FrameValidator
	events    observer.Subject
}

// NewMotionService creates a new motion service. historic and events may be nil.
func NewMotionService(
	motionAnalyzer analyzer.MotionAnalyzer,
	snapshots repository.SnapshotRepository,
	historic repository.HistoricRepository,
	events observer.Subject,
) MotionService {
	return &motionService{
		analyzer:  motionAnalyzer,
		snapshots: snapshots,
		historic:  historic,
		validator: validation.NewFrameValidator(),
		events:    events,
	}
}

// CreateSnapshot decodes and stores a frame. Frame issues are reported as warnings.
func (s *motionService) CreateSnapshot(ctx context.Context, encoded []byte) (*models.SnapshotResponse, error) {
	start := time.Now()

	snapshot, err := s.analyzer.CreateSnapshot(encoded)
	if err != nil {
		s.publishFailure(ctx, err, len(encoded), start)
		return nil, err
	}
	return s.store(ctx, snapshot, len(encoded), start)
}

// CreateSnapshots decodes a batch on the analyzer worker pool and stores
// every frame that decoded. Failures are reported per index.
func (s *motionService) CreateSnapshots(ctx context.Context, batch [][]byte) (*models.BatchSnapshotResponse, error) {
	if len(batch) == 0 {
		return nil, apperrors.NewValidationError("batch contains no frames", nil)
	}
	start := time.Now()

	snapshots, errs := s.analyzer.CreateSnapshots(batch)
	resp := &models.BatchSnapshotResponse{Snapshots: []models.SnapshotResponse{}}
	for i, snapshot := range snapshots {
		err := errs[i]
		if err == nil {
			var stored *models.SnapshotResponse
			if stored, err = s.store(ctx, snapshot, len(batch[i]), start); err == nil {
				resp.Snapshots = append(resp.Snapshots, *stored)
				continue
			}
		} else {
			s.publishFailure(ctx, err, len(batch[i]), start)
		}
		resp.Errors = append(resp.Errors, models.BatchError{Index: i, Message: err.Error()})
	}
	return resp, nil
}

// store saves a decoded snapshot and builds its response
func (s *motionService) store(ctx context.Context, snapshot *motion.Snapshot, encodedSize int, start time.Time) (*models.SnapshotResponse, error) {
	statistics, err := s.analyzer.Statistics(snapshot)
	if err != nil {
		snapshot.Dispose()
		return nil, err
	}

	id, err := s.snapshots.Save(snapshot)
	if err != nil {
		snapshot.Dispose()
		return nil, apperrors.NewInternalError("failed to store snapshot", err)
	}
	entry, err := s.snapshots.Get(id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store snapshot", err)
	}

	issues := s.validator.Validate(validation.FrameMetrics{
		EncodedSize: encodedSize,
		Stats:       snapshot.Stats(),
		Statistics:  statistics,
	})

	grid := snapshot.Grid()
	s.publish(ctx, observer.MotionEvent{
		EventType:      observer.SnapshotCreated,
		ProcessingTime: time.Since(start),
		Success:        true,
		EncodedSize:    encodedSize,
		Metadata:       map[string]interface{}{"snapshot_id": id},
	})

	return &models.SnapshotResponse{
		ID:          id,
		CreatedAt:   entry.CreatedAt,
		Width:       grid.Width * snapshot.Scale(),
		Height:      grid.Height * snapshot.Scale(),
		Cols:        grid.Cols,
		Rows:        grid.Rows,
		EncodedSize: encodedSize,
		Stats:       snapshot.Stats(),
		Statistics:  statistics,
		Warnings:    s.validator.ConvertIssuesToMessages(issues),
	}, nil
}

// GetFeatures exports the block features of a snapshot, with the diff
// grid against previousID when given
func (s *motionService) GetFeatures(ctx context.Context, id, previousID string) (*models.Features, error) {
	current, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	var report *models.Report
	if previousID != "" {
		previous, err := s.lookup(previousID)
		if err != nil {
			return nil, err
		}
		if report, err = s.analyzer.Compare(current, previous, analyzer.DefaultOptions()); err != nil {
			return nil, err
		}
	}

	features, err := current.Features(report)
	if err != nil {
		return nil, err
	}
	return &features, nil
}

// GetImage returns the encoded frame a snapshot was built from
func (s *motionService) GetImage(ctx context.Context, id string) ([]byte, error) {
	snapshot, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return snapshot.Image()
}

// DeleteSnapshot removes and disposes a stored snapshot
func (s *motionService) DeleteSnapshot(ctx context.Context, id string) error {
	if err := s.snapshots.Delete(id); err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return apperrors.NewNotFoundError("snapshot not found", err).WithDetails("id=%s", id)
		}
		return apperrors.NewInternalError("failed to delete snapshot", err)
	}
	return nil
}

// Compare compares two stored snapshots with the named strategy
func (s *motionService) Compare(ctx context.Context, request models.CompareRequest) (*models.Report, error) {
	start := time.Now()

	cmp, err := strategy.ByName(s.analyzer, request.Strategy)
	if err != nil {
		return nil, err
	}
	current, err := s.lookup(request.CurrentID)
	if err != nil {
		return nil, err
	}
	previous, err := s.lookup(request.PreviousID)
	if err != nil {
		return nil, err
	}

	report, err := strategy.NewComparisonContext(cmp).ExecuteComparison(current, previous)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, observer.MotionEvent{
		EventType:      observer.ComparisonCompleted,
		ProcessingTime: time.Since(start),
		Success:        true,
		DiffCount:      report.Count(),
		Metadata:       map[string]interface{}{"strategy": cmp.GetStrategyName()},
	})
	return report, nil
}

// Tolerance returns the active tolerance
func (s *motionService) Tolerance() models.ToleranceResponse {
	return toleranceResponse(s.analyzer.Tolerance())
}

// Configure replaces the curves and mask, keeping unspecified channel errors
func (s *motionService) Configure(ctx context.Context, request models.ToleranceRequest) (*models.ToleranceResponse, error) {
	light, err := motion.CurveFromPairs(request.LightCurve)
	if err != nil {
		return nil, err
	}
	histo, err := motion.CurveFromPairs(request.HistoCurve)
	if err != nil {
		return nil, err
	}

	tol := s.analyzer.Tolerance()
	tol.LightCurve = light
	tol.HistoCurve = histo
	tol.Mask = motion.NormalizeMask([]byte(request.Mask))
	if request.SaturationError != nil {
		tol.SaturationError = *request.SaturationError
	}
	if request.HueError != nil {
		tol.HueError = *request.HueError
	}

	if err := s.analyzer.Configure(tol); err != nil {
		return nil, err
	}
	resp := toleranceResponse(s.analyzer.Tolerance())
	return &resp, nil
}

// ConfigureSensitivity derives the tolerance from a sensitivity, keeping the channel errors
func (s *motionService) ConfigureSensitivity(ctx context.Context, request models.SensitivityRequest) (*models.ToleranceResponse, error) {
	tol, err := motion.ToleranceForSensitivity(request.Sensitivity, []byte(request.Mask))
	if err != nil {
		return nil, err
	}
	current := s.analyzer.Tolerance()
	tol.SaturationError = current.SaturationError
	tol.HueError = current.HueError

	if err := s.analyzer.Configure(tol); err != nil {
		return nil, err
	}
	resp := toleranceResponse(s.analyzer.Tolerance())
	return &resp, nil
}

// Historic lists archived motion images
func (s *motionService) Historic(ctx context.Context, limit int) (*models.HistoricResponse, error) {
	if s.historic == nil {
		return nil, apperrors.NewUnavailableError("historic is not configured", nil)
	}
	items, err := s.historic.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list historic", err)
	}
	total, err := s.historic.Count(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count historic", err)
	}
	return &models.HistoricResponse{Items: items, Total: total}, nil
}

func (s *motionService) lookup(id string) (*motion.Snapshot, error) {
	entry, err := s.snapshots.Get(id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("snapshot not found", err).WithDetails("id=%s", id)
	}
	return entry.Snapshot, nil
}

func (s *motionService) publishFailure(ctx context.Context, err error, encodedSize int, start time.Time) {
	s.publish(ctx, observer.MotionEvent{
		EventType:      observer.SnapshotFailed,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
		EncodedSize:    encodedSize,
	})
}

func (s *motionService) publish(ctx context.Context, event observer.MotionEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}

func toleranceResponse(t motion.Tolerance) models.ToleranceResponse {
	return models.ToleranceResponse{
		LightCurve:         t.LightCurve.Pairs(),
		HistoCurve:         t.HistoCurve.Pairs(),
		Mask:               string(t.Mask),
		SaturationError:    t.SaturationError,
		HueError:           t.HueError,
		LowLightFloor:      t.LowLightFloor,
		LowSaturationFloor: t.LowSaturationFloor,
	}
}
