package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-motion-inspector/internal/errors"
	"go-motion-inspector/internal/motion"
	"go-motion-inspector/internal/observer"
	"go-motion-inspector/internal/repository"
	"go-motion-inspector/pkg/models"
)

type serviceFixture struct {
	service  MotionService
	historic repository.HistoricRepository
	events   *recordingSubject
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	historic, err := repository.NewSQLiteHistoricRepository(":memory:")
	require.NoError(t, err)
	snapshots := repository.NewMemorySnapshotRepository(0)
	t.Cleanup(func() {
		snapshots.Close()
		historic.Close()
	})

	events := &recordingSubject{}
	return &serviceFixture{
		service:  NewMotionService(newTestAnalyzer(t), snapshots, historic, events),
		historic: historic,
		events:   events,
	}
}

func TestMotionService_CreateSnapshot(t *testing.T) {
	f := newServiceFixture(t)

	resp, err := f.service.CreateSnapshot(context.Background(), sceneJPEG(t, 0, 0))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 64, resp.Width)
	assert.Equal(t, 64, resp.Height)
	assert.Equal(t, 8, resp.Cols)
	assert.Equal(t, 8, resp.Rows)
	assert.Greater(t, resp.Statistics.LightStdDev, 0.0)
	assert.Len(t, f.events.ofType(observer.SnapshotCreated), 1)
}

func TestMotionService_CreateSnapshot_InvalidFrame(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.CreateSnapshot(context.Background(), []byte("not a jpeg"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDecode))
	assert.Len(t, f.events.ofType(observer.SnapshotFailed), 1)

	_, err = f.service.CreateSnapshot(context.Background(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidFrame))
}

func TestMotionService_CompareAndFeatures(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	a, err := f.service.CreateSnapshot(ctx, sceneJPEG(t, 0, 0))
	require.NoError(t, err)
	b, err := f.service.CreateSnapshot(ctx, sceneJPEG(t, 32, 32))
	require.NoError(t, err)

	report, err := f.service.Compare(ctx, models.CompareRequest{CurrentID: b.ID, PreviousID: a.ID, Strategy: "shapes"})
	require.NoError(t, err)
	assert.Equal(t, 8, report.Count())
	assert.Len(t, report.Shapes, 2)
	assert.Len(t, f.events.ofType(observer.ComparisonCompleted), 1)

	features, err := f.service.GetFeatures(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Len(t, features.Lights, 64)
	assert.Equal(t, report.Diff.Diffs, features.Diffs)

	plain, err := f.service.GetFeatures(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Empty(t, plain.Diffs)
}

func TestMotionService_Compare_Errors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	a, err := f.service.CreateSnapshot(ctx, sceneJPEG(t, 0, 0))
	require.NoError(t, err)

	_, err = f.service.Compare(ctx, models.CompareRequest{CurrentID: a.ID, PreviousID: "missing"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = f.service.Compare(ctx, models.CompareRequest{CurrentID: a.ID, PreviousID: a.ID, Strategy: "fft"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	// A snapshot compared with itself has no difference
	report, err := f.service.Compare(ctx, models.CompareRequest{CurrentID: a.ID, PreviousID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Count())
}

func TestMotionService_CreateSnapshots(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	batch := [][]byte{sceneJPEG(t, 0, 0), []byte("not a jpeg"), sceneJPEG(t, 32, 32)}
	resp, err := f.service.CreateSnapshots(ctx, batch)
	require.NoError(t, err)

	require.Len(t, resp.Snapshots, 2)
	assert.Equal(t, len(batch[0]), resp.Snapshots[0].EncodedSize)
	assert.Equal(t, len(batch[2]), resp.Snapshots[1].EncodedSize)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 1, resp.Errors[0].Index)
	assert.Len(t, f.events.ofType(observer.SnapshotCreated), 2)
	assert.Len(t, f.events.ofType(observer.SnapshotFailed), 1)

	report, err := f.service.Compare(ctx, models.CompareRequest{
		CurrentID:  resp.Snapshots[1].ID,
		PreviousID: resp.Snapshots[0].ID,
		Strategy:   "shapes",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, report.Count())

	_, err = f.service.CreateSnapshots(ctx, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestMotionService_GetImage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	encoded := sceneJPEG(t, 16, 16)
	a, err := f.service.CreateSnapshot(ctx, encoded)
	require.NoError(t, err)

	image, err := f.service.GetImage(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, encoded, image)

	_, err = f.service.GetImage(ctx, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestMotionService_DeleteSnapshot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	a, err := f.service.CreateSnapshot(ctx, sceneJPEG(t, 0, 0))
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteSnapshot(ctx, a.ID))
	err = f.service.DeleteSnapshot(ctx, a.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = f.service.GetFeatures(ctx, a.ID, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestMotionService_Tolerance(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	current := f.service.Tolerance()
	assert.Equal(t, motion.DefaultSaturationError, current.SaturationError)

	hue := 60
	resp, err := f.service.Configure(ctx, models.ToleranceRequest{
		LightCurve: [][2]int{{0, 12}, {30, 12}, {128, 30}, {257, 30}},
		HistoCurve: [][2]int{{0, 0}, {32, 32}, {128, 128}, {257, 257}},
		Mask:       "////",
		HueError:   &hue,
	})
	require.NoError(t, err)
	assert.Equal(t, 60, resp.HueError)
	assert.Equal(t, motion.DefaultSaturationError, resp.SaturationError)
	assert.Equal(t, "////", resp.Mask)
	assert.Equal(t, [][2]int{{0, 12}, {30, 12}, {128, 30}, {257, 30}}, resp.LightCurve)

	_, err = f.service.Configure(ctx, models.ToleranceRequest{
		LightCurve: [][2]int{{0, 12}, {30, 12}},
		HistoCurve: [][2]int{{0, 0}, {32, 32}, {128, 128}, {257, 257}},
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))

	resp, err = f.service.ConfigureSensitivity(ctx, models.SensitivityRequest{Sensitivity: 20})
	require.NoError(t, err)
	assert.Equal(t, 52, resp.LightCurve[2][1])
	assert.Equal(t, 60, resp.HueError, "channel errors survive a sensitivity change")
	assert.Empty(t, resp.Mask)

	_, err = f.service.ConfigureSensitivity(ctx, models.SensitivityRequest{Sensitivity: 101})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadConfiguration))
}

func TestMotionService_Historic(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.historic.Add(ctx, models.HistoricItem{MotionID: 1, Path: "a.jpg", Name: "a", TakenAt: time.Now()})
	require.NoError(t, err)

	resp, err := f.service.Historic(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "a.jpg", resp.Items[0].Path)
}

func TestMotionService_Historic_NotConfigured(t *testing.T) {
	snapshots := repository.NewMemorySnapshotRepository(0)
	defer snapshots.Close()
	svc := NewMotionService(newTestAnalyzer(t), snapshots, nil, nil)

	_, err := svc.Historic(context.Background(), 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}
