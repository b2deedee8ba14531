package repository

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-motion-inspector/internal/decoder"
	"go-motion-inspector/internal/motion"
)

func newTestSnapshot(t *testing.T) *motion.Snapshot {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 90, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))

	s, err := motion.NewSnapshot(buf.Bytes(), decoder.NewJPEGDecoder(), decoder.Scale1X)
	require.NoError(t, err)
	return s
}

func TestMemorySnapshotRepository_SaveGetDelete(t *testing.T) {
	repo := NewMemorySnapshotRepository(0)
	s := newTestSnapshot(t)

	id, err := repo.Save(s)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	entry, err := repo.Get(id)
	require.NoError(t, err)
	assert.Same(t, s, entry.Snapshot)
	assert.Equal(t, 1, repo.Len())

	require.NoError(t, repo.Delete(id))
	assert.Equal(t, motion.StateDisposed, s.State())

	_, err = repo.Get(id)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, repo.Delete(id), ErrSnapshotNotFound)
}

func TestMemorySnapshotRepository_RejectsUnusable(t *testing.T) {
	repo := NewMemorySnapshotRepository(0)

	_, err := repo.Save(nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	s := newTestSnapshot(t)
	s.Dispose()
	_, err = repo.Save(s)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestMemorySnapshotRepository_CapacityDisposesOldest(t *testing.T) {
	repo := NewMemorySnapshotRepository(2)
	first := newTestSnapshot(t)

	firstID, err := repo.Save(first)
	require.NoError(t, err)
	_, err = repo.Save(newTestSnapshot(t))
	require.NoError(t, err)
	_, err = repo.Save(newTestSnapshot(t))
	require.NoError(t, err)

	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, motion.StateDisposed, first.State())
	_, err = repo.Get(firstID)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemorySnapshotRepository_Close(t *testing.T) {
	repo := NewMemorySnapshotRepository(0)
	s := newTestSnapshot(t)
	_, err := repo.Save(s)
	require.NoError(t, err)

	require.NoError(t, repo.Close())
	assert.Equal(t, motion.StateDisposed, s.State())

	_, err = repo.Save(newTestSnapshot(t))
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)
}
