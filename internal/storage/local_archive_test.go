package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-motion-inspector/pkg/models"
)

func TestLocalArchive_Save(t *testing.T) {
	root := t.TempDir()
	archive, err := NewLocalArchive(root)
	require.NoError(t, err)

	info := models.HistoricItem{
		MotionID:  3,
		TakenAt:   time.Date(2026, 10, 17, 10, 7, 30, 0, time.UTC),
		Width:     80,
		Height:    60,
		SquareX:   8,
		SquareY:   8,
		Diffs:     "  ##  ",
		DiffCount: 2,
	}

	path, err := archive.Save(context.Background(), "2026/10/17/10h05", "2026-10-17_10-07-30 Id=12 D=2", []byte("jpeg"), info)
	require.NoError(t, err)
	assert.Equal(t, "2026/10/17/10h05/2026-10-17_10-07-30 Id=12 D=2.jpg", path)

	image, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(image))

	raw, err := os.ReadFile(filepath.Join(root, "2026", "10", "17", "10h05", "2026-10-17_10-07-30 Id=12 D=2.json"))
	require.NoError(t, err)
	var doc FrameInfo
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, path, doc.Image)
	assert.Equal(t, 3, doc.MotionID)
	assert.Equal(t, "2026-10-17 10:07:30", doc.TakenAt)
	assert.Equal(t, 2, doc.DiffCount)
}

func TestLocalArchive_RejectsBadNames(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "a/b", "..x"} {
		_, err := archive.Save(context.Background(), "d", name, []byte("x"), models.HistoricItem{})
		assert.Error(t, err, name)
	}
}

func TestObjectPaths_StaysBelowRoot(t *testing.T) {
	img, info, err := objectPaths("../../etc", "frame")
	require.NoError(t, err)
	assert.Equal(t, "etc/frame.jpg", img)
	assert.Equal(t, "etc/frame.json", info)
}
