package container

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-motion-inspector/internal/config"
)

func testConfigs(t *testing.T) (*config.Config, *config.MotionConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	cfg := &config.Config{
		Host:               "127.0.0.1",
		Port:               "0",
		RequestTimeout:     time.Second,
		CaptureTimeout:     time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	motionCfg := config.DefaultMotionConfig()
	motionCfg.HistoricDB = filepath.Join(dir, "historic.db")
	motionCfg.Archive.Dir = filepath.Join(dir, "motions")
	return cfg, motionCfg
}

func writeFrames(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 64, 64)), nil))
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("%04d.jpg", i)), buf.Bytes(), 0o644))
	}
}

func TestNewContainer_WithoutCamera(t *testing.T) {
	cfg, motionCfg := testConfigs(t)

	c, err := NewContainer(cfg, motionCfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.monitor)
	assert.Same(t, cfg, c.Config())
	assert.NotNil(t, c.Service())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/monitor", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"running":false`)

	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	// Start without a camera is a no-op
	c.Start(context.Background())
}

func TestNewContainer_DirectoryCamera(t *testing.T) {
	cfg, motionCfg := testConfigs(t)
	frames := t.TempDir()
	writeFrames(t, frames, 3)
	motionCfg.Camera = config.CameraConfig{Type: "directory", Dir: frames}

	c, err := NewContainer(cfg, motionCfg)
	require.NoError(t, err)
	require.NotNil(t, c.monitor)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	assert.Eventually(t, func() bool {
		return c.monitor.Status().Frames > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	c.Close()
	assert.False(t, c.monitor.Status().Running)
}

func TestNewContainer_Errors(t *testing.T) {
	t.Run("bad camera", func(t *testing.T) {
		cfg, motionCfg := testConfigs(t)
		motionCfg.Camera = config.CameraConfig{Type: "directory", Dir: t.TempDir()}
		_, err := NewContainer(cfg, motionCfg)
		assert.Error(t, err)
	})

	t.Run("bad scale", func(t *testing.T) {
		cfg, motionCfg := testConfigs(t)
		motionCfg.Scale = 3
		_, err := NewContainer(cfg, motionCfg)
		assert.Error(t, err)
	})

	t.Run("bad historic path", func(t *testing.T) {
		cfg, motionCfg := testConfigs(t)
		motionCfg.HistoricDB = filepath.Join(t.TempDir(), "missing", "dir", "historic.db")
		_, err := NewContainer(cfg, motionCfg)
		assert.Error(t, err)
	})
}
