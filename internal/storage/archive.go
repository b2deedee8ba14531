// Package storage archives motion frames: the JPEG image and a JSON
// description side by side.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"go-motion-inspector/pkg/models"
)

// Archive persists detected motion frames
type Archive interface {
	// Save writes <dir>/<name>.jpg and <dir>/<name>.json and returns the image path
	Save(ctx context.Context, dir, name string, image []byte, info models.HistoricItem) (string, error)
	Name() string
}

// FrameInfo is the JSON document stored next to each archived image
type FrameInfo struct {
	Image     string `json:"image"`
	MotionID  int    `json:"motion_id"`
	TakenAt   string `json:"taken_at"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SquareX   int    `json:"square_x"`
	SquareY   int    `json:"square_y"`
	Diffs     string `json:"diffs"`
	DiffCount int    `json:"diff_count"`
}

func objectPaths(dir, name string) (string, string, error) {
	if name == "" {
		return "", "", fmt.Errorf("empty frame name")
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return "", "", fmt.Errorf("invalid frame name %q", name)
	}
	clean := path.Clean("/" + dir)[1:]
	base := path.Join(clean, name)
	return base + ".jpg", base + ".json", nil
}

func encodeInfo(imagePath string, info models.HistoricItem) ([]byte, error) {
	return json.MarshalIndent(FrameInfo{
		Image:     imagePath,
		MotionID:  info.MotionID,
		TakenAt:   info.TakenAt.Format("2006-01-02 15:04:05"),
		Width:     info.Width,
		Height:    info.Height,
		SquareX:   info.SquareX,
		SquareY:   info.SquareY,
		Diffs:     info.Diffs,
		DiffCount: info.DiffCount,
	}, "", "\t")
}
