package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go-motion-inspector/pkg/models"
)

type localArchive struct {
	root string
}

// NewLocalArchive stores frames below root
func NewLocalArchive(root string) (Archive, error) {
	if root == "" {
		return nil, fmt.Errorf("archive root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &localArchive{root: root}, nil
}

func (a *localArchive) Name() string {
	return "local:" + a.root
}

func (a *localArchive) Save(ctx context.Context, dir, name string, image []byte, info models.HistoricItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	imagePath, infoPath, err := objectPaths(dir, name)
	if err != nil {
		return "", err
	}

	full := filepath.Join(a.root, filepath.FromSlash(imagePath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}
	if err := os.WriteFile(full, image, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	doc, err := encodeInfo(imagePath, info)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(a.root, filepath.FromSlash(infoPath)), doc, 0o644); err != nil {
		return "", fmt.Errorf("write info: %w", err)
	}
	return imagePath, nil
}
