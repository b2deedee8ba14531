package camera

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	apperrors "go-motion-inspector/internal/errors"
)

// DirectorySource replays the JPEG files of a directory in name order, looping
type DirectorySource struct {
	mu    sync.Mutex
	dir   string
	files []string
	next  int
}

// NewDirectorySource lists the .jpg/.jpeg files of dir
func NewDirectorySource(dir string) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewUnavailableError("cannot read frame directory", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, apperrors.NewUnavailableError("no JPEG frame in directory", nil).WithDetails("dir=%s", dir)
	}
	sort.Strings(files)

	return &DirectorySource{dir: dir, files: files}, nil
}

// Name returns the source name
func (s *DirectorySource) Name() string {
	return "dir:" + s.dir
}

// Capture returns the next file content
func (s *DirectorySource) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("capture cancelled", err)
	}

	s.mu.Lock()
	path := s.files[s.next]
	s.next = (s.next + 1) % len(s.files)
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewUnavailableError("cannot read frame", err)
	}
	return data, nil
}
