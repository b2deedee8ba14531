package factory

import (
	"fmt"
	"time"

	"go-motion-inspector/internal/camera"
	"go-motion-inspector/internal/config"
	"go-motion-inspector/internal/storage"
	"go-motion-inspector/pkg/validation"
)

// SourceType represents the supported camera sources
type SourceType string

const (
	// HTTPSource polls a JPEG snapshot URL
	HTTPSource SourceType = "http"
	// DirectorySource replays JPEG files from a directory
	DirectorySource SourceType = "directory"
)

// ArchiveType represents the supported archive backends
type ArchiveType string

const (
	// LocalArchive writes frames under a local directory
	LocalArchive ArchiveType = "local"
	// AzureArchive uploads frames to an Azure blob container
	AzureArchive ArchiveType = "azure"
)

// CameraFactory creates frame sources
type CameraFactory interface {
	CreateSource(cfg config.CameraConfig) (camera.Source, error)
}

// ArchiveFactory creates motion archives
type ArchiveFactory interface {
	CreateArchive(cfg config.ArchiveConfig) (storage.Archive, error)
}

// cameraFactory implements CameraFactory
type cameraFactory struct {
	timeout time.Duration
}

// NewCameraFactory creates a camera factory whose HTTP sources use timeout per request
func NewCameraFactory(timeout time.Duration) CameraFactory {
	return &cameraFactory{timeout: timeout}
}

// CreateSource creates a source based on the configured type
func (f *cameraFactory) CreateSource(cfg config.CameraConfig) (camera.Source, error) {
	switch SourceType(cfg.Type) {
	case HTTPSource:
		validator := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedHosts)
		cameraURL, err := validator.ParseCameraURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		opts := []camera.HTTPOption{camera.WithMaxFrameSize(cfg.MaxFrameSize)}
		if cfg.InsecureTLS {
			opts = append(opts, camera.WithInsecureTLS())
		}
		return camera.NewHTTPSource(cameraURL.String(), f.timeout, opts...), nil
	case DirectorySource:
		src, err := camera.NewDirectorySource(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported camera type: %s", cfg.Type)
	}
}

// archiveFactory implements ArchiveFactory
type archiveFactory struct{}

// NewArchiveFactory creates a new archive factory
func NewArchiveFactory() ArchiveFactory {
	return &archiveFactory{}
}

// CreateArchive creates an archive based on the configured type
func (f *archiveFactory) CreateArchive(cfg config.ArchiveConfig) (storage.Archive, error) {
	switch ArchiveType(cfg.Type) {
	case LocalArchive:
		return storage.NewLocalArchive(cfg.Dir)
	case AzureArchive:
		return storage.NewAzureArchive(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", cfg.Type)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	CameraFactory  CameraFactory
	ArchiveFactory ArchiveFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(captureTimeout time.Duration) *ComponentFactory {
	return &ComponentFactory{
		CameraFactory:  NewCameraFactory(captureTimeout),
		ArchiveFactory: NewArchiveFactory(),
	}
}
