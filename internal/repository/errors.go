package repository

import "errors"

var (
	// ErrSnapshotNotFound indicates the snapshot id is unknown
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidSnapshot indicates a nil or unusable snapshot was stored
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrRepositoryUnavailable indicates the repository is closed or unreachable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
