// Package storage provides temporary file handling for uploaded audio and the
// delivery backends that persist exported segments.
// It defines the Storage interface (port) for hexagonal architecture and
// implementations for local disk, S3 and MinIO.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrRemoteLocation is returned when a URL is passed where a local path is expected.
var ErrRemoteLocation = errors.New("location is remote")

// Storage defines the interface for temporary files and segment delivery.
type Storage interface {
	// SaveTemp saves data to a temporary file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// LoadTemp reads a local file and returns a reader.
	// The caller is responsible for closing the returned ReadCloser.
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// Deliver persists an exported file under key and returns where it can
	// be fetched from: a local path or a URL.
	Deliver(ctx context.Context, key string, data []byte) (location string, err error)

	// Discard removes previously delivered files by key. Missing keys are
	// not an error. It continues even if some removals fail and returns the
	// first error.
	Discard(ctx context.Context, keys []string) error
}

// IsRemote reports whether a delivery location is a URL rather than a local path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// contentType returns the MIME type used when uploading a delivered file.
func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".wav":
		return "audio/wav"
	case ".srt":
		return "application/x-subrip"
	default:
		return "application/octet-stream"
	}
}
