package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrObjectNotFound is returned when a download targets a key that does not
// exist in the bucket. Callers treat this as "skip and mark the candidate
// posted", never as a fatal job error.
var ErrObjectNotFound = errors.New("object not found in blob store")

// IsNotFound checks if error indicates a missing object
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// Store defines the interface for blob operations
type Store interface {
	// Download returns the raw bytes stored at key.
	// Returns ErrObjectNotFound if the key does not exist.
	Download(ctx context.Context, key string) ([]byte, error)

	// ListPrefix returns all keys under prefix, in lexical order
	ListPrefix(ctx context.Context, prefix string) ([]string, error)
}

// imageExtensions are the file extensions eligible for posting
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// IsImagePath reports whether the key has a recognized image extension
func IsImagePath(key string) bool {
	return imageExtensions[strings.ToLower(path.Ext(key))]
}

// ContentTypeForPath maps a storage key to a MIME type by extension.
// Unrecognized extensions fall back to JPEG, matching what the bucket
// actually holds.
func ContentTypeForPath(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
