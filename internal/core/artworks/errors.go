package artworks

import (
	"errors"
)

// Sentinel errors for artwork group lookups
var (
	// ErrArtistNotFound is returned when an artist lookup finds no matching record
	ErrArtistNotFound = errors.New("artist not found")

	// ErrTagNotFound is returned when a tag lookup finds no matching record
	ErrTagNotFound = errors.New("tag not found")
)

// IsNotFound checks if error indicates a missing artist or tag
func IsNotFound(err error) bool {
	return errors.Is(err, ErrArtistNotFound) || errors.Is(err, ErrTagNotFound)
}
