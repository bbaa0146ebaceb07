package publish

import (
	"context"
	"errors"
	"fmt"
)

// Target represents any entity that can receive posts on an instance.
// This interface keeps the publish package decoupled from the accounts
// package; accounts.Account implements it.
type Target interface {
	// GetInstanceURL returns the base URL of the instance (no trailing slash)
	GetInstanceURL() string
	// GetAccessToken returns the bearer token for authenticating with the instance
	GetAccessToken() string
}

// Service defines the interface for publishing posts
type Service interface {
	// Publish uploads the media (if any), waits for server-side processing,
	// and creates a public status. data may be nil for text-only posts.
	Publish(ctx context.Context, target Target, text string, data []byte, contentType string) (*Status, error)
}

// Status is a created post as returned by the instance
type Status struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Media processing states reported by the instance
const (
	MediaStateProcessing = "processing"
	MediaStateProcessed  = "processed"
	MediaStateFailed     = "failed"
)

// MediaAttachment is the instance's view of an uploaded media item.
// URL is empty while the attachment is still processing (202 path);
// State mirrors the instance's processing state where reported.
type MediaAttachment struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	URL   string `json:"url"`
	State string `json:"state"`
}

// PublishError carries the HTTP status and response body of a failed call
// to the instance API. The caller decides per step whether the candidate
// is consumed or left for retry.
type PublishError struct {
	Op         string // "upload media", "media status", "create status"
	StatusCode int
	Body       string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsPublishError checks if err is a non-2xx instance API response
func IsPublishError(err error) bool {
	var pubErr *PublishError
	return errors.As(err, &pubErr)
}
