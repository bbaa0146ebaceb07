package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	// mediaPollInterval is how often the media-status endpoint is polled
	// while an attachment is processing
	mediaPollInterval = 2 * time.Second

	// mediaPollAttempts bounds the poll loop. If the attachment is still
	// processing after this many checks we post anyway: posting with
	// possibly-unready media beats never posting.
	mediaPollAttempts = 10

	// maxBodyPreview truncates remote error bodies before they reach logs
	// and job summaries
	maxBodyPreview = 200
)

type client struct {
	httpClient   *http.Client
	pollInterval time.Duration
	pollAttempts int
}

// NewClient creates a publish client for Mastodon-compatible instances
func NewClient() Service {
	return &client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollInterval: mediaPollInterval,
		pollAttempts: mediaPollAttempts,
	}
}

// Publish uploads media (if any), waits for processing, and creates a status
// Flow:
// 1. POST /api/v2/media (multipart) -> attachment id
// 2. Poll GET /api/v1/media/{id} until processed/failed, bounded
// 3. POST /api/v1/statuses with the media id and visibility=public
func (c *client) Publish(ctx context.Context, target Target, text string, data []byte, contentType string) (*Status, error) {
	var mediaIDs []string

	if len(data) > 0 {
		attachment, err := c.uploadMedia(ctx, target, data, contentType)
		if err != nil {
			return nil, err
		}

		if err := c.awaitProcessing(ctx, target, attachment); err != nil {
			return nil, err
		}

		mediaIDs = append(mediaIDs, attachment.ID)
	}

	return c.createStatus(ctx, target, text, mediaIDs)
}

// uploadMedia posts the bytes as multipart form data to the media endpoint
func (c *client) uploadMedia(ctx context.Context, target Target, data []byte, contentType string) (*MediaAttachment, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileNameFor(contentType))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write media bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := target.GetInstanceURL() + "/api/v2/media"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create media upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+target.GetAccessToken())

	body, status, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("media upload request failed: %w", err)
	}
	// 202 means the attachment is accepted but still processing
	if status != http.StatusOK && status != http.StatusAccepted {
		return nil, &PublishError{Op: "upload media", StatusCode: status, Body: preview(body)}
	}

	var attachment MediaAttachment
	if err := json.Unmarshal(body, &attachment); err != nil {
		return nil, fmt.Errorf("failed to parse media upload response: %w", err)
	}

	return &attachment, nil
}

// awaitProcessing polls the media-status endpoint until the attachment is
// processed (state says so, or a URL is present) or the instance reports
// failure. A media id observed as failed is never attached to a status.
// Exhausting the poll budget is not fatal: we proceed with a warning.
func (c *client) awaitProcessing(ctx context.Context, target Target, attachment *MediaAttachment) error {
	// Synchronous upload path: already processed, or already failed
	if attachment.State == MediaStateFailed {
		return &PublishError{Op: "upload media", StatusCode: http.StatusOK, Body: "media state: failed"}
	}
	if attachment.State == MediaStateProcessed || attachment.URL != "" {
		return nil
	}

	endpoint := target.GetInstanceURL() + "/api/v1/media/" + attachment.ID

	for attempt := 1; attempt <= c.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create media status request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+target.GetAccessToken())

		body, status, err := c.do(req)
		if err != nil {
			return fmt.Errorf("media status request failed: %w", err)
		}

		switch status {
		case http.StatusOK:
			var current MediaAttachment
			if err := json.Unmarshal(body, &current); err != nil {
				return fmt.Errorf("failed to parse media status response: %w", err)
			}
			// Some instances report failure with a 200 body instead of a 422
			if current.State == MediaStateFailed {
				return &PublishError{Op: "media status", StatusCode: status, Body: "media state: failed"}
			}
			if current.State == MediaStateProcessed || current.URL != "" {
				return nil
			}
			// still processing, keep polling
		case http.StatusPartialContent:
			// 206: still processing, keep polling
		case http.StatusUnprocessableEntity:
			// Processing failed server-side; never post this media id
			return &PublishError{Op: "media status", StatusCode: status, Body: preview(body)}
		default:
			return &PublishError{Op: "media status", StatusCode: status, Body: preview(body)}
		}
	}

	log.Printf("[PUBLISH] Warning: media %s still processing after %d checks, posting anyway", attachment.ID, c.pollAttempts)
	return nil
}

// createStatus posts the final status with the attached media ids
func (c *client) createStatus(ctx context.Context, target Target, text string, mediaIDs []string) (*Status, error) {
	payload := map[string]interface{}{
		"status":     text,
		"visibility": "public",
	}
	if len(mediaIDs) > 0 {
		payload["media_ids"] = mediaIDs
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status payload: %w", err)
	}

	endpoint := target.GetInstanceURL() + "/api/v1/statuses"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+target.GetAccessToken())

	body, status, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, &PublishError{Op: "create status", StatusCode: status, Body: preview(body)}
	}

	var created Status
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	return &created, nil
}

// do executes the request and returns the full body and status code
func (c *client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Warning: failed to close response body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// fileNameFor gives the multipart part a filename matching the content type;
// some instances reject uploads without one
func fileNameFor(contentType string) string {
	switch contentType {
	case "image/png":
		return "media.png"
	case "image/webp":
		return "media.webp"
	case "image/gif":
		return "media.gif"
	default:
		return "media.jpg"
	}
}

// preview truncates a remote response body for logs and summaries
func preview(body []byte) string {
	s := string(body)
	if len(s) > maxBodyPreview {
		return s[:maxBodyPreview] + "... (truncated)"
	}
	return s
}
