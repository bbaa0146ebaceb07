package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// maxImageBytes caps remote card image downloads
const maxImageBytes = 10 << 20

// Source fetches cards and card images from the external card API
type Source interface {
	// ListSet returns every card in the set
	ListSet(ctx context.Context, setCode string) ([]*Card, error)

	// FetchImage downloads a card image by URL, returning bytes and the
	// response content type
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the card API.
// The API is unauthenticated; GET {base}/cards?set={code} returns
// {"data": [card, ...]}.
func NewAPIClient(baseURL string) Source {
	return &apiClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListSet fetches the full card list for a set
func (c *apiClient) ListSet(ctx context.Context, setCode string) ([]*Card, error) {
	endpoint := fmt.Sprintf("%s/cards?set=%s", c.baseURL, url.QueryEscape(setCode))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create card API request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("card API request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Warning: failed to close card API response body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read card API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "... (truncated)"
		}
		return nil, fmt.Errorf("card API returned %d for set %s: %s", resp.StatusCode, setCode, bodyPreview)
	}

	var result struct {
		Data []*Card `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse card API response: %w", err)
	}

	return result.Data, nil
}

// FetchImage downloads a card image. There is no local record to fall back
// on, so a non-2xx response is fatal for the candidate.
func (c *apiClient) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("image request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Warning: failed to close image response body: %v", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("image fetch returned %d for %s", resp.StatusCode, imageURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return data, contentType, nil
}
