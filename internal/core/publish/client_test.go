package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTarget struct {
	url   string
	token string
}

func (t *testTarget) GetInstanceURL() string { return t.url }
func (t *testTarget) GetAccessToken() string { return t.token }

func fastClient() *client {
	return &client{
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		pollInterval: time.Millisecond,
		pollAttempts: 3,
	}
}

func TestPublish_TextOnly(t *testing.T) {
	var mediaCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/statuses":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "hello fedi", payload["status"])
			assert.Equal(t, "public", payload["visibility"])
			_, hasMedia := payload["media_ids"]
			assert.False(t, hasMedia)

			json.NewEncoder(w).Encode(Status{ID: "st-1", URL: "https://inst/st-1"})
		default:
			atomic.AddInt32(&mediaCalls, 1)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	status, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok-1"}, "hello fedi", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "st-1", status.ID)
	assert.Equal(t, int32(0), atomic.LoadInt32(&mediaCalls))
}

func TestPublish_SynchronousMedia(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/media":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			_, header, err := r.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "media.png", header.Filename)

			// URL populated immediately: no polling needed
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1", URL: "https://inst/m-1.png"})
		case "/api/v1/media/m-1":
			atomic.AddInt32(&polls, 1)
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1", URL: "https://inst/m-1.png"})
		case "/api/v1/statuses":
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, []interface{}{"m-1"}, payload["media_ids"])
			json.NewEncoder(w).Encode(Status{ID: "st-2", URL: "https://inst/st-2"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	status, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "with art", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "st-2", status.ID)
	assert.Equal(t, int32(0), atomic.LoadInt32(&polls))
}

func TestPublish_PollsUntilProcessed(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/media":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1"})
		case "/api/v1/media/m-1":
			if atomic.AddInt32(&polls, 1) < 2 {
				w.WriteHeader(http.StatusPartialContent)
				return
			}
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1", URL: "https://inst/m-1.png"})
		case "/api/v1/statuses":
			json.NewEncoder(w).Encode(Status{ID: "st-3"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	status, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "t", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "st-3", status.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&polls))
}

func TestPublish_FailedMediaNeverPosted(t *testing.T) {
	var statusCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/media":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1"})
		case "/api/v1/media/m-1":
			http.Error(w, "processing failed", http.StatusUnprocessableEntity)
		case "/api/v1/statuses":
			atomic.AddInt32(&statusCalls, 1)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	_, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "t", []byte("png"), "image/png")

	require.Error(t, err)
	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, http.StatusUnprocessableEntity, pubErr.StatusCode)
	assert.Equal(t, int32(0), atomic.LoadInt32(&statusCalls))
}

func TestPublish_FailedStateIn200PollAborts(t *testing.T) {
	var statusCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/media":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1"})
		case "/api/v1/media/m-1":
			// failure reported in the body, not the HTTP status
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1", State: MediaStateFailed})
		case "/api/v1/statuses":
			atomic.AddInt32(&statusCalls, 1)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	_, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "t", []byte("png"), "image/png")

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Contains(t, pubErr.Body, "failed")
	assert.Equal(t, int32(0), atomic.LoadInt32(&statusCalls))
}

func TestPublish_FailedStateOnUploadAborts(t *testing.T) {
	var polls, statusCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/media":
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1", State: MediaStateFailed})
		case "/api/v1/media/m-1":
			atomic.AddInt32(&polls, 1)
		case "/api/v1/statuses":
			atomic.AddInt32(&statusCalls, 1)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	_, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "t", []byte("png"), "image/png")

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&polls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&statusCalls))
}

func TestPublish_ProcessedStateWithoutURLIsDone(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/media":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1"})
		case "/api/v1/media/m-1":
			atomic.AddInt32(&polls, 1)
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1", State: MediaStateProcessed})
		case "/api/v1/statuses":
			json.NewEncoder(w).Encode(Status{ID: "st-5"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	status, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "t", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "st-5", status.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&polls))
}

func TestPublish_PollBudgetExhaustedPostsAnyway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/media":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(MediaAttachment{ID: "m-1"})
		case "/api/v1/media/m-1":
			// never finishes processing
			w.WriteHeader(http.StatusPartialContent)
		case "/api/v1/statuses":
			json.NewEncoder(w).Encode(Status{ID: "st-4"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	status, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "t", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "st-4", status.ID)
}

func TestPublish_StatusRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "text too long", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := fastClient().Publish(context.Background(), &testTarget{server.URL, "tok"}, "t", nil, "")

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, "create status", pubErr.Op)
	assert.Contains(t, pubErr.Body, "text too long")
}

func TestPreviewTruncatesLongBodies(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	assert.Len(t, preview(long), maxBodyPreview+len("... (truncated)"))
	assert.Equal(t, "short", preview([]byte("short")))
}
