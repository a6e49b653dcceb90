package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freshtide/freshtide/internal/platform/retry"
	"github.com/freshtide/freshtide/internal/shared"
)

func fastClient(baseURL string) *Client {
	c := NewClient(baseURL, "key", "secret", "test/products")
	c.retryCfg = retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	return c
}

func TestUploadRetriesOnRateLimit(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "test/products", r.FormValue("folder"))
		_ = json.NewEncoder(w).Encode(Result{URL: "https://img.example/salmon.jpg", PublicID: "test/products/salmon"})
	}))
	defer server.Close()

	result, err := fastClient(server.URL).Upload(context.Background(), "salmon.jpg", strings.NewReader("fakejpeg"))
	require.NoError(t, err)
	require.Equal(t, 3, hits)
	require.Equal(t, "test/products/salmon", result.PublicID)
}

func TestUploadStopsAfterBudget(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := fastClient(server.URL).Upload(context.Background(), "salmon.jpg", strings.NewReader("fakejpeg"))
	require.True(t, errors.Is(err, shared.ErrUpstreamService))
	require.Equal(t, 3, hits)
}

func TestUploadDoesNotRetryClientErrors(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnsupportedMediaType)
	}))
	defer server.Close()

	_, err := fastClient(server.URL).Upload(context.Background(), "salmon.bmp", strings.NewReader("fakebmp"))
	require.True(t, errors.Is(err, shared.ErrUpstreamService))
	require.Equal(t, 1, hits)
}

func TestDeleteTreatsMissingAsGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	require.NoError(t, fastClient(server.URL).Delete(context.Background(), "test/products/gone"))
}
