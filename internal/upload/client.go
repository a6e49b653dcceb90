// Package upload pushes product images to the external image host and
// removes them when products change pictures.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/freshtide/freshtide/internal/platform/retry"
	"github.com/freshtide/freshtide/internal/shared"
)

// Result identifies a stored image. PublicID is what delete calls take.
type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Client wraps interactions with the image host API.
type Client struct {
	baseURL    string
	key        string
	secret     string
	folder     string
	httpClient *http.Client
	retryCfg   retry.Config
}

// NewClient constructs a new client.
func NewClient(baseURL, key, secret, folder string) *Client {
	return &Client{
		baseURL: baseURL,
		key:     key,
		secret:  secret,
		folder:  folder,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryCfg: retry.DefaultConfig,
	}
}

// Upload stores an image and returns its hosted location. Rate limiting and
// server errors on the host side are retried with backoff; anything else
// fails immediately.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*Result, error) {
	payload, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	var result Result
	err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, bytes.NewReader(payload)); err != nil {
			return err
		}
		if err := writer.WriteField("folder", c.folder); err != nil {
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/upload", c.baseURL), body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Transient(err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if err := hostStatusError(resp.StatusCode); err != nil {
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		return nil, fmt.Errorf("image upload: %w: %w", shared.ErrUpstreamService, err)
	}
	return &result, nil
}

// Delete removes a previously uploaded image by its public id.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		endpoint := fmt.Sprintf("%s/upload/%s", c.baseURL, url.PathEscape(publicID))
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
		if err != nil {
			return err
		}
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Transient(err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode == http.StatusNotFound {
			// Already gone; deleting twice is not a failure.
			return nil
		}
		return hostStatusError(resp.StatusCode)
	})
	if err != nil {
		return fmt.Errorf("image delete: %w: %w", shared.ErrUpstreamService, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.key != "" {
		req.SetBasicAuth(c.key, c.secret)
	}
}

func hostStatusError(status int) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusTooManyRequests || status >= 500:
		return retry.Transient(fmt.Errorf("image host returned status %d", status))
	default:
		return fmt.Errorf("image host returned status %d", status)
	}
}
