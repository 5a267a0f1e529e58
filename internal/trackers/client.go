package trackers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/trax/internal/shared"
	"github.com/desertthunder/trax/internal/track"
	"golang.org/x/time/rate"
)

// requestsPerSecond caps outbound calls per adapter; tracker APIs throttle
// aggressively (Shikimori allows 5 rps).
const requestsPerSecond = 3

// httpClient wraps an [http.Client] with rate limiting and JSON helpers
// shared by all tracker adapters.
type httpClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPClient(client *http.Client) *httpClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// do performs a rate-limited HTTP request and decodes a JSON response into
// result when non-nil. Non-2xx statuses map to [shared.ErrAPIRequest].
func (c *httpClient) do(ctx context.Context, method, rawURL string, header http.Header, body io.Reader, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, method, rawURL, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *httpClient) getJSON(ctx context.Context, rawURL, token string, extra http.Header, result any) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range extra {
		header[key] = values
	}
	return c.do(ctx, http.MethodGet, rawURL, header, nil, result)
}

// postForm performs a form-encoded POST and decodes the JSON response.
func (c *httpClient) postForm(ctx context.Context, rawURL string, form url.Values, result any) error {
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, http.MethodPost, rawURL, header, strings.NewReader(form.Encode()), result)
}

// sendJSON performs a request with a JSON body and decodes the JSON response.
func (c *httpClient) sendJSON(ctx context.Context, method, rawURL, token string, extra http.Header, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range extra {
		header[key] = values
	}
	return c.do(ctx, method, rawURL, header, bytes.NewReader(data), result)
}

// formReader wraps encoded form values for use as a request body.
func formReader(form url.Values) io.Reader {
	return strings.NewReader(form.Encode())
}

// tokenResponse is the OAuth token payload shared by the REST trackers.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// auth converts a token response into a stored auth record.
func (t tokenResponse) auth() *track.Auth {
	auth := &track.Auth{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		auth.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return auth
}
