package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/anatolykoptev/go_factcheck/internal/engine"
)

// Data endpoints are relative to the configured base URL. The health check is
// served at the root of the backend's origin.
const (
	EndpointVideoInfo     = "/video-info"
	EndpointExtractClaims = "/extract-claims"
	EndpointHealth        = "/health"
)

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 8 << 20

// ErrMalformedResponse is wrapped by decode failures of a 2xx body.
var ErrMalformedResponse = errors.New("malformed backend response")

// VideoInfo is the subset of /video-info the front ends use.
type VideoInfo struct {
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Title        string `json:"title,omitempty"`
}

// ClaimsResult is the subset of /extract-claims the front ends use.
type ClaimsResult struct {
	Claims     []string `json:"claims"`
	Transcript string   `json:"transcript,omitempty"`
}

// StatusError reports a non-2xx response from an endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	switch e.Endpoint {
	case EndpointVideoInfo:
		return fmt.Sprintf("Error fetching video info: %d", e.StatusCode)
	case EndpointExtractClaims:
		return fmt.Sprintf("Error fetching claims: %d", e.StatusCode)
	}
	return fmt.Sprintf("backend %s: status %d", e.Endpoint, e.StatusCode)
}

// Client talks JSON over HTTP to the fact-checking API.
type Client struct {
	Base  string
	HTTP  *http.Client
	Retry engine.RetryConfig
}

// New returns a client for base. A nil httpClient falls back to http.DefaultClient.
// Retries default to none, matching a plain single request per call.
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	rc := engine.DefaultRetryConfig
	rc.MaxRetries = 0
	return &Client{
		Base:  strings.TrimRight(base, "/"),
		HTTP:  httpClient,
		Retry: rc,
	}
}

// VideoInfo resolves metadata for url.
func (c *Client) VideoInfo(ctx context.Context, url string) (VideoInfo, error) {
	engine.IncrVideoInfoRequests()
	body, err := c.post(ctx, EndpointVideoInfo, url)
	if err != nil {
		engine.IncrVideoInfoErrors()
		return VideoInfo{}, err
	}
	fields, err := decodeObject(body)
	if err != nil {
		engine.IncrVideoInfoErrors()
		return VideoInfo{}, fmt.Errorf("video-info: %w", err)
	}
	return VideoInfo{
		ThumbnailURL: looseString(fields["thumbnail_url"]),
		Title:        looseString(fields["title"]),
	}, nil
}

// ExtractClaims asks the backend to transcribe url and extract its claims.
// The returned Claims is never nil.
func (c *Client) ExtractClaims(ctx context.Context, url string) (ClaimsResult, error) {
	engine.IncrClaimsRequests()
	body, err := c.post(ctx, EndpointExtractClaims, url)
	if err != nil {
		engine.IncrClaimsErrors()
		return ClaimsResult{Claims: []string{}}, err
	}
	fields, err := decodeObject(body)
	if err != nil {
		engine.IncrClaimsErrors()
		return ClaimsResult{Claims: []string{}}, fmt.Errorf("extract-claims: %w", err)
	}
	return ClaimsResult{
		Claims:     looseStrings(fields["claims"]),
		Transcript: looseString(fields["transcript"]),
	}, nil
}

// HealthURL is /health on the origin of Base, so http://h/api gives
// http://h/health.
func (c *Client) HealthURL() (string, error) {
	u, err := url.Parse(c.Base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return u.ResolveReference(&url.URL{Path: EndpointHealth}).String(), nil
}

// Health checks GET /health. A 2xx with a status other than "ok" is unhealthy.
func (c *Client) Health(ctx context.Context) error {
	target, err := c.HealthURL()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return &StatusError{Endpoint: EndpointHealth, StatusCode: resp.StatusCode}
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return fmt.Errorf("health: %w: %v", ErrMalformedResponse, err)
	}
	if out.Status != "" && out.Status != "ok" {
		return fmt.Errorf("health: backend reports status %q", out.Status)
	}
	return nil
}

// WaitHealthy polls Health with exponential backoff until it succeeds,
// ctx ends, or maxElapsed passes.
func (c *Client) WaitHealthy(ctx context.Context, maxElapsed time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.Health(ctx)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Info("backend: not ready", slog.String("base", c.Base), slog.Duration("retry_in", next), slog.Any("error", err))
		}),
	)
	if err != nil {
		return fmt.Errorf("backend not healthy after %s: %w", maxElapsed, err)
	}
	return nil
}

// post sends {"url": url} to path and returns the 2xx body.
func (c *Client) post(ctx context.Context, path, url string) ([]byte, error) {
	payload, err := json.Marshal(struct {
		URL string `json:"url"`
	}{URL: url})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, c.Retry, path, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return c.HTTP.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

// decodeObject parses body as JSON and returns its fields. Invalid JSON and
// null are malformed; any other non-object value has no fields.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var v json.RawMessage
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, fmt.Errorf("%w: body is null", ErrMalformedResponse)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(v, &fields); err != nil {
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}

// looseString returns raw as a string, or "" when absent or not a string.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// looseStrings returns the string items of a JSON array. Non-arrays yield an
// empty list; non-string items are dropped.
func looseStrings(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}
