// Package toolutil provides helpers shared by the MCP tools and the CLI.
package toolutil

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
	"github.com/anatolykoptev/go_factcheck/internal/history"
)

// ErrURLRequired is returned for a blank url argument.
var ErrURLRequired = errors.New("url is required")

// RequireURL trims the argument and rejects an empty one.
func RequireURL(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", ErrURLRequired
	}
	return url, nil
}

// CheckVideo runs one submission on a fresh form and returns its settled
// state. rec may be nil.
func CheckVideo(ctx context.Context, api backend.API, rec history.Recorder, url string) (factcheck.State, error) {
	var opts []factcheck.Option
	if rec != nil {
		opts = append(opts, factcheck.WithRecorder(rec))
	}
	form := factcheck.New(api, opts...)
	defer form.Close()
	return form.Submit(ctx, url)
}

// HistoryItem is the wire shape of a history record.
type HistoryItem struct {
	ID           int64    `json:"id"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Claims       []string `json:"claims"`
	Error        string   `json:"error,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// ToHistoryItem converts a record, formatting the timestamp as RFC3339.
func ToHistoryItem(r history.Record) HistoryItem {
	claims := r.Claims
	if claims == nil {
		claims = []string{}
	}
	return HistoryItem{
		ID:           r.ID,
		URL:          r.URL,
		ThumbnailURL: r.ThumbnailURL,
		Claims:       claims,
		Error:        r.Error,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
