package engine

import (
	"strings"

	"github.com/kkdai/youtube/v2"
)

// VideoKey returns a canonical identity for a submitted URL so that
// youtu.be, watch?v= and shorts links of the same video share cache entries.
// Anything the extractor rejects is keyed by the trimmed raw string; the URL
// itself is always forwarded to the backend untouched.
func VideoKey(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "youtu.be/") && !strings.Contains(rawURL, "youtube.com/") {
		return "url:" + rawURL
	}
	if id, err := youtube.ExtractVideoID(rawURL); err == nil && id != "" {
		return "yt:" + id
	}
	return "url:" + rawURL
}
