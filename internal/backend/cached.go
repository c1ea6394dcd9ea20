package backend

import (
	"context"

	"github.com/anatolykoptev/go_factcheck/internal/engine"
)

// API is what submissions need from the fact-checking backend.
type API interface {
	VideoInfo(ctx context.Context, url string) (VideoInfo, error)
	ExtractClaims(ctx context.Context, url string) (ClaimsResult, error)
}

var _ API = (*Client)(nil)

// Cached memoises successful responses of an API in the engine cache,
// keyed by the canonical video identity. Failures are never cached.
// With the engine cache disabled it is a pass-through.
type Cached struct {
	API API
}

var _ API = Cached{}

func (c Cached) VideoInfo(ctx context.Context, url string) (VideoInfo, error) {
	key := engine.CacheKey("video-info", engine.VideoKey(url))
	if out, ok := engine.CacheLoadJSON[VideoInfo](ctx, key); ok {
		return out, nil
	}
	out, err := c.API.VideoInfo(ctx, url)
	if err != nil {
		return out, err
	}
	engine.CacheStoreJSON(ctx, key, out)
	return out, nil
}

func (c Cached) ExtractClaims(ctx context.Context, url string) (ClaimsResult, error) {
	key := engine.CacheKey("extract-claims", engine.VideoKey(url))
	if out, ok := engine.CacheLoadJSON[ClaimsResult](ctx, key); ok {
		if out.Claims == nil {
			out.Claims = []string{}
		}
		return out, nil
	}
	out, err := c.API.ExtractClaims(ctx, url)
	if err != nil {
		return out, err
	}
	engine.CacheStoreJSON(ctx, key, out)
	return out, nil
}
