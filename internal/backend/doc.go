// Package backend is the HTTP client for the external fact-checking API.
//
// The API is a black box that resolves video metadata and extracts claims
// from a video's transcript. Two endpoints are used by submissions:
//
//	POST {base}/video-info       {"url": "..."} → {"thumbnail_url": "...", "title": "..."}
//	POST {base}/extract-claims   {"url": "..."} → {"claims": ["..."], "transcript": "..."}
//
// plus GET {base}/health for readiness checks. Both POSTs send JSON and treat
// any non-2xx status as a *StatusError. Response decoding is lenient: a
// missing thumbnail is empty, and a "claims" value that is not an array
// decodes to an empty list rather than an error.
package backend
