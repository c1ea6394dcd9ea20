package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Submissions         atomic.Int64
	SubmissionErrors    atomic.Int64
	RejectedSubmissions atomic.Int64
	VideoInfoRequests   atomic.Int64
	VideoInfoErrors     atomic.Int64
	ClaimsRequests      atomic.Int64
	ClaimsErrors        atomic.Int64
	BackendRetries      atomic.Int64
	HistoryWrites       atomic.Int64
	HistoryErrors       atomic.Int64
	WebRequests         atomic.Int64
	TelegramMessages    atomic.Int64
}

var metricKeys = []string{
	"submissions", "submission_errors", "rejected_submissions",
	"video_info_requests", "video_info_errors",
	"claims_requests", "claims_errors", "backend_retries",
	"history_writes", "history_errors",
	"web_requests", "telegram_messages",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"submissions":          metrics.Submissions.Load(),
		"submission_errors":    metrics.SubmissionErrors.Load(),
		"rejected_submissions": metrics.RejectedSubmissions.Load(),
		"video_info_requests":  metrics.VideoInfoRequests.Load(),
		"video_info_errors":    metrics.VideoInfoErrors.Load(),
		"claims_requests":      metrics.ClaimsRequests.Load(),
		"claims_errors":        metrics.ClaimsErrors.Load(),
		"backend_retries":      metrics.BackendRetries.Load(),
		"history_writes":       metrics.HistoryWrites.Load(),
		"history_errors":       metrics.HistoryErrors.Load(),
		"web_requests":         metrics.WebRequests.Load(),
		"telegram_messages":    metrics.TelegramMessages.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the factcheck and backend packages.
func IncrSubmissions()         { metrics.Submissions.Add(1) }
func IncrSubmissionErrors()    { metrics.SubmissionErrors.Add(1) }
func IncrRejectedSubmissions() { metrics.RejectedSubmissions.Add(1) }
func IncrVideoInfoRequests()   { metrics.VideoInfoRequests.Add(1) }
func IncrVideoInfoErrors()     { metrics.VideoInfoErrors.Add(1) }
func IncrClaimsRequests()      { metrics.ClaimsRequests.Add(1) }
func IncrClaimsErrors()        { metrics.ClaimsErrors.Add(1) }

// Incrementors for history and the front ends.
func IncrHistoryWrites()    { metrics.HistoryWrites.Add(1) }
func IncrHistoryErrors()    { metrics.HistoryErrors.Add(1) }
func IncrWebRequests()      { metrics.WebRequests.Add(1) }
func IncrTelegramMessages() { metrics.TelegramMessages.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
