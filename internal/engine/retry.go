package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"
)

// RetryConfig controls how backend calls are retried.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig backs off from 500ms to 10s. MaxRetries is overridden
// per backend from BACKEND_RETRIES.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// wait is the pause before retry number attempt+1.
func (rc RetryConfig) wait(attempt int) time.Duration {
	mult := rc.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := time.Duration(float64(rc.InitialWait) * math.Pow(mult, float64(attempt)))
	if rc.MaxWait > 0 && d > rc.MaxWait {
		d = rc.MaxWait
	}
	return d
}

// RetryDo runs fn and retries transient failures up to MaxRetries times.
// Context cancellation and non-retryable errors return immediately.
func RetryDo[T any](ctx context.Context, rc RetryConfig, op string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == rc.MaxRetries {
			break
		}

		d := rc.wait(attempt)
		metrics.BackendRetries.Add(1)
		slog.Debug("backend: retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", d),
			slog.Any("error", err))
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}

// RetryHTTP retries fn on transport errors and retryable statuses.
// A retryable status that survives the last attempt is returned as the
// response so the caller can report the real status code.
func RetryHTTP(ctx context.Context, rc RetryConfig, op string, fn func() (*http.Response, error)) (*http.Response, error) {
	attempt := 0
	return RetryDo(ctx, rc, op, func() (*http.Response, error) {
		attempt++
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if IsRetryableStatus(resp.StatusCode) && attempt <= rc.MaxRetries {
			resp.Body.Close()
			return nil, &retryableStatus{Op: op, StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

// retryableStatus marks a response worth another attempt.
type retryableStatus struct {
	Op         string
	StatusCode int
}

func (e *retryableStatus) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRetryable reports whether err is a transient failure.
func IsRetryable(err error) bool {
	var st *retryableStatus
	if errors.As(err, &st) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	// net.Error includes OpError, so check after OpError
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// IsRetryableStatus is true for 429 and gateway-class 5xx responses.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
