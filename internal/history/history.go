// Package history persists settled fact-check submissions.
//
// Two stores implement Store: SQLite (default, a single local file) and
// PostgreSQL (selected when DATABASE_URL is set). Both keep the submitted
// URL, the thumbnail and claims that were shown, and the user-visible error.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history: record not found")

// Record is one settled submission.
type Record struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Claims       []string  `json:"claims"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Recorder receives settled submissions.
type Recorder interface {
	Save(ctx context.Context, r Record) (int64, error)
}

// Store is a submission history backend.
type Store interface {
	Save(ctx context.Context, r Record) (int64, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	Close() error
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// normLimit clamps a requested list size.
func normLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

// DefaultSQLitePath is ~/.go_factcheck/history.db.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".go_factcheck", "history.db")
}

// Open returns a Postgres store when databaseURL is set, otherwise a SQLite
// store at sqlitePath.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		s, err := OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		return s, nil
	}
	if sqlitePath == "" {
		sqlitePath = DefaultSQLitePath()
	}
	s, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	slog.Info("history: sqlite ready", slog.String("path", sqlitePath))
	return s, nil
}
