package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.Save(ctx, Record{
		URL:          "https://youtu.be/abc",
		ThumbnailURL: "http://img/t.jpg",
		Claims:       []string{"Claim 1", "Claim 2"},
		CreatedAt:    at,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Record{
		ID:           id,
		URL:          "https://youtu.be/abc",
		ThumbnailURL: "http://img/t.jpg",
		Claims:       []string{"Claim 1", "Claim 2"},
		CreatedAt:    at,
	}, got)
}

func TestSQLiteNilClaimsStoredEmpty(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	id, err := s.Save(ctx, Record{URL: "u", Error: "Failed to load data. Please try again."})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Claims)
	assert.Equal(t, "Failed to load data. Please try again.", got.Error)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for _, u := range []string{"a", "b", "c"} {
		_, err := s.Save(ctx, Record{URL: u})
		require.NoError(t, err)
	}

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].URL)
	assert.Equal(t, "b", got[1].URL)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteGetMissing(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenPicksSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(context.Background(), "", path)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStore{}, s)
}

func TestNormLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, normLimit(0))
	assert.Equal(t, defaultListLimit, normLimit(-3))
	assert.Equal(t, 7, normLimit(7))
	assert.Equal(t, maxListLimit, normLimit(1000))
}
