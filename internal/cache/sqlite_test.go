package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBars() []model.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []model.OHLCV{
		{Time: start, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1000},
		{Time: start.AddDate(0, 0, 1), Open: 10.5, High: 12, Low: 10, Close: 11.5, Volume: 1500},
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	key := Key("2330.TW", "3mo", "1d")
	assert.Equal(t, "2330.TW_3mo_1d", key)

	_, ok, err := s.Get(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, key, sampleBars()))
	got, ok, err := s.Get(ctx, key, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleBars(), got)
}

func TestSQLiteStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	key := Key("AAPL", "6mo", "1d")

	require.NoError(t, s.Put(ctx, key, sampleBars()))
	require.NoError(t, s.Put(ctx, key, sampleBars()[:1]))

	got, ok, err := s.Get(ctx, key, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 1)
}

func TestSQLiteStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	key := Key("MSFT", "3mo", "1d")
	require.NoError(t, s.Put(ctx, key, sampleBars()))

	now = now.Add(20 * time.Minute)
	_, ok, err := s.Get(ctx, key, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "entry older than max age is a miss")

	_, ok, err = s.Get(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Purge(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err = s.Get(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoopStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NewNoopStore()
	require.NoError(t, s.Put(ctx, "k", sampleBars()))
	_, ok, err := s.Get(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_PragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := s.db.Conn(ctx)
		require.NoError(t, err)
		defer c.Close()
		conns[i] = c
	}

	for i, c := range conns {
		var timeout int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, busyTimeoutMillis, timeout, "conn %d", i)

		var mode string
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode, "conn %d", i)
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("file:a.db?mode=rwc"))
}
