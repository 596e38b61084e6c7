package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"MarketPulse/internal/model"
)

const busyTimeoutMillis = 5000

// SQLiteStore keeps fetched bars in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Pragmas go in the DSN so every pooled connection gets them, not just the first.
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite bar cache opened")
	return s, nil
}

// sqliteDSN appends the busy timeout and WAL journal pragmas to dbPath.
// WAL lets concurrent sector workers read while one writes.
func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=busy_timeout(" + strconv.Itoa(busyTimeoutMillis) + ")&_pragma=journal_mode(WAL)"
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			cache_key  TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cached_bars (
			cache_key TEXT NOT NULL,
			ts        INTEGER NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    REAL,
			PRIMARY KEY (cache_key, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_fetched ON cache_entries(fetched_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Get returns the cached bars for key when they were stored within maxAge.
func (s *SQLiteStore) Get(ctx context.Context, key string, maxAge time.Duration) ([]model.OHLCV, bool, error) {
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM cache_entries WHERE cache_key = ?`, key).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	if s.now().Sub(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, open, high, low, close, volume FROM cached_bars WHERE cache_key = ? ORDER BY ts`, key)
	if err != nil {
		return nil, false, fmt.Errorf("load bars %s: %w", key, err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var ts int64
		var b model.OHLCV
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, false, fmt.Errorf("scan bar %s: %w", key, err)
		}
		b.Time = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate bars %s: %w", key, err)
	}
	if len(bars) == 0 {
		return nil, false, nil
	}
	return bars, true, nil
}

// Put replaces the cached bars for key.
func (s *SQLiteStore) Put(ctx context.Context, key string, bars []model.OHLCV) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_bars WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO cached_bars (cache_key, ts, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, key, b.Time.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("insert bar %s: %w", key, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cache_entries (cache_key, fetched_at) VALUES (?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET fetched_at = excluded.fetched_at`,
		key, s.now().Unix()); err != nil {
		return fmt.Errorf("stamp %s: %w", key, err)
	}
	return tx.Commit()
}

// Purge drops entries stored more than olderThan ago and returns how many were removed.
func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan).Unix()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cached_bars WHERE cache_key IN (SELECT cache_key FROM cache_entries WHERE fetched_at < ?)`,
		cutoff); err != nil {
		return 0, fmt.Errorf("purge bars: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
