package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobfinder/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSeenRecordRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)

	rec := domain.SeenRecord{
		Fingerprint: "acme|engineer|nyc",
		URL:         "https://boards.greenhouse.io/acme/jobs/1",
		FirstSeen:   now,
		LastSeen:    now,
		Status:      domain.StatusSeen,
	}
	require.NoError(t, db.UpsertSeen(ctx, rec))

	seen, err := db.SeenRecords(ctx)
	require.NoError(t, err)
	got, ok := seen[rec.Fingerprint]
	require.True(t, ok, "record not found after upsert")
	require.True(t, got.FirstSeen.Equal(now))
	require.Equal(t, domain.StatusSeen, got.Status)
}

func TestUpsertKeepsFirstSeen(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	first := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	later := first.AddDate(0, 0, 20)

	rec := domain.SeenRecord{Fingerprint: "fp", URL: "https://x.example/1", FirstSeen: first, LastSeen: first, Status: domain.StatusSeen}
	require.NoError(t, db.UpsertSeen(ctx, rec))

	rec.FirstSeen = later
	rec.LastSeen = later
	rec.RepostCount = 1
	require.NoError(t, db.UpsertSeen(ctx, rec))

	seen, err := db.SeenRecords(ctx)
	require.NoError(t, err)
	got := seen["fp"]
	require.True(t, got.FirstSeen.Equal(first), "first_seen must keep the original value")
	require.True(t, got.LastSeen.Equal(later))
	require.Equal(t, 1, got.RepostCount)
}

func TestMarkExpiredByURL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rec := domain.SeenRecord{Fingerprint: "fp", URL: "https://x.example/1", FirstSeen: now, LastSeen: now, Status: domain.StatusSeen}
	require.NoError(t, db.UpsertSeen(ctx, rec))
	require.NoError(t, db.MarkExpiredByURL(ctx, rec.URL))

	seen, err := db.SeenRecords(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, seen["fp"].Status)
}

func TestURLExists(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ok, err := db.URLExists(ctx, "https://x.example/1")
	require.NoError(t, err)
	require.False(t, ok)

	now := time.Now()
	rec := domain.SeenRecord{Fingerprint: "fp", URL: "https://x.example/1", FirstSeen: now, LastSeen: now, Status: domain.StatusSeen}
	require.NoError(t, db.UpsertSeen(ctx, rec))

	ok, err = db.URLExists(ctx, "https://x.example/1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVCCache(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, ok, err := db.CachedVC(ctx, "Acme")
	require.NoError(t, err)
	require.False(t, ok, "expected a clean miss")

	backed := true
	info := domain.VCInfo{Backed: &backed, Investors: []string{"Sequoia", "Index Ventures"}}
	require.NoError(t, db.CacheVC(ctx, "Acme", info))

	got, ok, err := db.CachedVC(ctx, "Acme")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.Backed)
	require.True(t, *got.Backed)
	require.Equal(t, []string{"Sequoia", "Index Ventures"}, got.Investors)
}

func TestLogRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := RunRecord{
		RunAt: time.Now(), Scraped: 40, NewPostings: 12, PassedFilter: 6,
		Scored: 6, Expired: 1, Errors: []string{"lever: timeout"},
		Duration: 90 * time.Second,
	}
	require.NoError(t, db.LogRun(ctx, rec))

	var count int
	require.NoError(t, db.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_log;`).Scan(&count))
	require.Equal(t, 1, count)
}
