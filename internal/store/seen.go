package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobfinder/internal/domain"
)

// SeenRecords loads the full fingerprint -> record map. Read once at
// run start; the pipeline is the only writer.
func (d *DB) SeenRecords(ctx context.Context) (map[string]domain.SeenRecord, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT fingerprint, url, first_seen, last_seen, repost_count, status
FROM seen_records;`)
	if err != nil {
		return nil, fmt.Errorf("load seen records: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.SeenRecord{}
	for rows.Next() {
		var rec domain.SeenRecord
		var firstSeen, lastSeen string
		if err := rows.Scan(&rec.Fingerprint, &rec.URL, &firstSeen, &lastSeen, &rec.RepostCount, &rec.Status); err != nil {
			return nil, err
		}
		rec.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
		rec.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
		out[rec.Fingerprint] = rec
	}
	return out, rows.Err()
}

// UpsertSeen records a posting's fingerprint state. On conflict the
// last_seen, repost_count and status are refreshed; first_seen is kept.
func (d *DB) UpsertSeen(ctx context.Context, rec domain.SeenRecord) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO seen_records (fingerprint, url, first_seen, last_seen, repost_count, status)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET
  url = excluded.url,
  last_seen = excluded.last_seen,
  repost_count = excluded.repost_count,
  status = excluded.status;`,
		rec.Fingerprint, rec.URL,
		rec.FirstSeen.UTC().Format(time.RFC3339),
		rec.LastSeen.UTC().Format(time.RFC3339),
		rec.RepostCount, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert seen record: %w", err)
	}
	return nil
}

// TouchLastSeen refreshes last_seen for a still-active fingerprint.
func (d *DB) TouchLastSeen(ctx context.Context, fingerprint string, at time.Time) error {
	_, err := d.Pool.ExecContext(ctx, `
UPDATE seen_records SET last_seen = ?, status = ? WHERE fingerprint = ?;`,
		at.UTC().Format(time.RFC3339), domain.StatusSeen, fingerprint)
	return err
}

// MarkExpiredByURL flags the record behind a dead listing URL so its
// next reappearance counts as a repost.
func (d *DB) MarkExpiredByURL(ctx context.Context, url string) error {
	_, err := d.Pool.ExecContext(ctx, `
UPDATE seen_records SET status = ? WHERE url = ?;`, domain.StatusExpired, url)
	return err
}

// URLExists reports whether a listing URL is already recorded.
func (d *DB) URLExists(ctx context.Context, url string) (bool, error) {
	var one int
	err := d.Pool.QueryRowContext(ctx, `SELECT 1 FROM seen_records WHERE url = ? LIMIT 1;`, url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
