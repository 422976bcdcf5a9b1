package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobfinder/internal/domain"
)

// CachedVC returns the cached investor data for a company, or ok=false
// on a cache miss.
func (d *DB) CachedVC(ctx context.Context, company string) (domain.VCInfo, bool, error) {
	var backed sql.NullInt64
	var investorsJSON string

	err := d.Pool.QueryRowContext(ctx, `
SELECT backed, investors FROM vc_cache WHERE company = ?;`, company).Scan(&backed, &investorsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VCInfo{}, false, nil
	}
	if err != nil {
		return domain.VCInfo{}, false, fmt.Errorf("vc cache lookup: %w", err)
	}

	var info domain.VCInfo
	if backed.Valid {
		b := backed.Int64 != 0
		info.Backed = &b
	}
	_ = json.Unmarshal([]byte(investorsJSON), &info.Investors)
	return info, true, nil
}

// CacheVC stores an investor lookup result so future runs skip the
// external call.
func (d *DB) CacheVC(ctx context.Context, company string, info domain.VCInfo) error {
	investorsJSON, _ := json.Marshal(info.Investors)

	var backed any
	if info.Backed != nil {
		if *info.Backed {
			backed = 1
		} else {
			backed = 0
		}
	}

	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO vc_cache (company, backed, investors, checked_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(company) DO UPDATE SET
  backed = excluded.backed,
  investors = excluded.investors,
  checked_at = excluded.checked_at;`,
		company, backed, string(investorsJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("vc cache write: %w", err)
	}
	return nil
}
