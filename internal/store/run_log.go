package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RunRecord is one pipeline run's summary counters.
type RunRecord struct {
	RunAt        time.Time
	Scraped      int
	NewPostings  int
	PassedFilter int
	Scored       int
	Expired      int
	Errors       []string
	Duration     time.Duration
}

func (d *DB) LogRun(ctx context.Context, rec RunRecord) error {
	errsJSON, _ := json.Marshal(rec.Errors)
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO run_log (run_at, scraped, new_postings, passed_filter, scored, expired, errors, duration_seconds)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.RunAt.UTC().Format(time.RFC3339),
		rec.Scraped, rec.NewPostings, rec.PassedFilter, rec.Scored, rec.Expired,
		string(errsJSON), rec.Duration.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}
	return nil
}
