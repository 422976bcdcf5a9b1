// Package pipeline runs one end-to-end pass: scrape, dedupe, filter,
// enrich, score, annotate, deliver, persist.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/dedup"
	"jobfinder/internal/domain"
	"jobfinder/internal/enrich"
	"jobfinder/internal/filter"
	"jobfinder/internal/freshness"
	"jobfinder/internal/health"
	"jobfinder/internal/notify"
	"jobfinder/internal/scrape"
	"jobfinder/internal/scrape/types"
	"jobfinder/internal/score"
	"jobfinder/internal/store"
)

// SheetSyncer delivers the run's postings to the spreadsheet.
type SheetSyncer interface {
	Sync(ctx context.Context, postings []domain.Posting) error
}

// DigestSender delivers the run's email summary.
type DigestSender interface {
	SendDigest(postings []domain.Posting, summary notify.RunSummary) error
}

// Pipeline wires the stages together. Sheets, Mailer, Scorer and
// Checker may be nil; their stages are skipped.
type Pipeline struct {
	Cfg      config.Config
	DB       *store.DB
	Fetchers []types.Fetcher
	Enricher *enrich.Enricher
	Scorer   *score.Scorer
	Checker  *health.Checker
	Sheets   SheetSyncer
	Mailer   DigestSender
	Resume   string
	Now      func() time.Time
}

// Run executes one full pass. It returns an error only for run-level
// failures (every source down, persistence broken); individual source
// or delivery failures are recorded in the run log and digest instead.
func (pl *Pipeline) Run(ctx context.Context) error {
	now := time.Now
	if pl.Now != nil {
		now = pl.Now
	}
	started := now()
	log.Printf("[pipeline] run started")

	result, err := scrape.FetchAll(ctx, pl.Fetchers)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	rec := store.RunRecord{RunAt: started, Scraped: len(result.Postings), Errors: result.Errors}

	batch := dedup.DeduplicateBatch(result.Postings)

	seen, err := pl.DB.SeenRecords(ctx)
	if err != nil {
		return fmt.Errorf("load seen records: %w", err)
	}

	repostGap := time.Duration(pl.Cfg.Dedup.RepostGapDays) * 24 * time.Hour
	fresh, rescraped := dedup.ClassifyAgainstSeen(batch, seen, repostGap, started)
	rec.NewPostings = len(fresh)

	// listings still up but dropped as re-scrapes stay alive in the store
	for _, fp := range rescraped {
		if err := pl.DB.TouchLastSeen(ctx, fp, started); err != nil {
			log.Printf("[pipeline] touch last_seen: %v", err)
		}
	}

	for i := range fresh {
		fresh[i].FirstSeen = started
		fresh[i].LastSeen = started
	}

	// every classified posting gets recorded, even ones the filters
	// reject, so the next run drops them before any expensive stage
	for _, p := range fresh {
		first := started
		if r, ok := seen[p.Fingerprint]; ok {
			first = r.FirstSeen
		}
		err := pl.DB.UpsertSeen(ctx, domain.SeenRecord{
			Fingerprint: p.Fingerprint,
			URL:         p.URL,
			FirstSeen:   first,
			LastSeen:    started,
			RepostCount: p.RepostCount,
			Status:      domain.StatusSeen,
		})
		if err != nil {
			return fmt.Errorf("persist seen record: %w", err)
		}
	}

	passed, _ := filter.ApplyHard(pl.Cfg, fresh)
	passed = filter.PreFilter(pl.Cfg, passed)
	rec.PassedFilter = len(passed)

	if pl.Enricher != nil {
		passed = pl.Enricher.Enrich(ctx, passed)
	}

	if pl.Scorer != nil {
		passed = pl.Scorer.ScoreAll(ctx, pl.Resume, passed)
		for _, p := range passed {
			if p.Score != nil {
				rec.Scored++
			}
		}
	}

	passed = freshness.Annotate(pl.Cfg.Freshness, passed, started)

	if pl.Checker != nil {
		passed = pl.Checker.Annotate(ctx, passed)
		for _, p := range passed {
			if p.Health == domain.HealthExpired {
				rec.Expired++
				if err := pl.DB.MarkExpiredByURL(ctx, p.URL); err != nil {
					log.Printf("[pipeline] mark expired: %v", err)
				}
			}
		}
	}

	if pl.Sheets != nil {
		if err := pl.Sheets.Sync(ctx, passed); err != nil {
			log.Printf("[pipeline] sheet sync: %v", err)
			rec.Errors = append(rec.Errors, fmt.Sprintf("sheet sync: %v", err))
		}
	}

	finished := now()
	rec.Duration = finished.Sub(started)

	if pl.Mailer != nil {
		summary := notify.RunSummary{
			Scraped:    rec.Scraped,
			New:        rec.NewPostings,
			PassedAll:  rec.PassedFilter,
			Scored:     rec.Scored,
			Errors:     rec.Errors,
			StartedAt:  started,
			FinishedAt: finished,
		}
		if err := pl.Mailer.SendDigest(passed, summary); err != nil {
			log.Printf("[pipeline] digest: %v", err)
			rec.Errors = append(rec.Errors, fmt.Sprintf("digest: %v", err))
		}
	}

	if err := pl.DB.LogRun(ctx, rec); err != nil {
		log.Printf("[pipeline] run log: %v", err)
	}

	// source cleanup (marking alert emails read) only after everything
	// this run scraped has been persisted
	for _, fin := range result.Finalizes {
		if err := fin(ctx); err != nil {
			log.Printf("[pipeline] finalize: %v", err)
		}
	}

	log.Printf("[pipeline] run finished: scraped=%d new=%d passed=%d scored=%d expired=%d errors=%d in %s",
		rec.Scraped, rec.NewPostings, rec.PassedFilter, rec.Scored, rec.Expired, len(rec.Errors),
		rec.Duration.Round(time.Millisecond))
	return nil
}
