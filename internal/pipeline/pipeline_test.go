package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
	"jobfinder/internal/notify"
	"jobfinder/internal/scrape/types"
	"jobfinder/internal/store"
)

type stubFetcher struct {
	name     string
	postings []domain.Posting
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(_ context.Context) (types.ScrapeResult, error) {
	out := make([]domain.Posting, len(s.postings))
	copy(out, s.postings)
	return types.ScrapeResult{Source: s.name, Postings: out}, nil
}

type captureSheet struct {
	synced [][]domain.Posting
}

func (c *captureSheet) Sync(_ context.Context, postings []domain.Posting) error {
	c.synced = append(c.synced, postings)
	return nil
}

type captureMailer struct {
	summaries []notify.RunSummary
	postings  [][]domain.Posting
}

func (c *captureMailer) SendDigest(postings []domain.Posting, summary notify.RunSummary) error {
	c.postings = append(c.postings, postings)
	c.summaries = append(c.summaries, summary)
	return nil
}

func pipelineConfig() config.Config {
	var cfg config.Config
	cfg.Filters.RemoteOK = true
	cfg.Signals.TitleKeywords = []string{"engineer"}
	cfg.Signals.MinCategories = 1
	cfg.Dedup.RepostGapDays = 14
	cfg.Freshness = config.Freshness{FreshDays: 7, AgingDays: 14, StaleDays: 30}
	return cfg
}

func newPipeline(t *testing.T, db *store.DB, fetcher types.Fetcher, now time.Time) (*Pipeline, *captureSheet, *captureMailer) {
	t.Helper()
	sheet := &captureSheet{}
	mailer := &captureMailer{}
	pl := &Pipeline{
		Cfg:      pipelineConfig(),
		DB:       db,
		Fetchers: []types.Fetcher{fetcher},
		Sheets:   sheet,
		Mailer:   mailer,
		Now:      func() time.Time { return now },
	}
	return pl, sheet, mailer
}

func openDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePosting() domain.Posting {
	return domain.Posting{
		Source:      "greenhouse",
		Title:       "Senior Engineer (Remote)",
		Company:     "Acme",
		Location:    "Remote",
		Description: "Build systems in Go.",
		URL:         "https://boards.greenhouse.io/acme/jobs/1",
	}
}

func TestRunRecordsAndDelivers(t *testing.T) {
	db := openDB(t)
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	pl, sheet, mailer := newPipeline(t, db, &stubFetcher{name: "greenhouse", postings: []domain.Posting{samplePosting()}}, now)

	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sheet.synced) != 1 || len(sheet.synced[0]) != 1 {
		t.Fatalf("expected 1 posting synced, got %v", sheet.synced)
	}
	got := sheet.synced[0][0]
	if got.Status != domain.StatusNew {
		t.Errorf("status = %q, want new", got.Status)
	}
	if got.Fingerprint == "" {
		t.Error("fingerprint not set")
	}
	if got.Freshness != domain.FreshnessFresh {
		t.Errorf("freshness = %q, want fresh (first seen this run)", got.Freshness)
	}
	if len(mailer.summaries) != 1 || mailer.summaries[0].New != 1 {
		t.Errorf("digest summary = %+v", mailer.summaries)
	}
}

func TestSecondRunFiltersRescrape(t *testing.T) {
	db := openDB(t)
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{name: "greenhouse", postings: []domain.Posting{samplePosting()}}

	pl, sheet, _ := newPipeline(t, db, fetcher, now)
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// next day, same listing still up
	pl.Now = func() time.Time { return now.AddDate(0, 0, 1) }
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(sheet.synced) != 2 {
		t.Fatalf("expected 2 syncs, got %d", len(sheet.synced))
	}
	if len(sheet.synced[1]) != 0 {
		t.Errorf("second run should sync nothing, got %d postings", len(sheet.synced[1]))
	}
}

func TestReappearanceAfterGapIsRepost(t *testing.T) {
	db := openDB(t)
	now := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{name: "greenhouse", postings: []domain.Posting{samplePosting()}}

	pl, sheet, _ := newPipeline(t, db, fetcher, now)
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// 20 days later, past the 14 day gap
	pl.Now = func() time.Time { return now.AddDate(0, 0, 20) }
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	last := sheet.synced[len(sheet.synced)-1]
	if len(last) != 1 {
		t.Fatalf("expected repost kept, got %d postings", len(last))
	}
	if !last[0].IsRepost || last[0].RepostCount != 1 {
		t.Errorf("repost flags = %v count=%d", last[0].IsRepost, last[0].RepostCount)
	}
}

func TestExpiredRecordReappearanceIsRepost(t *testing.T) {
	db := openDB(t)
	now := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	p := samplePosting()
	fetcher := &stubFetcher{name: "greenhouse", postings: []domain.Posting{p}}

	pl, sheet, _ := newPipeline(t, db, fetcher, now)
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// listing went down between runs
	if err := db.MarkExpiredByURL(context.Background(), p.URL); err != nil {
		t.Fatalf("mark expired: %v", err)
	}

	// reappears the next day from two sources at once, inside the gap
	emailCopy := p
	emailCopy.Source = "email"
	emailCopy.URL = "https://www.linkedin.com/jobs/view/123"
	fetcher.postings = []domain.Posting{p, emailCopy}

	pl.Now = func() time.Time { return now.AddDate(0, 0, 1) }
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	last := sheet.synced[len(sheet.synced)-1]
	if len(last) != 1 {
		t.Fatalf("two sources of one role should collapse to one posting, got %d", len(last))
	}
	if !last[0].IsRepost || last[0].RepostCount != 1 {
		t.Fatalf("expired record reappearance should be a repost, got %+v", last[0])
	}
}

func TestFilteredPostingStillRecorded(t *testing.T) {
	db := openDB(t)
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	p := samplePosting()
	p.Title = "Sales Director" // fails the keyword prefilter
	fetcher := &stubFetcher{name: "greenhouse", postings: []domain.Posting{p}}

	pl, sheet, _ := newPipeline(t, db, fetcher, now)
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sheet.synced[0]) != 0 {
		t.Fatalf("prefiltered posting should not reach the sheet")
	}
	seen, err := db.SeenRecords(context.Background())
	if err != nil {
		t.Fatalf("seen records: %v", err)
	}
	if len(seen) != 1 {
		t.Errorf("filtered posting should still be recorded as seen, got %d records", len(seen))
	}
}
