package freshness

import (
	"testing"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func freshCfg() config.Freshness {
	return config.Freshness{FreshDays: 7, AgingDays: 14, StaleDays: 30}
}

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func TestBucket(t *testing.T) {
	cfg := freshCfg()

	tests := []struct {
		name    string
		posting domain.Posting
		want    string
	}{
		{"posted 2 days ago", domain.Posting{PostedAt: daysAgo(2)}, domain.FreshnessFresh},
		{"boundary of fresh", domain.Posting{PostedAt: daysAgo(7)}, domain.FreshnessFresh},
		{"aging", domain.Posting{PostedAt: daysAgo(10)}, domain.FreshnessAging},
		{"stale", domain.Posting{PostedAt: daysAgo(21)}, domain.FreshnessStale},
		{"expired risk", domain.Posting{PostedAt: daysAgo(45)}, domain.FreshnessExpiredRisk},
		{"falls back to first seen", domain.Posting{FirstSeen: *daysAgo(10)}, domain.FreshnessAging},
		{"no dates at all", domain.Posting{}, domain.FreshnessUnknown},
		{"posted in the future", domain.Posting{PostedAt: daysAgo(-3)}, domain.FreshnessUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := bucket(cfg, tc.posting, now); got != tc.want {
				t.Errorf("bucket = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParsePostedAt(t *testing.T) {
	tests := []struct {
		text string
		want *time.Time
	}{
		{"today", &now},
		{"Yesterday", daysAgo(1)},
		{"3 days ago", daysAgo(3)},
		{"2 weeks ago", daysAgo(14)},
		{"1 month ago", daysAgo(31)}, // AddDate(0,-1,0) from Aug 30
		{"2026-08-25", timePtr(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))},
		{"Aug 25, 2026", timePtr(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))},
		{"gibberish", nil},
		{"", nil},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got := ParsePostedAt(tc.text, now)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("ParsePostedAt(%q) = %v, want %v", tc.text, got, tc.want)
			}
			if got != nil && !got.Equal(*tc.want) {
				t.Errorf("ParsePostedAt(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestParsePostedAtHours(t *testing.T) {
	got := ParsePostedAt("5 hours ago", now)
	if got == nil || !got.Equal(now.Add(-5*time.Hour)) {
		t.Errorf("5 hours ago = %v", got)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
