package dedup

import (
	"strings"
	"testing"
	"time"

	"jobfinder/internal/domain"
)

func fptr(f float64) *float64 { return &f }

func TestFingerprintNormalization(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Posting
		same bool
	}{
		{
			"company suffix stripped",
			domain.Posting{Company: "Acme Inc.", Title: "Engineer", Location: "NYC"},
			domain.Posting{Company: "Acme", Title: "Engineer", Location: "NYC"},
			true,
		},
		{
			"case and punctuation",
			domain.Posting{Company: "ACME", Title: "Sr. Engineer", Location: "New York, NY"},
			domain.Posting{Company: "acme", Title: "Sr Engineer", Location: "new york ny"},
			true,
		},
		{
			"ampersand",
			domain.Posting{Company: "Acme", Title: "Data & Analytics Lead", Location: "NYC"},
			domain.Posting{Company: "Acme", Title: "Data and Analytics Lead", Location: "NYC"},
			true,
		},
		{
			"different title",
			domain.Posting{Company: "Acme", Title: "Engineer", Location: "NYC"},
			domain.Posting{Company: "Acme", Title: "Designer", Location: "NYC"},
			false,
		},
		{
			"different location",
			domain.Posting{Company: "Acme", Title: "Engineer", Location: "NYC"},
			domain.Posting{Company: "Acme", Title: "Engineer", Location: "Austin"},
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fingerprint(tc.a) == Fingerprint(tc.b); got != tc.same {
				t.Errorf("fingerprints equal = %v, want %v (%q vs %q)",
					got, tc.same, Fingerprint(tc.a), Fingerprint(tc.b))
			}
		})
	}
}

func TestDeduplicateBatchRichestWins(t *testing.T) {
	thin := domain.Posting{Company: "Acme", Title: "Engineer", Location: "NYC", URL: "https://a.example/1", Source: "email"}
	rich := thin
	rich.Source = "greenhouse"
	rich.URL = "https://boards.greenhouse.io/acme/jobs/1"
	rich.Description = strings.Repeat("Build and operate data pipelines. ", 6)
	rich.SalaryMin = fptr(120000)
	rich.SalaryMax = fptr(160000)

	out := DeduplicateBatch([]domain.Posting{thin, rich})
	if len(out) != 1 {
		t.Fatalf("want 1 posting, got %d", len(out))
	}
	if out[0].Source != "greenhouse" {
		t.Errorf("representative = %q, want the richer greenhouse posting", out[0].Source)
	}
	if out[0].Fingerprint == "" {
		t.Error("fingerprint not stamped")
	}
}

func TestDeduplicateBatchIdempotent(t *testing.T) {
	in := []domain.Posting{
		{Company: "Acme", Title: "Engineer", Location: "NYC", URL: "https://a.example/1"},
		{Company: "Beta", Title: "Analyst", Location: "Remote", URL: "https://b.example/2"},
	}
	once := DeduplicateBatch(in)
	twice := DeduplicateBatch(once)
	if len(once) != 2 || len(twice) != 2 {
		t.Fatalf("idempotence broken: %d then %d", len(once), len(twice))
	}
}

func TestDeduplicateBatchDropsMalformed(t *testing.T) {
	out := DeduplicateBatch([]domain.Posting{
		{Company: "Acme", Location: "NYC", URL: "https://a.example/1"}, // no title
		{Title: "Engineer", Location: "NYC", URL: "https://a.example/2"}, // no company
		{Company: "Acme", Title: "Engineer", Location: "NYC"},            // no url
		{Company: "Acme", Title: "Engineer", Location: "NYC", URL: "https://a.example/3"},
	})
	if len(out) != 1 {
		t.Errorf("want only the complete posting, got %d", len(out))
	}
}

func TestClassifyAgainstSeen(t *testing.T) {
	gap := 14 * 24 * time.Hour
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	newP := domain.Posting{Fingerprint: "new|role|nyc"}
	activeP := domain.Posting{Fingerprint: "active|role|nyc"}
	goneP := domain.Posting{Fingerprint: "gone|role|nyc"}
	expiredP := domain.Posting{Fingerprint: "expired|role|nyc"}
	// reworded title, so the fingerprint misses but the URL matches
	rewordedP := domain.Posting{Fingerprint: "active|role senior|nyc", URL: "https://x.example/active"}

	seen := map[string]domain.SeenRecord{
		"active|role|nyc":  {Fingerprint: "active|role|nyc", URL: "https://x.example/active", LastSeen: now.AddDate(0, 0, -2), Status: domain.StatusSeen},
		"gone|role|nyc":    {Fingerprint: "gone|role|nyc", LastSeen: now.AddDate(0, 0, -30), Status: domain.StatusSeen, RepostCount: 1},
		"expired|role|nyc": {Fingerprint: "expired|role|nyc", LastSeen: now.AddDate(0, 0, -1), Status: domain.StatusExpired},
	}

	out, rescraped := ClassifyAgainstSeen([]domain.Posting{newP, activeP, goneP, expiredP, rewordedP}, seen, gap, now)

	if len(out) != 3 {
		t.Fatalf("want 3 kept (new + 2 reposts), got %d", len(out))
	}
	if len(rescraped) != 2 {
		t.Fatalf("want 2 re-scrapes (fingerprint + url match), got %v", rescraped)
	}

	byFP := map[string]domain.Posting{}
	for _, p := range out {
		byFP[p.Fingerprint] = p
	}

	if p := byFP["new|role|nyc"]; p.IsRepost || p.Status != domain.StatusNew {
		t.Errorf("unseen posting misclassified: %+v", p)
	}
	if _, ok := byFP["active|role|nyc"]; ok {
		t.Error("active listing re-scrape should be filtered out")
	}
	if p := byFP["gone|role|nyc"]; !p.IsRepost || p.RepostCount != 2 {
		t.Errorf("gap repost: IsRepost=%v count=%d, want true/2", p.IsRepost, p.RepostCount)
	}
	if p := byFP["expired|role|nyc"]; !p.IsRepost || p.RepostCount != 1 {
		t.Errorf("expired repost inside gap: IsRepost=%v count=%d, want true/1", p.IsRepost, p.RepostCount)
	}
}
