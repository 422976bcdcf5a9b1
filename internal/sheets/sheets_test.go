package sheets

import (
	"testing"
	"time"

	"jobfinder/internal/domain"
)

func iptr(n int) *int         { return &n }
func fptr(f float64) *float64 { return &f }

func TestRowFormatting(t *testing.T) {
	backed := true
	posted := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	p := domain.Posting{
		Source:      "greenhouse",
		Title:       "Staff Engineer",
		Company:     "Acme",
		Location:    "NYC",
		SalaryMin:   fptr(150000),
		SalaryMax:   fptr(190000),
		URL:         "https://boards.greenhouse.io/acme/jobs/1",
		PostedAt:    &posted,
		FirstSeen:   time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Status:      domain.StatusNew,
		Score:       iptr(8),
		IsRepost:    true,
		RepostCount: 2,
		Freshness:   domain.FreshnessFresh,
		Health:      domain.HealthReachable,
		VC:          domain.VCInfo{Backed: &backed, Investors: []string{"Sequoia", "Index Ventures"}},
	}

	r := row(p)
	if len(r) != len(header) {
		t.Fatalf("row has %d cells, header has %d", len(r), len(header))
	}
	if r[0] != 8 {
		t.Errorf("score cell = %v", r[0])
	}
	if r[6] != "$150000 - $190000" {
		t.Errorf("salary cell = %v", r[6])
	}
	if r[7] != "yes" {
		t.Errorf("backed cell = %v", r[7])
	}
	if r[8] != "Sequoia, Index Ventures" {
		t.Errorf("investors cell = %v", r[8])
	}
	if r[9] != "repost x2" {
		t.Errorf("repost cell = %v", r[9])
	}
	if r[12] != "2026-08-25" {
		t.Errorf("posted cell = %v", r[12])
	}
}

func TestRowOptionalFields(t *testing.T) {
	r := row(domain.Posting{Title: "Engineer", FirstSeen: time.Now()})
	if r[0] != "unscored" {
		t.Errorf("nil score cell = %v", r[0])
	}
	if r[6] != "" {
		t.Errorf("missing salary cell = %v", r[6])
	}
	if r[7] != "unknown" {
		t.Errorf("nil backed cell = %v", r[7])
	}
	if r[9] != "" {
		t.Errorf("non-repost cell = %v", r[9])
	}
	if r[12] != "" {
		t.Errorf("nil posted cell = %v", r[12])
	}
}

func TestSalaryCellVariants(t *testing.T) {
	tests := []struct {
		name string
		p    domain.Posting
		want string
	}{
		{"min only", domain.Posting{SalaryMin: fptr(120000)}, "$120000+"},
		{"max only", domain.Posting{SalaryMax: fptr(90000)}, "up to $90000"},
		{"none", domain.Posting{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := salaryCell(tc.p); got != tc.want {
				t.Errorf("salaryCell = %q, want %q", got, tc.want)
			}
		})
	}
}
