// Package freshness sorts postings into age buckets so stale listings
// are obvious in the sheet and digest.
package freshness

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
)

// Annotate stamps every posting with a freshness bucket. Age comes from
// the posted date when the source provided one, otherwise from when we
// first saw the posting, which overestimates freshness but never fakes
// a posted date.
func Annotate(cfg config.Freshness, postings []domain.Posting, now time.Time) []domain.Posting {
	counts := map[string]int{}
	for i := range postings {
		b := bucket(cfg, postings[i], now)
		postings[i].Freshness = b
		counts[b]++
	}
	log.Printf("[freshness] fresh=%d aging=%d stale=%d expired_risk=%d unknown=%d",
		counts[domain.FreshnessFresh], counts[domain.FreshnessAging],
		counts[domain.FreshnessStale], counts[domain.FreshnessExpiredRisk],
		counts[domain.FreshnessUnknown])
	return postings
}

func bucket(cfg config.Freshness, p domain.Posting, now time.Time) string {
	ref := p.PostedAt
	if ref == nil {
		if p.FirstSeen.IsZero() {
			return domain.FreshnessUnknown
		}
		ref = &p.FirstSeen
	}

	days := int(now.Sub(*ref).Hours() / 24)
	switch {
	case days < 0:
		return domain.FreshnessUnknown
	case days <= cfg.FreshDays:
		return domain.FreshnessFresh
	case days <= cfg.AgingDays:
		return domain.FreshnessAging
	case days <= cfg.StaleDays:
		return domain.FreshnessStale
	default:
		return domain.FreshnessExpiredRisk
	}
}

var (
	reDaysAgo   = regexp.MustCompile(`(\d+)\s*(?:days?|d)\s*ago`)
	reWeeksAgo  = regexp.MustCompile(`(\d+)\s*(?:weeks?|w)\s*ago`)
	reMonthsAgo = regexp.MustCompile(`(\d+)\s*months?\s*ago`)
	reHoursAgo  = regexp.MustCompile(`(\d+)\s*(?:hours?|h)\s*ago`)
)

var absoluteLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
	"01/02/2006",
}

// ParsePostedAt turns a source's posted-date text into a time, handling
// both absolute dates and relative phrases like "3 days ago". Returns
// nil when the text is unparseable.
func ParsePostedAt(text string, now time.Time) *time.Time {
	orig := strings.TrimSpace(text)
	text = strings.ToLower(orig)
	if text == "" {
		return nil
	}

	switch text {
	case "today", "just posted", "just now":
		t := now
		return &t
	case "yesterday":
		t := now.AddDate(0, 0, -1)
		return &t
	}

	if m := reHoursAgo.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := now.Add(-time.Duration(n) * time.Hour)
		return &t
	}
	if m := reDaysAgo.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := now.AddDate(0, 0, -n)
		return &t
	}
	if m := reWeeksAgo.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := now.AddDate(0, 0, -7*n)
		return &t
	}
	if m := reMonthsAgo.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := now.AddDate(0, -n, 0)
		return &t
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, orig); err == nil {
			return &t
		}
	}
	return nil
}
