package dedup

import (
	"log"
	"strings"
	"time"
	"unicode"

	"jobfinder/internal/domain"
)

// Company suffixes stripped during normalization so "Acme Inc." and
// "Acme" fingerprint the same.
var companySuffixes = map[string]bool{
	"inc": true, "llc": true, "corp": true, "corporation": true,
	"ltd": true, "limited": true, "co": true, "company": true,
	"technologies": true, "technology": true, "tech": true,
	"labs": true, "lab": true, "group": true, "holdings": true,
	"solutions": true, "services": true,
}

// Fingerprint builds the normalized identity key for a posting:
// lowercase, punctuation stripped, whitespace collapsed
// company|title|location. Two postings with the same fingerprint are
// the same logical role, possibly reposted.
func Fingerprint(p domain.Posting) string {
	return normalizeCompany(p.Company) + "|" + normalizeTitle(p.Title) + "|" + normalizeLocation(p.Location)
}

func normalizeCompany(name string) string {
	words := strings.Fields(stripPunct(strings.ToLower(name)))
	var kept []string
	for _, w := range words {
		if companySuffixes[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func normalizeTitle(title string) string {
	title = strings.ToLower(title)
	title = strings.ReplaceAll(title, "&", " and ")
	return strings.Join(strings.Fields(stripPunct(title)), " ")
}

func normalizeLocation(loc string) string {
	return strings.Join(strings.Fields(stripPunct(strings.ToLower(loc))), " ")
}

func stripPunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// DeduplicateBatch merges one run's scrape across sources. Postings
// missing required fields are dropped with a logged reason; within a
// fingerprint group the representative with the most complete data
// wins. Idempotent: running it on its own output is a no-op.
func DeduplicateBatch(postings []domain.Posting) []domain.Posting {
	byKey := map[string]int{}
	var unique []domain.Posting

	dropped := 0
	for _, p := range postings {
		if reason := malformedReason(p); reason != "" {
			log.Printf("[dedup] dropped malformed posting (%s) source=%s title=%q company=%q url=%q",
				reason, p.Source, p.Title, p.Company, p.URL)
			dropped++
			continue
		}

		p.Fingerprint = Fingerprint(p)

		idx, ok := byKey[p.Fingerprint]
		if !ok {
			byKey[p.Fingerprint] = len(unique)
			unique = append(unique, p)
			continue
		}
		if completeness(p) > completeness(unique[idx]) {
			unique[idx] = p
		}
	}

	if n := len(postings) - len(unique); n > 0 {
		log.Printf("[dedup] %d -> %d (%d duplicates, %d malformed)",
			len(postings), len(unique), n-dropped, dropped)
	}
	return unique
}

func malformedReason(p domain.Posting) string {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return "missing title"
	case strings.TrimSpace(p.Company) == "":
		return "missing company"
	case strings.TrimSpace(p.URL) == "":
		return "missing url"
	}
	return ""
}

// completeness scores how much usable data a posting carries; used to
// pick the group representative.
func completeness(p domain.Posting) int {
	score := 0
	if len(p.Description) > 100 {
		score += 3
	}
	if p.SalaryMin != nil {
		score += 2
	}
	if p.SalaryMax != nil {
		score += 2
	}
	if p.Experience != "" {
		score++
	}
	if p.PostedAt != nil {
		score++
	}
	if p.Industry != "" {
		score++
	}
	return score
}

// ClassifyAgainstSeen splits a deduplicated batch against the persisted
// seen records, matching by fingerprint or by listing URL. A record
// still active within repostGap is the same live listing re-scraped:
// filtered out, its fingerprint returned so the caller refreshes
// last_seen. A record expired, or absent longer than repostGap, counts
// as a repost: kept, flagged, repost count incremented. Unrecorded
// postings are new.
func ClassifyAgainstSeen(postings []domain.Posting, seen map[string]domain.SeenRecord, repostGap time.Duration, now time.Time) (kept []domain.Posting, rescraped []string) {
	byURL := make(map[string]domain.SeenRecord, len(seen))
	for _, rec := range seen {
		if rec.URL != "" {
			byURL[rec.URL] = rec
		}
	}

	reposts := 0
	for _, p := range postings {
		rec, ok := seen[p.Fingerprint]
		if !ok {
			// same listing can resurface under a reworded title
			rec, ok = byURL[p.URL]
		}
		if !ok {
			p.Status = domain.StatusNew
			kept = append(kept, p)
			continue
		}

		if rec.Status == domain.StatusExpired || now.Sub(rec.LastSeen) > repostGap {
			p.Status = domain.StatusNew
			p.IsRepost = true
			p.RepostCount = rec.RepostCount + 1
			reposts++
			log.Printf("[dedup] repost detected: %s - %s (count=%d)", p.Company, p.Title, p.RepostCount)
			kept = append(kept, p)
			continue
		}

		// Still-active listing re-scraped; not new, not a repost.
		rescraped = append(rescraped, rec.Fingerprint)
	}

	log.Printf("[dedup] seen filter: %d -> %d (%d re-scrapes, %d reposts kept)",
		len(postings), len(kept), len(rescraped), reposts)
	return kept, rescraped
}
