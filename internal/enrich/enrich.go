// Package enrich annotates postings with venture funding data, cache
// first so repeat companies never trigger a second external lookup.
package enrich

import (
	"context"
	"log"
	"strings"

	"jobfinder/internal/domain"
	"jobfinder/internal/store"
)

// Lookup answers "who invested in this company". Implementations may be
// slow or flaky; enrichment is best effort and a failed lookup leaves
// the posting's VC info unknown rather than failing the run.
type Lookup interface {
	Investors(ctx context.Context, company string) ([]string, error)
}

type Enricher struct {
	db      *store.DB
	lookup  Lookup
	notable []string
}

func New(db *store.DB, lookup Lookup, notable []string) *Enricher {
	return &Enricher{db: db, lookup: lookup, notable: notable}
}

// Enrich fills in VC info for every posting in place and returns the
// slice. Lookups go through the cache in the store; fresh results are
// written back so the next run is free.
func (e *Enricher) Enrich(ctx context.Context, postings []domain.Posting) []domain.Posting {
	hits, misses := 0, 0
	for i := range postings {
		info, fromCache := e.infoFor(ctx, postings[i].Company)
		if fromCache {
			hits++
		} else {
			misses++
		}
		postings[i].VC = info
	}
	log.Printf("[enrich] vc: %d postings (%d cached, %d looked up)", len(postings), hits, misses)
	return postings
}

func (e *Enricher) infoFor(ctx context.Context, company string) (domain.VCInfo, bool) {
	if info, ok, err := e.db.CachedVC(ctx, company); err != nil {
		log.Printf("[enrich] cache read for %q: %v", company, err)
	} else if ok {
		return info, true
	}

	if e.lookup == nil {
		return domain.VCInfo{}, false
	}

	investors, err := e.lookup.Investors(ctx, company)
	if err != nil {
		log.Printf("[enrich] lookup for %q: %v", company, err)
		return domain.VCInfo{}, false
	}

	backed := NotableMatch(investors, e.notable) != ""
	info := domain.VCInfo{Backed: &backed, Investors: investors}

	if err := e.db.CacheVC(ctx, company, info); err != nil {
		log.Printf("[enrich] cache write for %q: %v", company, err)
	}
	return info, false
}

// NotableMatch returns the first notable firm found among investors, or
// "" when none match. Matching is case insensitive and tolerates
// suffixes like "Sequoia Capital" vs "Sequoia".
func NotableMatch(investors, notable []string) string {
	for _, inv := range investors {
		li := strings.ToLower(strings.TrimSpace(inv))
		if li == "" {
			continue
		}
		for _, n := range notable {
			ln := strings.ToLower(strings.TrimSpace(n))
			if ln == "" {
				continue
			}
			if strings.Contains(li, ln) || strings.Contains(ln, li) {
				return n
			}
		}
	}
	return ""
}
