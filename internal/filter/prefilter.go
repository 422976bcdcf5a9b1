package filter

import (
	"log"
	"strings"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
)

// PreFilter is the cheap keyword gate in front of the scorer. A posting
// survives when it matches at least Signals.MinCategories of the three
// keyword categories: title keywords, tools, themes/responsibilities.
func PreFilter(cfg config.Config, postings []domain.Posting) []domain.Posting {
	need := cfg.Signals.MinCategories
	if need <= 0 {
		need = 1
	}

	var out []domain.Posting
	for _, p := range postings {
		if categoryHits(cfg, p) >= need {
			out = append(out, p)
		}
	}
	log.Printf("[filter] prefilter: %d -> %d (min categories %d)", len(postings), len(out), need)
	return out
}

func categoryHits(cfg config.Config, p domain.Posting) int {
	title := strings.ToLower(p.Title)
	body := title + " " + strings.ToLower(p.Description)

	hits := 0
	if containsAny(title, cfg.Signals.TitleKeywords) {
		hits++
	}
	if containsAny(body, cfg.Signals.Tools) {
		hits++
	}
	if containsAny(body, cfg.Signals.Themes) || containsAny(body, cfg.Signals.Responsibilities) {
		hits++
	}
	return hits
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
