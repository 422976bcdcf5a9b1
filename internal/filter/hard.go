// Package filter holds the pure pass/fail and triage predicates applied
// before any paid scoring happens.
package filter

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
)

// RejectStats counts rejections per predicate for one run.
type RejectStats struct {
	Location   int
	Experience int
	Salary     int
	Industry   int
}

// ApplyHard keeps only postings passing every hard predicate. A posting
// missing an optional field (salary, experience) passes that
// predicate; unknown is never grounds for rejection.
func ApplyHard(cfg config.Config, postings []domain.Posting) ([]domain.Posting, RejectStats) {
	var out []domain.Posting
	var stats RejectStats

	for _, p := range postings {
		switch {
		case !passesLocation(cfg, p):
			stats.Location++
		case !passesExperience(cfg, p):
			stats.Experience++
		case !passesSalary(cfg, p):
			stats.Salary++
		case !passesIndustry(cfg, p):
			stats.Industry++
		default:
			out = append(out, p)
		}
	}

	log.Printf("[filter] hard: %d -> %d (location -%d, experience -%d, salary -%d, industry -%d)",
		len(postings), len(out), stats.Location, stats.Experience, stats.Salary, stats.Industry)
	return out, stats
}

func passesLocation(cfg config.Config, p domain.Posting) bool {
	loc := strings.ToLower(p.Location)
	title := strings.ToLower(p.Title)
	desc := strings.ToLower(p.Description)

	// any mention of remote counts as remote
	isRemote := strings.Contains(loc, "remote") || strings.Contains(title, "remote") || strings.Contains(desc, "remote")
	if isRemote {
		return cfg.Filters.RemoteOK
	}

	aliases := cfg.AllLocationAliases()
	if len(aliases) == 0 {
		return true
	}

	text := loc + " " + desc
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" && strings.Contains(text, a) {
			return true
		}
	}
	return false
}

// Patterns like "5+ years", "5-7 years", "minimum 5 years".
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s*(?:of\s+)?(?:experience|exp)`),
	regexp.MustCompile(`(\d+)\s*-\s*\d+\s*(?:years?|yrs?)\s*(?:of\s+)?(?:experience|exp)`),
	regexp.MustCompile(`(?:minimum|min|at least)\s*(\d+)\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s*(?:in|of|working)`),
	regexp.MustCompile(`(?:requires?|requiring)\s*(\d+)\+?\s*(?:years?|yrs?)`),
}

func passesExperience(cfg config.Config, p domain.Posting) bool {
	if cfg.Filters.ExperienceMaxYears <= 0 {
		return true
	}
	text := strings.ToLower(p.Experience + " " + p.Description)
	years := extractYears(text)
	if years < 0 {
		// no requirement stated
		return true
	}
	return years <= cfg.Filters.ExperienceMaxYears
}

// extractYears returns the lowest years-of-experience requirement found
// in text, or -1 when none is stated.
func extractYears(text string) int {
	min := -1
	for _, re := range experiencePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			years, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			// ignore numbers that clearly aren't years (salary figures)
			if years < 0 || years > 20 {
				continue
			}
			if min < 0 || years < min {
				min = years
			}
		}
	}
	return min
}

func passesSalary(cfg config.Config, p domain.Posting) bool {
	if p.SalaryMin == nil && p.SalaryMax == nil {
		return true
	}
	// a $60K-$80K range passes a $70K floor because the role COULD pay $80K
	if p.SalaryMax != nil {
		return *p.SalaryMax >= cfg.Filters.SalaryMin
	}
	return *p.SalaryMin >= cfg.Filters.SalaryMin
}

// Tiered industry keywords: the weaker the signal source, the stronger
// the keyword must be, to avoid false positives on words like "patient".
var (
	industryTitleKeywords = []string{
		"healthcare", "healthtech", "biotech", "biotechnology",
		"pharmaceutical", "pharma", "clinical", "hospital", "nursing",
	}
	industryCompanyKeywords = []string{
		"hospital", "pharmaceutical", "pharma", "biotech", "biotechnology",
		"clinic ", "clinical ",
	}
	industryDescriptionPhrases = []string{
		"healthcare industry", "healthtech", "health tech", "biotech company",
		"biotechnology", "pharmaceutical", "hospital system", "clinical trials",
		"clinical research", "hipaa", "patient care", "patient outcomes",
	}
)

func passesIndustry(cfg config.Config, p domain.Posting) bool {
	industry := strings.ToLower(p.Industry)
	title := strings.ToLower(p.Title)
	company := strings.ToLower(p.Company)
	desc := strings.ToLower(p.Description)

	if len(cfg.Filters.ExcludedIndustries) == 0 {
		return true
	}
	healthExcluded := false
	for _, kw := range cfg.Filters.ExcludedIndustries {
		kw = strings.ToLower(kw)
		if strings.Contains(industry, kw) {
			return false
		}
		if strings.Contains(kw, "health") || strings.Contains(kw, "bio") || strings.Contains(kw, "pharma") {
			healthExcluded = true
		}
	}
	if !healthExcluded {
		return true
	}
	for _, kw := range industryTitleKeywords {
		if strings.Contains(title, kw) {
			return false
		}
	}
	for _, kw := range industryCompanyKeywords {
		if strings.Contains(company, kw) {
			return false
		}
	}
	for _, phrase := range industryDescriptionPhrases {
		if strings.Contains(desc, phrase) {
			return false
		}
	}
	return true
}
