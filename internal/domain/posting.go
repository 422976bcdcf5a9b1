package domain

import "time"

// Posting statuses as persisted in seen_records.
const (
	StatusNew     = "new"
	StatusSeen    = "seen"
	StatusExpired = "expired"
)

// Freshness buckets, assigned after scoring.
const (
	FreshnessFresh       = "fresh"
	FreshnessAging       = "aging"
	FreshnessStale       = "stale"
	FreshnessExpiredRisk = "expired_risk"
	FreshnessUnknown     = "unknown"
)

// Health statuses for a posting URL. Unknown is never conflated with
// expired: a timeout or transport error means we simply don't know.
const (
	HealthReachable = "reachable"
	HealthExpired   = "expired"
	HealthUnknown   = "unknown"
)

// VCInfo describes investor backing for a company. Backed is nil when
// no source could tell us either way.
type VCInfo struct {
	Backed    *bool
	Investors []string
}

// Posting is one job listing flowing through the pipeline. Scrapers
// fill the raw fields; later stages attach Fingerprint, repost state,
// score and annotations.
type Posting struct {
	Source      string
	Title       string
	Company     string
	Location    string
	Description string
	URL         string

	SalaryMin  *float64
	SalaryMax  *float64
	Experience string // raw requirement text, e.g. "2+ years"
	Industry   string

	PostedAt  *time.Time
	FirstSeen time.Time
	LastSeen  time.Time

	Fingerprint string
	Status      string
	IsRepost    bool
	RepostCount int

	Score   *int // 1-10, nil when scoring failed twice
	Scoring *ScoreDetail
	VC      VCInfo

	Freshness string
	Health    string
}

// ScoreDetail carries the scorer's explanation alongside the number.
type ScoreDetail struct {
	Reasoning      string
	MatchingSkills []string
	Missing        []string
	Recommendation string
}

// SeenRecord is the persisted per-fingerprint state across runs.
type SeenRecord struct {
	Fingerprint string
	URL         string
	FirstSeen   time.Time
	LastSeen    time.Time
	RepostCount int
	Status      string
}
