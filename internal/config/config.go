package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Location struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type SourceBoard struct {
	Enabled bool      `yaml:"enabled"`
	Boards  []Company `yaml:"boards"`
}

type Company struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type EmailSource struct {
	Enabled          bool     `yaml:"enabled"`
	IMAPHost         string   `yaml:"imap_host"`
	IMAPPort         int      `yaml:"imap_port"`
	Username         string   `yaml:"username"`
	Mailbox          string   `yaml:"mailbox"`
	SearchSubjectAny []string `yaml:"search_subject_any"`
}

type App struct {
	DataDir    string `yaml:"data_dir"`
	ResumeFile string `yaml:"resume_file"`
}

type Sources struct {
	Greenhouse SourceBoard `yaml:"greenhouse"`
	Lever      SourceBoard `yaml:"lever"`
}

type Filters struct {
	RemoteOK           bool       `yaml:"remote_ok"`
	Locations          []Location `yaml:"locations"`
	SalaryMin          float64    `yaml:"salary_min"`
	ExperienceMaxYears int        `yaml:"experience_max_years"`
	ExcludedIndustries []string   `yaml:"excluded_industries"`
}

type Signals struct {
	TitleKeywords    []string `yaml:"title_keywords"`
	Tools            []string `yaml:"tools"`
	Themes           []string `yaml:"themes"`
	Responsibilities []string `yaml:"responsibilities"`
	MinCategories    int      `yaml:"min_categories"`
}

type NotableVCs struct {
	Tier1 []string `yaml:"tier_1"`
	Tier2 []string `yaml:"tier_2"`
}

type Scoring struct {
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
	VCBonus   int    `yaml:"vc_bonus"`
	TopN      int    `yaml:"top_n"`
}

type Freshness struct {
	FreshDays int `yaml:"fresh_days"`
	AgingDays int `yaml:"aging_days"`
	StaleDays int `yaml:"stale_days"`
}

type Dedup struct {
	RepostGapDays int `yaml:"repost_gap_days"`
}

type Health struct {
	MaxChecksPerRun int     `yaml:"max_checks_per_run"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	RateLimit       float64 `yaml:"rate_limit"`
}

type Sheet struct {
	Enabled       bool   `yaml:"enabled"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Credentials   string `yaml:"credentials_file"`
}

type Digest struct {
	Enabled    bool   `yaml:"enabled"`
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
}

type Config struct {
	App        App         `yaml:"app"`
	Sources    Sources     `yaml:"sources"`
	Email      EmailSource `yaml:"email"`
	Filters    Filters     `yaml:"filters"`
	Signals    Signals     `yaml:"signals"`
	NotableVCs NotableVCs  `yaml:"notable_vcs"`
	Scoring    Scoring     `yaml:"scoring"`
	Freshness  Freshness   `yaml:"freshness"`
	Dedup      Dedup       `yaml:"dedup"`
	Health     Health      `yaml:"health"`
	Sheet      Sheet       `yaml:"sheet"`
	Digest     Digest      `yaml:"digest"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// AllLocationAliases returns every configured location alias.
func (c Config) AllLocationAliases() []string {
	var out []string
	for _, loc := range c.Filters.Locations {
		out = append(out, loc.Aliases...)
	}
	return out
}

// AllNotableVCs returns both tiers merged.
func (c Config) AllNotableVCs() []string {
	return append(append([]string{}, c.NotableVCs.Tier1...), c.NotableVCs.Tier2...)
}
