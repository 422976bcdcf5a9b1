package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims and dedupes keyword lists, fills defaults,
// and reports what would make the run useless or outright broken.
// Errors are fatal before any network call.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.ExcludedIndustries = trimList(out.Filters.ExcludedIndustries)
	out.Signals.TitleKeywords = trimList(out.Signals.TitleKeywords)
	out.Signals.Tools = trimList(out.Signals.Tools)
	out.Signals.Themes = trimList(out.Signals.Themes)
	out.Signals.Responsibilities = trimList(out.Signals.Responsibilities)
	out.NotableVCs.Tier1 = trimList(out.NotableVCs.Tier1)
	out.NotableVCs.Tier2 = trimList(out.NotableVCs.Tier2)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)
	for i := range out.Filters.Locations {
		out.Filters.Locations[i].Aliases = trimList(out.Filters.Locations[i].Aliases)
	}

	// ---- Defaults ----

	if out.Signals.MinCategories <= 0 {
		out.Signals.MinCategories = 1
	}
	if out.Scoring.BatchSize <= 0 {
		out.Scoring.BatchSize = 5
	}
	if out.Scoring.TopN <= 0 {
		out.Scoring.TopN = 5
	}
	if out.Dedup.RepostGapDays <= 0 {
		out.Dedup.RepostGapDays = 14
	}
	if out.Freshness.FreshDays <= 0 {
		out.Freshness.FreshDays = 7
	}
	if out.Freshness.AgingDays <= out.Freshness.FreshDays {
		out.Freshness.AgingDays = out.Freshness.FreshDays + 7
	}
	if out.Freshness.StaleDays <= out.Freshness.AgingDays {
		out.Freshness.StaleDays = out.Freshness.AgingDays + 7
	}
	if out.Health.MaxChecksPerRun <= 0 {
		out.Health.MaxChecksPerRun = 50
	}
	if out.Health.TimeoutSeconds <= 0 {
		out.Health.TimeoutSeconds = 15
	}
	if out.Health.RateLimit <= 0 {
		out.Health.RateLimit = 1.0
	}
	if out.Email.Mailbox == "" {
		out.Email.Mailbox = "INBOX"
	}

	// ---- Validation rules ----

	if !out.Email.Enabled && !out.Sources.Greenhouse.Enabled && !out.Sources.Lever.Enabled {
		res.addErr("no sources enabled: enable email alerts, greenhouse, or lever")
	}
	if out.Sources.Greenhouse.Enabled && len(out.Sources.Greenhouse.Boards) == 0 {
		res.addErr("sources.greenhouse.enabled=true but no boards configured")
	}
	if out.Sources.Lever.Enabled && len(out.Sources.Lever.Boards) == 0 {
		res.addErr("sources.lever.enabled=true but no boards configured")
	}

	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; alert scraping may find nothing.")
		}
	}

	if out.Sheet.Enabled {
		if strings.TrimSpace(out.Sheet.SpreadsheetID) == "" {
			res.addErr("sheet.spreadsheet_id is required when sheet.enabled=true")
		}
		if strings.TrimSpace(out.Sheet.Credentials) == "" {
			res.addErr("sheet.credentials_file is required when sheet.enabled=true")
		}
	}

	if out.Digest.Enabled {
		if strings.TrimSpace(out.Digest.SMTPServer) == "" {
			res.addErr("digest.smtp_server is required when digest.enabled=true")
		}
		if strings.TrimSpace(out.Digest.To) == "" {
			res.addErr("digest.to is required when digest.enabled=true")
		}
	}

	if strings.TrimSpace(out.Scoring.Model) == "" {
		res.addWarn("scoring.model is empty; postings will be forwarded unscored.")
	}
	if strings.TrimSpace(out.App.ResumeFile) == "" {
		res.addWarn("app.resume_file is empty; scoring prompt will have no resume context.")
	}

	if !out.Filters.RemoteOK && len(out.Filters.Locations) == 0 {
		res.addWarn("remote_ok is false and no locations configured; you may filter out almost everything.")
	}
	if out.Filters.SalaryMin < 0 {
		res.addErr("filters.salary_min must not be negative")
	}

	return out, res
}
