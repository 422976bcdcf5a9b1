// Package sheets pushes scored postings into a Google Sheet so review
// happens where the application tracking already lives.
package sheets

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
)

const (
	tabNew = "New Matches"
	tabAll = "All Matches"
)

var header = []any{
	"Score", "Freshness", "Health", "Title", "Company", "Location",
	"Salary", "VC Backed", "Investors", "Repost", "Source", "URL",
	"Posted", "First Seen", "Status",
}

type Syncer struct {
	svc           *sheets.Service
	spreadsheetID string
}

func New(ctx context.Context, cfg config.Sheet) (*Syncer, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.Credentials))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Syncer{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// Sync rewrites the "New Matches" tab with this run's postings, best
// score first, and appends the same rows to the running "All Matches"
// history.
func (s *Syncer) Sync(ctx context.Context, postings []domain.Posting) error {
	ranked := make([]domain.Posting, len(postings))
	copy(ranked, postings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scoreOf(ranked[i]) > scoreOf(ranked[j])
	})

	rows := make([][]any, 0, len(ranked)+1)
	rows = append(rows, header)
	for _, p := range ranked {
		rows = append(rows, row(p))
	}

	clear := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, tabNew, &sheets.ClearValuesRequest{})
	if _, err := clear.Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %q: %w", tabNew, err)
	}

	update := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, tabNew+"!A1", &sheets.ValueRange{Values: rows})
	if _, err := update.ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %q: %w", tabNew, err)
	}

	if len(ranked) > 0 {
		appendCall := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, tabAll+"!A1", &sheets.ValueRange{Values: rows[1:]})
		if _, err := appendCall.ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
			return fmt.Errorf("append %q: %w", tabAll, err)
		}
	}

	log.Printf("[sheets] synced %d rows to %q and %q", len(ranked), tabNew, tabAll)
	return nil
}

func scoreOf(p domain.Posting) int {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}

func row(p domain.Posting) []any {
	return []any{
		scoreCell(p), p.Freshness, p.Health, p.Title, p.Company, p.Location,
		salaryCell(p), backedCell(p), strings.Join(p.VC.Investors, ", "),
		repostCell(p), p.Source, p.URL,
		dateCell(p.PostedAt), p.FirstSeen.Format("2006-01-02"), p.Status,
	}
}

func scoreCell(p domain.Posting) any {
	if p.Score == nil {
		return "unscored"
	}
	return *p.Score
}

func salaryCell(p domain.Posting) string {
	switch {
	case p.SalaryMin != nil && p.SalaryMax != nil:
		return fmt.Sprintf("$%.0f - $%.0f", *p.SalaryMin, *p.SalaryMax)
	case p.SalaryMin != nil:
		return fmt.Sprintf("$%.0f+", *p.SalaryMin)
	case p.SalaryMax != nil:
		return fmt.Sprintf("up to $%.0f", *p.SalaryMax)
	default:
		return ""
	}
}

func backedCell(p domain.Posting) string {
	if p.VC.Backed == nil {
		return "unknown"
	}
	if *p.VC.Backed {
		return "yes"
	}
	return "no"
}

func repostCell(p domain.Posting) string {
	if !p.IsRepost {
		return ""
	}
	return fmt.Sprintf("repost x%d", p.RepostCount)
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
