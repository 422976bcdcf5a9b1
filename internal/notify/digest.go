// Package notify sends the end-of-run email digest.
package notify

import (
	"fmt"
	"html"
	"log"
	"sort"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
)

// RunSummary carries the counters the digest footer reports.
type RunSummary struct {
	Scraped    int
	New        int
	PassedAll  int
	Scored     int
	Errors     []string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Mailer struct {
	cfg      config.Digest
	password string
	topN     int
}

func New(cfg config.Digest, password string, topN int) *Mailer {
	if topN <= 0 {
		topN = 5
	}
	return &Mailer{cfg: cfg, password: password, topN: topN}
}

// SendDigest emails the top postings by score plus run counters. It is
// sent even when nothing matched so a silent run is distinguishable
// from a broken one.
func (m *Mailer) SendDigest(postings []domain.Posting, summary RunSummary) error {
	top := topByScore(postings, m.topN)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To)
	msg.SetHeader("Subject", subject(top, summary))
	msg.SetBody("text/plain", plainBody(top, summary))
	msg.AddAlternative("text/html", htmlBody(top, summary))

	dialer := gomail.NewDialer(m.cfg.SMTPServer, m.cfg.SMTPPort, m.cfg.From, m.password)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	log.Printf("[notify] digest sent to %s (%d postings)", m.cfg.To, len(top))
	return nil
}

func topByScore(postings []domain.Posting, n int) []domain.Posting {
	scored := make([]domain.Posting, 0, len(postings))
	for _, p := range postings {
		if p.Score != nil {
			scored = append(scored, p)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return *scored[i].Score > *scored[j].Score })
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func subject(top []domain.Posting, summary RunSummary) string {
	day := summary.FinishedAt.Format("Jan 2")
	switch {
	case len(summary.Errors) > 0 && len(top) == 0:
		return fmt.Sprintf("Job digest %s: no matches, %d errors", day, len(summary.Errors))
	case len(top) == 0:
		return fmt.Sprintf("Job digest %s: no new matches", day)
	default:
		return fmt.Sprintf("Job digest %s: %d matches, top score %d", day, len(top), *top[0].Score)
	}
}

func plainBody(top []domain.Posting, summary RunSummary) string {
	var b strings.Builder
	if len(top) == 0 {
		b.WriteString("No new matches this run.\n\n")
	}
	for i, p := range top {
		fmt.Fprintf(&b, "%d. [%d/10] %s at %s (%s)\n", i+1, *p.Score, p.Title, p.Company, p.Location)
		if p.Scoring != nil && p.Scoring.Reasoning != "" {
			fmt.Fprintf(&b, "   %s\n", p.Scoring.Reasoning)
		}
		if note := flagsLine(p); note != "" {
			fmt.Fprintf(&b, "   %s\n", note)
		}
		fmt.Fprintf(&b, "   %s\n\n", p.URL)
	}

	fmt.Fprintf(&b, "Run: %d scraped, %d new, %d passed filters, %d scored. Took %s.\n",
		summary.Scraped, summary.New, summary.PassedAll, summary.Scored,
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second))
	for _, e := range summary.Errors {
		fmt.Fprintf(&b, "Error: %s\n", e)
	}
	return b.String()
}

func htmlBody(top []domain.Posting, summary RunSummary) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if len(top) == 0 {
		b.WriteString("<p>No new matches this run.</p>")
	} else {
		b.WriteString("<h2>Top matches</h2><ol>")
		for _, p := range top {
			fmt.Fprintf(&b, `<li><b>[%d/10]</b> <a href="%s">%s</a> at %s (%s)`,
				*p.Score, html.EscapeString(p.URL), html.EscapeString(p.Title),
				html.EscapeString(p.Company), html.EscapeString(p.Location))
			if p.Scoring != nil && p.Scoring.Reasoning != "" {
				fmt.Fprintf(&b, "<br><i>%s</i>", html.EscapeString(p.Scoring.Reasoning))
			}
			if note := flagsLine(p); note != "" {
				fmt.Fprintf(&b, "<br><small>%s</small>", html.EscapeString(note))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ol>")
	}

	fmt.Fprintf(&b, "<p>Run: %d scraped, %d new, %d passed filters, %d scored. Took %s.</p>",
		summary.Scraped, summary.New, summary.PassedAll, summary.Scored,
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second))
	if len(summary.Errors) > 0 {
		b.WriteString("<p><b>Errors:</b></p><ul>")
		for _, e := range summary.Errors {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(e))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// flagsLine collects the caveats worth a glance before clicking.
func flagsLine(p domain.Posting) string {
	var notes []string
	if p.IsRepost {
		notes = append(notes, fmt.Sprintf("reposted x%d", p.RepostCount))
	}
	if p.Freshness == domain.FreshnessStale || p.Freshness == domain.FreshnessExpiredRisk {
		notes = append(notes, p.Freshness)
	}
	if p.Health == domain.HealthExpired {
		notes = append(notes, "listing may be down")
	}
	if p.VC.Backed != nil && *p.VC.Backed {
		notes = append(notes, "VC: "+strings.Join(p.VC.Investors, ", "))
	}
	return strings.Join(notes, " | ")
}
