// Package email scrapes job postings out of job-alert emails over IMAP.
package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
	"jobfinder/internal/freshness"
	"jobfinder/internal/scrape/types"
	"jobfinder/internal/scrape/util"

	"github.com/emersion/go-imap/v2"
)

const maxEmailsPerRun = 200

type Fetcher struct {
	Cfg      config.EmailSource
	Password string
}

func (f *Fetcher) Name() string { return "email" }

// Fetch scans unseen alert emails whose subject matches the configured
// list, parses job cards out of them, and returns the postings. The
// emails are marked \Seen only via the Finalize hook, after the batch
// has been persisted, so a crashed run re-reads them.
func (f *Fetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	addr := f.Cfg.IMAPHost
	if !strings.Contains(addr, ":") {
		port := f.Cfg.IMAPPort
		if port == 0 {
			port = 993
		}
		addr = fmt.Sprintf("%s:%d", addr, port)
	}

	c, err := dialAndLogin(ctx, addr, f.Cfg.Username, f.Password)
	if err != nil {
		return types.ScrapeResult{}, err
	}
	defer logoutAndClose(c)

	mailbox := f.Cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return types.ScrapeResult{}, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := fetchUnseen(ctx, c, maxEmailsPerRun)
	if err != nil {
		return types.ScrapeResult{}, err
	}
	if len(msgs) == 0 {
		return types.ScrapeResult{Source: "email"}, nil
	}

	var postings []domain.Posting
	processed := make([]imap.UID, 0, len(msgs))

	for _, m := range msgs {
		subj := decodeSubject(m.Subject)
		if len(f.Cfg.SearchSubjectAny) > 0 && !containsAnyCI(subj, f.Cfg.SearchSubjectAny) {
			continue
		}
		processed = append(processed, m.UID)

		jobs, perr := parseAlertHTML(htmlBody(m.RawMessage))
		if perr != nil {
			log.Printf("[email] parse uid=%v subject=%q err=%v", m.UID, subj, perr)
			continue
		}

		received := m.Date
		if received.IsZero() {
			received = time.Now()
		}
		for _, j := range jobs {
			postedAt := freshness.ParsePostedAt(j.Posted, received)
			if postedAt == nil {
				// the alert's arrival is the best available bound
				postedAt = timePtr(received)
			}
			p := domain.Posting{
				Source:    "email",
				Title:     j.Title,
				Company:   j.Company,
				Location:  util.NormalizeLocation(j.Location),
				URL:       j.URL,
				PostedAt:  postedAt,
				FirstSeen: time.Now(),
				LastSeen:  time.Now(),
			}
			p.SalaryMin, p.SalaryMax = util.ParseSalary(j.Salary)
			postings = append(postings, p)
		}
	}

	log.Printf("[email] %d alert emails -> %d postings", len(processed), len(postings))

	// Reconnect inside Finalize: the deferred logout above closes this
	// session before the pipeline persists the batch.
	finalize := func(fctx context.Context) error {
		if len(processed) == 0 {
			return nil
		}
		fc, err := dialAndLogin(fctx, addr, f.Cfg.Username, f.Password)
		if err != nil {
			return err
		}
		defer logoutAndClose(fc)
		if _, err := fc.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
			return err
		}
		return markSeen(fc, processed)
	}

	return types.ScrapeResult{Source: "email", Postings: postings, Finalize: finalize}, nil
}

func containsAnyCI(s string, needles []string) bool {
	ls := strings.ToLower(s)
	for _, n := range needles {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" && strings.Contains(ls, n) {
			return true
		}
	}
	return false
}

func timePtr(t time.Time) *time.Time { return &t }
