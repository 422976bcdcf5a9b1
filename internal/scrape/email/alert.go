package email

import (
	"net/url"
	"regexp"
	"strings"

	"jobfinder/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// alertJob is one card parsed out of a job-alert email.
type alertJob struct {
	Title    string
	Company  string
	Location string
	Salary   string
	Posted   string // relative text like "3 days ago", when present
	URL      string
}

var (
	reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*(?:year|yr)`)
	reJobID  = regexp.MustCompile(`/jobs/view/(\d+)`)
	rePosted = regexp.MustCompile(`(?i)\b(\d+\s*(?:hours?|days?|weeks?|months?)\s*ago|yesterday|today|just posted)\b`)
)

// parseAlertHTML extracts job cards from a LinkedIn-style alert email.
// Multiple anchors point at the same job id (logo anchor, title anchor,
// footer anchor); cards are merged by id so a bare logo link seen first
// doesn't produce a titleless entry that shadows the real one.
func parseAlertHTML(body string) ([]alertJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	byKey := map[string]*alertJob{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		lh := strings.ToLower(href)
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}

		jobURL := unwrapRedirect(href)
		if jobURL == "" {
			return
		}
		jobURL = util.CanonicalURL(jobURL)

		key := jobURL
		if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
			key = m[1]
		}

		j, ok := byKey[key]
		if !ok {
			j = &alertJob{URL: jobURL}
			byKey[key] = j
		}

		if t := stripAlertJunk(util.CleanText(a.Text())); betterTitle(t, j.Title) {
			j.Title = t
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		// "Company · Location" lives in a <p> inside the card
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" {
				return
			}
			if j.Company == "" && j.Location == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.Company = strings.TrimSpace(parts[0])
				j.Location = strings.TrimSpace(parts[1])
				return
			}
			t2 := stripAlertJunk(t)
			if reSalary.MatchString(t2) {
				return
			}
			if betterTitle(t2, j.Title) && !strings.Contains(t2, " · ") {
				j.Title = t2
			}
		})

		if j.Salary == "" || j.Posted == "" {
			if blob := util.CleanText(card.Text()); blob != "" {
				if j.Salary == "" {
					j.Salary = strings.TrimSpace(reSalary.FindString(blob))
				}
				if j.Posted == "" {
					j.Posted = strings.TrimSpace(rePosted.FindString(blob))
				}
			}
		}
	})

	out := make([]alertJob, 0, len(byKey))
	for _, j := range byKey {
		if j.URL == "" || j.Title == "" {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

// unwrapRedirect follows url= and /url?q= wrapper links to the real target.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}
	if strings.Contains(strings.ToLower(u.Host), "google.") && strings.HasPrefix(u.Path, "/url") {
		if q := u.Query().Get("q"); q != "" {
			if uu, err := url.Parse(q); err == nil && uu.Host != "" {
				return uu.String()
			}
		}
	}
	if u.Host != "" {
		return u.String()
	}
	return href
}

func stripAlertJunk(s string) string {
	for _, junk := range []string{"Actively recruiting", "Easy Apply", "Promoted"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	s = strings.Join(strings.Fields(s), " ")

	low := strings.ToLower(s)
	if strings.Contains(low, "alumni") ||
		strings.Contains(low, "connections") ||
		strings.Contains(low, "applicants") ||
		strings.Contains(low, "school") {
		return ""
	}
	return s
}

func betterTitle(candidate, current string) bool {
	c := strings.TrimSpace(candidate)
	if c == "" {
		return false
	}
	return len(c) > len(strings.TrimSpace(current))
}
