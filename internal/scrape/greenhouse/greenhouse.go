package greenhouse

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"jobfinder/internal/domain"
	"jobfinder/internal/scrape/types"
	"jobfinder/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

type Config struct {
	Boards []Board
}

type Board struct {
	Slug string // boards.greenhouse.io/<slug>
	Name string // display name
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "greenhouse" }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	var out []domain.Posting
	failed := 0
	for _, board := range s.cfg.Boards {
		postings, err := s.fetchBoard(ctx, board)
		if err != nil {
			// one dead board must not sink the others
			log.Printf("[greenhouse] board=%q err=%v", board.Slug, err)
			failed++
			continue
		}
		out = append(out, postings...)
	}
	if failed == len(s.cfg.Boards) && failed > 0 {
		return types.ScrapeResult{}, fmt.Errorf("greenhouse: all %d boards failed", failed)
	}
	log.Printf("[greenhouse] fetched %d postings from %d boards", len(out), len(s.cfg.Boards)-failed)
	return types.ScrapeResult{Source: "greenhouse", Postings: out}, nil
}

func (s *Scraper) fetchBoard(ctx context.Context, board Board) ([]domain.Posting, error) {
	boardURL := fmt.Sprintf("https://boards.greenhouse.io/%s", board.Slug)

	doc, err := s.get(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("greenhouse board: %w", err)
	}

	now := time.Now()
	seen := map[string]bool{}
	var postings []domain.Posting

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = "https://boards.greenhouse.io" + href
		}
		low := strings.ToLower(abs)
		if !strings.Contains(low, "boards.greenhouse.io") || !strings.Contains(low, "/jobs/") {
			return
		}
		if extractJobID(abs) == "" {
			return
		}

		abs = util.CanonicalURL(abs)
		if seen[abs] {
			return
		}
		seen[abs] = true

		title := util.CleanText(a.Text())
		if looksLikeJunkTitle(title) {
			// detail page has the real title
			title = ""
		}

		postings = append(postings, domain.Posting{
			Source:    "greenhouse",
			Company:   board.Name,
			Title:     title,
			URL:       abs,
			FirstSeen: now,
			LastSeen:  now,
		})
	})

	for i := range postings {
		if err := s.hydrate(ctx, &postings[i]); err != nil {
			// keep the minimal entry; dedup drops it if title stays empty
			log.Printf("[greenhouse] hydrate url=%q err=%v", postings[i].URL, err)
		}
	}

	return postings, nil
}

func (s *Scraper) hydrate(ctx context.Context, p *domain.Posting) error {
	doc, err := s.get(ctx, p.URL)
	if err != nil {
		return err
	}

	if p.Title == "" {
		p.Title = util.CleanText(doc.Find("h1").First().Text())
	}

	if loc := util.NormalizeLocation(doc.Find(".location").First().Text()); loc != "" {
		p.Location = loc
	}

	if sel := doc.Find("#content").First(); sel.Length() > 0 {
		p.Description = util.CleanText(sel.Text())
	}
	if p.Description == "" {
		p.Description = util.CleanText(doc.Find("body").Text())
	}

	p.SalaryMin, p.SalaryMax = util.ParseSalary(p.Description)

	return nil
}

func (s *Scraper) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	req.Header.Set("User-Agent", "jobfinder/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}

	return goquery.NewDocumentFromReader(res.Body)
}

func extractJobID(u string) string {
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	id := ""
	for _, r := range parts[1] {
		if r >= '0' && r <= '9' {
			id += string(r)
		} else {
			break
		}
	}
	return id
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view") || strings.Contains(l, "apply")
}
