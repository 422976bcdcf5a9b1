package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobfinder/internal/domain"
	"jobfinder/internal/scrape/types"
	"jobfinder/internal/scrape/util"
)

type Config struct {
	Boards []Board
}

type Board struct {
	Slug string // api.lever.co/v0/postings/<slug>
	Name string
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

func (s *Scraper) Name() string { return "lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"` // html
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	const workers = 4

	boards := s.cfg.Boards
	batches := make(chan []domain.Posting, len(boards))
	work := make(chan Board)

	var wg sync.WaitGroup
	wg.Add(workers)

	var mu sync.Mutex
	failed := 0

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for board := range work {
				bctx, cancel := context.WithTimeout(ctx, 15*time.Second)
				postings, err := s.fetchBoard(bctx, board)
				cancel()

				if err != nil {
					log.Printf("[lever] board=%q err=%v", board.Slug, err)
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				if len(postings) > 0 {
					batches <- postings
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, board := range boards {
			select {
			case <-ctx.Done():
				return
			case work <- board:
			}
		}
	}()

	wg.Wait()
	close(batches)

	var out []domain.Posting
	for batch := range batches {
		out = append(out, batch...)
	}

	if failed == len(boards) && failed > 0 {
		return types.ScrapeResult{}, fmt.Errorf("lever: all %d boards failed", failed)
	}
	log.Printf("[lever] fetched %d postings from %d boards", len(out), len(boards)-failed)
	return types.ScrapeResult{Source: "lever", Postings: out}, nil
}

func (s *Scraper) fetchBoard(ctx context.Context, board Board) ([]domain.Posting, error) {
	apiURL := fmt.Sprintf("https://api.lever.co/v0/postings/%s?mode=json", board.Slug)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "jobfinder/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var raw []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	now := time.Now()
	out := make([]domain.Posting, 0, len(raw))
	for _, lp := range raw {
		if lp.ID == "" || lp.HostedURL == "" || strings.TrimSpace(lp.Text) == "" {
			continue
		}

		desc := lp.DescriptionPlain
		if desc == "" {
			desc = lp.Description
		}
		desc = util.CleanText(desc)

		p := domain.Posting{
			Source:      "lever",
			Company:     board.Name,
			Title:       strings.TrimSpace(lp.Text),
			Location:    util.NormalizeLocation(lp.Categories.Location),
			Industry:    util.CleanText(lp.Categories.Team),
			Description: desc,
			URL:         util.CanonicalURL(lp.HostedURL),
			FirstSeen:   now,
			LastSeen:    now,
		}
		if lp.CreatedAt > 0 {
			t := time.UnixMilli(lp.CreatedAt)
			p.PostedAt = &t
		}
		p.SalaryMin, p.SalaryMax = util.ParseSalary(desc)

		out = append(out, p)
	}

	return out, nil
}
