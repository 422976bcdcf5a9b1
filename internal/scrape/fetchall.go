// Package scrape fans out over the enabled posting sources.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
	"jobfinder/internal/scrape/email"
	"jobfinder/internal/scrape/greenhouse"
	"jobfinder/internal/scrape/lever"
	"jobfinder/internal/scrape/types"
	"jobfinder/internal/scrape/util"

	"golang.org/x/sync/errgroup"
)

// ErrAllSourcesFailed aborts the run: with zero postings there is
// nothing downstream worth doing, and silence would hide the outage.
var ErrAllSourcesFailed = errors.New("all scrape sources failed")

// Result is the merged output of one scrape pass.
type Result struct {
	Postings  []domain.Posting
	Errors    []string // per-source failures, for the run log and digest
	Finalizes []func(context.Context) error
}

// BuildFetchers assembles the enabled sources. imapPassword may be
// empty when the email source is disabled.
func BuildFetchers(cfg config.Config, imapPassword string) []types.Fetcher {
	limiter := util.NewHostLimiter(1.0, 2)

	var fetchers []types.Fetcher
	if cfg.Sources.Greenhouse.Enabled {
		fetchers = append(fetchers, greenhouse.New(greenhouse.Config{
			Boards: mapGreenhouseBoards(cfg.Sources.Greenhouse.Boards),
		}, limiter))
	}
	if cfg.Sources.Lever.Enabled {
		fetchers = append(fetchers, lever.New(lever.Config{
			Boards: mapLeverBoards(cfg.Sources.Lever.Boards),
		}, limiter))
	}
	if cfg.Email.Enabled {
		fetchers = append(fetchers, &email.Fetcher{Cfg: cfg.Email, Password: imapPassword})
	}
	return fetchers
}

// FetchAll runs every fetcher concurrently with a per-source timeout.
// A failing source is logged and skipped; only all of them failing is
// an error.
func FetchAll(ctx context.Context, fetchers []types.Fetcher) (Result, error) {
	if len(fetchers) == 0 {
		return Result{}, ErrAllSourcesFailed
	}

	var g errgroup.Group
	results := make(chan types.ScrapeResult, len(fetchers))
	failures := make(chan string, len(fetchers))

	for _, f := range fetchers {
		f := f
		g.Go(func() error {
			timeout := 2 * time.Minute
			switch f.Name() {
			case "greenhouse", "lever":
				timeout = 5 * time.Minute
			}

			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Printf("[%s] running...", f.Name())
			res, err := f.Fetch(fctx)
			if err != nil {
				log.Printf("[scrape:%s] error: %v", f.Name(), err)
				failures <- fmt.Sprintf("%s: %v", f.Name(), err)
				return nil // best-effort: don't cancel siblings
			}
			results <- res
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	close(failures)

	var out Result
	for res := range results {
		log.Printf("[scrape] source=%s postings=%d", res.Source, len(res.Postings))
		out.Postings = append(out.Postings, res.Postings...)
		if res.Finalize != nil {
			out.Finalizes = append(out.Finalizes, res.Finalize)
		}
	}
	for msg := range failures {
		out.Errors = append(out.Errors, msg)
	}

	if len(out.Errors) == len(fetchers) {
		return out, ErrAllSourcesFailed
	}
	return out, nil
}

func mapGreenhouseBoards(in []config.Company) []greenhouse.Board {
	out := make([]greenhouse.Board, 0, len(in))
	for _, c := range in {
		out = append(out, greenhouse.Board{Slug: c.Slug, Name: c.Name})
	}
	return out
}

func mapLeverBoards(in []config.Company) []lever.Board {
	out := make([]lever.Board, 0, len(in))
	for _, c := range in {
		out = append(out, lever.Board{Slug: c.Slug, Name: c.Name})
	}
	return out
}
