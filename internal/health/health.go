// Package health probes posting URLs to catch listings that were taken
// down between scrape and review.
package health

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
	"jobfinder/internal/scrape/util"
)

// Body phrases that mean "this listing is gone" even behind a 200.
var expiredPatterns = []string{
	"this job is no longer available",
	"job not found",
	"position has been filled",
	"posting has expired",
	"this position is no longer open",
	"no longer accepting applications",
	"the page you're looking for doesn't exist",
	"this job has closed",
}

const maxBodyBytes = 256 << 10

type Checker struct {
	hc      *http.Client
	limiter *util.HostLimiter
	maxPer  int
}

func New(cfg config.Health, limiter *util.HostLimiter) *Checker {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// redirects are a signal here, not something to follow
	hc := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &Checker{hc: hc, limiter: limiter, maxPer: cfg.MaxChecksPerRun}
}

// Annotate checks each posting URL and records reachable, expired, or
// unknown. The per-run cap bounds runtime on large batches; postings
// past the cap stay unknown. A network failure is never treated as an
// expired listing.
func (c *Checker) Annotate(ctx context.Context, postings []domain.Posting) []domain.Posting {
	checked, expired := 0, 0
	for i := range postings {
		if c.maxPer > 0 && checked >= c.maxPer {
			postings[i].Health = domain.HealthUnknown
			continue
		}
		checked++

		status := c.check(ctx, postings[i].URL)
		postings[i].Health = status
		if status == domain.HealthExpired {
			expired++
		}
	}
	log.Printf("[health] checked %d of %d, %d expired", checked, len(postings), expired)
	return postings
}

func (c *Checker) check(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return domain.HealthUnknown
	}
	if err := c.limiter.WaitURL(ctx, rawURL); err != nil {
		return domain.HealthUnknown
	}

	// HEAD first; many boards reject it, so fall back to GET
	status, retry := c.probe(ctx, http.MethodHead, rawURL)
	if retry {
		status, _ = c.probe(ctx, http.MethodGet, rawURL)
	}
	return status
}

// probe returns the health verdict and whether a GET retry is worth it.
func (c *Checker) probe(ctx context.Context, method, rawURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return domain.HealthUnknown, false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; jobfinder/1.0)")

	resp, err := c.hc.Do(req)
	if err != nil {
		// timeouts and transport errors say nothing about the listing
		return domain.HealthUnknown, false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return domain.HealthExpired, false
	case resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusForbidden:
		return domain.HealthUnknown, method == http.MethodHead
	case resp.StatusCode >= 500:
		return domain.HealthUnknown, false
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		if genericRedirect(rawURL, resp.Header.Get("Location")) {
			return domain.HealthExpired, false
		}
		return domain.HealthReachable, false
	case resp.StatusCode == http.StatusOK:
		if method == http.MethodHead {
			// body check needs a GET
			return domain.HealthReachable, true
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if bodySaysExpired(string(body)) {
			return domain.HealthExpired, false
		}
		return domain.HealthReachable, false
	default:
		return domain.HealthUnknown, false
	}
}

func bodySaysExpired(body string) bool {
	lower := strings.ToLower(body)
	for _, pat := range expiredPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

// genericRedirect reports whether the redirect abandons the specific
// job page for a careers home or root, the usual fate of removed
// listings.
func genericRedirect(from, location string) bool {
	if location == "" {
		return false
	}
	src, err1 := url.Parse(from)
	dst, err2 := url.Parse(location)
	if err1 != nil || err2 != nil {
		return false
	}
	if !dst.IsAbs() {
		dst = src.ResolveReference(dst)
	}

	path := strings.TrimSuffix(dst.Path, "/")
	if path == "" {
		return true
	}
	for _, generic := range []string{"/careers", "/jobs", "/join-us", "/openings"} {
		if path == generic {
			return true
		}
	}
	return false
}
