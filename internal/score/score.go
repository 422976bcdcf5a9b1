// Package score ranks postings against the user's resume with an LLM.
// Scoring is the expensive stage; everything upstream exists to shrink
// its input.
package score

import (
	"context"
	"log"

	"jobfinder/internal/config"
	"jobfinder/internal/domain"
)

// Result is one posting's verdict from the model.
type Result struct {
	Index          int      `json:"index"`
	Score          int      `json:"score"`
	Reasoning      string   `json:"reasoning"`
	MatchingSkills []string `json:"matching_skills"`
	Missing        []string `json:"missing_qualifications"`
	Recommendation string   `json:"recommendation"`
}

// Client scores a batch of postings in one model call.
type Client interface {
	ScoreBatch(ctx context.Context, resume string, postings []domain.Posting) ([]Result, error)
}

type Scorer struct {
	client    Client
	batchSize int
	vcBonus   int
}

func New(client Client, cfg config.Scoring) *Scorer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 5
	}
	return &Scorer{client: client, batchSize: batch, vcBonus: cfg.VCBonus}
}

// ScoreAll scores every posting in batches. A batch that fails is
// retried once; if the retry also fails, its postings keep a nil score
// and flow through so nothing is silently lost.
func (s *Scorer) ScoreAll(ctx context.Context, resume string, postings []domain.Posting) []domain.Posting {
	scored, failed := 0, 0
	for start := 0; start < len(postings); start += s.batchSize {
		end := start + s.batchSize
		if end > len(postings) {
			end = len(postings)
		}
		batch := postings[start:end]

		results, err := s.client.ScoreBatch(ctx, resume, batch)
		if err != nil {
			log.Printf("[score] batch %d-%d failed, retrying: %v", start, end, err)
			results, err = s.client.ScoreBatch(ctx, resume, batch)
		}
		if err != nil {
			log.Printf("[score] batch %d-%d failed twice, postings keep nil score: %v", start, end, err)
			failed += len(batch)
			continue
		}

		for _, r := range results {
			if r.Index < 0 || r.Index >= len(batch) {
				log.Printf("[score] result index %d out of range for batch of %d", r.Index, len(batch))
				continue
			}
			p := &batch[r.Index]
			val := s.adjust(r.Score, p.VC)
			p.Score = &val
			p.Scoring = &domain.ScoreDetail{
				Reasoning:      r.Reasoning,
				MatchingSkills: r.MatchingSkills,
				Missing:        r.Missing,
				Recommendation: r.Recommendation,
			}
			scored++
		}
	}
	log.Printf("[score] %d scored, %d unscored of %d", scored, failed, len(postings))
	return postings
}

// adjust clamps the raw score to 1..10 and adds the VC bonus for backed
// companies, still capped at 10.
func (s *Scorer) adjust(raw int, vc domain.VCInfo) int {
	if raw < 1 {
		raw = 1
	}
	if raw > 10 {
		raw = 10
	}
	if vc.Backed != nil && *vc.Backed && s.vcBonus > 0 {
		raw += s.vcBonus
		if raw > 10 {
			raw = 10
		}
	}
	return raw
}
