package score

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"jobfinder/internal/domain"
)

const scoreSystemInstruction = `You are a job search assistant. You will receive a resume and a
numbered list of job postings. Score each posting from 1 (poor fit) to 10 (excellent fit)
for the resume's owner. Consider required skills, seniority, and domain. Be strict: most
postings deserve a 4-6. Reserve 8+ for postings the candidate should apply to today.`

const investorSystemInstruction = `You are a startup funding researcher. Given a company name,
list the venture capital firms that have invested in it. Only include firms you are confident
about. If the company is not venture backed or you are unsure, return an empty list.`

// Gemini scores postings and looks up investors through the Gemini API.
// It satisfies both Client here and the enrichment Lookup interface.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) ScoreBatch(ctx context.Context, resume string, postings []domain.Posting) ([]Result, error) {
	var b strings.Builder
	b.WriteString("Resume:\n\n")
	b.WriteString(resume)
	b.WriteString("\n\nPostings:\n")
	for i, p := range postings {
		desc := p.Description
		if len(desc) > 4000 {
			desc = desc[:4000]
		}
		fmt.Fprintf(&b, "\n[%d] %s at %s (%s)\n%s\n", i, p.Title, p.Company, p.Location, desc)
	}

	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: scoreSystemInstruction}}},
		{Role: "user", Parts: []*genai.Part{{Text: b.String()}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   scoreSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini scoring call: %w", err)
	}

	respText := resp.Text()
	var results []Result
	if err := json.Unmarshal([]byte(respText), &results); err != nil {
		return nil, fmt.Errorf("unmarshal scoring response: %w; raw: %s", err, respText)
	}
	return results, nil
}

// Investors implements the enrichment lookup with a search-grounded
// model call.
func (g *Gemini) Investors(ctx context.Context, company string) ([]string, error) {
	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: investorSystemInstruction}}},
		{Role: "user", Parts: []*genai.Part{{Text: fmt.Sprintf("Company: %s", company)}}},
	}

	tools := []*genai.Tool{
		{GoogleSearch: &genai.GoogleSearch{}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   investorSchema(),
		Tools:            tools,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini investor call: %w", err)
	}

	respText := resp.Text()
	var out struct {
		Investors []string `json:"investors"`
	}
	if err := json.Unmarshal([]byte(respText), &out); err != nil {
		return nil, fmt.Errorf("unmarshal investor response: %w; raw: %s", err, respText)
	}
	return out.Investors, nil
}

func scoreSchema() *genai.Schema {
	resultSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"index":     {Type: genai.TypeInteger, Description: "Zero-based index of the posting in the batch."},
			"score":     {Type: genai.TypeInteger, Description: "Fit score from 1 to 10."},
			"reasoning": {Type: genai.TypeString, Description: "One or two sentences explaining the score."},
			"matching_skills": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"missing_qualifications": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"recommendation": {Type: genai.TypeString, Description: "One of: apply, maybe, skip."},
		},
		Required: []string{"index", "score", "reasoning", "recommendation"},
	}

	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: resultSchema,
	}
}

func investorSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"investors": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"investors"},
	}
}
