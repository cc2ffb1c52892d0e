package worker

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	oraclex "github.com/tanpawarit/travel-orchestrator/agent/oracle"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	tavilyx "github.com/tanpawarit/travel-orchestrator/pkg/tavily"
)

const (
	// SearchLimit caps destinations returned by the web worker.
	SearchLimit = 7

	searchMaxResults = 5

	budgetFriendlyBelow = 50000
	moderateBudgetBelow = 100000
)

// WebSearcher is the search capability shared by the web and weather
// workers.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) (*tavilyx.SearchResponse, error)
}

var _ contractx.Worker = (*Searcher)(nil)

type Searcher struct {
	search WebSearcher
	oracle *oraclex.Structured[searchLLMOutput]
}

type searchLLMOutput struct {
	Destinations []llmDestination `json:"destinations"`
}

type llmDestination struct {
	Name          string     `json:"name"`
	Country       string     `json:"country"`
	EstimatedCost flexNumber `json:"estimated_cost"`
	Description   string     `json:"description"`
	Activities    []string   `json:"activities"`
	BestSeason    string     `json:"best_season"`
	SourceURL     string     `json:"source_url"`
}

// NewSearcher accepts a nil search; Execute then reports web search as not
// configured.
func NewSearcher(ctx context.Context, search WebSearcher, chatModel einomodel.BaseChatModel, systemPrompt string) (*Searcher, error) {
	o, err := oraclex.NewStructured[searchLLMOutput](ctx, chatModel, systemPrompt, "worker.search_extract")
	if err != nil {
		return nil, err
	}
	return &Searcher{search: search, oracle: o}, nil
}

func (s *Searcher) Kind() statex.WorkerKind { return statex.WorkerWeb }

func (s *Searcher) Execute(ctx context.Context, prefs statex.Preferences, _ *statex.SharedState) statex.WorkerResult {
	if s.search == nil {
		return statex.Failed(statex.WorkerWeb, fmt.Errorf("web search %w", contractx.ErrNotConfigured))
	}

	query := BuildSearchQuery(prefs)
	resp, err := s.search.Search(ctx, query, searchMaxResults)
	if err != nil {
		res := statex.Failed(statex.WorkerWeb, fmt.Errorf("web search: %w", err))
		res.Query = query
		return res
	}

	out, err := s.oracle.Ask(ctx, map[string]any{
		"preferences": prefs,
		"results":     resp.Results,
	})
	if err != nil {
		res := statex.Failed(statex.WorkerWeb, fmt.Errorf("extract destinations: %w", err))
		res.Query = query
		return res
	}

	dests := make([]statex.WebDestination, 0, len(out.Destinations))
	for _, d := range out.Destinations {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		dests = append(dests, statex.WebDestination{
			Name:          name,
			Country:       strings.TrimSpace(d.Country),
			EstimatedCost: d.EstimatedCost.Ptr(),
			Description:   strings.TrimSpace(d.Description),
			Activities:    statex.NormalizeList(d.Activities),
			BestSeason:    strings.TrimSpace(d.BestSeason),
			SourceURL:     strings.TrimSpace(d.SourceURL),
		})
		if len(dests) == SearchLimit {
			break
		}
	}

	return statex.WorkerResult{
		Kind:         statex.WorkerWeb,
		Success:      true,
		Count:        len(dests),
		Query:        query,
		Destinations: dests,
	}
}

// BuildSearchQuery composes the web query from the non-empty preference
// fields.
func BuildSearchQuery(prefs statex.Preferences) string {
	parts := []string{"best travel destinations"}
	parts = append(parts, prefs.DestinationStates...)
	parts = append(parts, prefs.DestinationCountries...)
	if m := strings.TrimSpace(prefs.TravelMonth); m != "" {
		parts = append(parts, "in "+m)
	}
	parts = append(parts, prefs.Activities...)
	if prefs.HasBudget() {
		switch b := *prefs.BudgetMax; {
		case b < budgetFriendlyBelow:
			parts = append(parts, "budget-friendly")
		case b < moderateBudgetBelow:
			parts = append(parts, "moderate budget")
		}
	}
	return strings.Join(parts, " ")
}
