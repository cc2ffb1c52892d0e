package worker

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	catalogx "github.com/tanpawarit/travel-orchestrator/agent/catalog"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	oraclex "github.com/tanpawarit/travel-orchestrator/agent/oracle"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

var _ contractx.Worker = (*Extractor)(nil)

// Extractor reads packages out of the traveller's own catalog document.
type Extractor struct {
	pipeline *catalogx.Pipeline
	oracle   *oraclex.Structured[catalogLLMOutput]
}

type catalogLLMOutput struct {
	Packages []llmPackage `json:"packages"`
}

type llmPackage struct {
	Destination string     `json:"destination"`
	Country     string     `json:"country"`
	Price       flexNumber `json:"price"`
	Duration    string     `json:"duration"`
	Activities  []string   `json:"activities"`
	BestSeason  string     `json:"best_season"`
	Description string     `json:"description"`
}

// NewExtractor builds the document worker. chatModel may be nil, in which
// case text catalogs cannot be read but structured ones still work.
func NewExtractor(ctx context.Context, pipeline *catalogx.Pipeline, chatModel einomodel.BaseChatModel, systemPrompt string) (*Extractor, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("%w: catalog pipeline is required", contractx.ErrValidation)
	}
	e := &Extractor{pipeline: pipeline}
	if chatModel != nil {
		o, err := oraclex.NewStructured[catalogLLMOutput](ctx, chatModel, systemPrompt, "worker.catalog_extract")
		if err != nil {
			return nil, err
		}
		e.oracle = o
	}
	return e, nil
}

func (e *Extractor) Kind() statex.WorkerKind { return statex.WorkerDocument }

func (e *Extractor) Execute(ctx context.Context, prefs statex.Preferences, snapshot *statex.SharedState) statex.WorkerResult {
	if !snapshot.HasDocument() {
		return statex.Failed(statex.WorkerDocument, contractx.ErrNoDocument)
	}

	idx, err := e.pipeline.Open(ctx, snapshot.DocumentPath)
	if err != nil {
		return statex.Failed(statex.WorkerDocument, err)
	}

	var pkgs []statex.CatalogPackage
	switch idx.Format {
	case catalogx.FormatStructured:
		pkgs = idx.Packages
	case catalogx.FormatText:
		pkgs, err = e.extractFromText(ctx, idx, snapshot.Query, prefs)
		if err != nil {
			return statex.Failed(statex.WorkerDocument, err)
		}
	}

	pkgs = catalogx.SelectPackages(pkgs, prefs, catalogx.MaxPackages)
	return statex.WorkerResult{
		Kind:     statex.WorkerDocument,
		Success:  true,
		Count:    len(pkgs),
		Query:    snapshot.DocumentPath,
		Packages: pkgs,
	}
}

func (e *Extractor) extractFromText(ctx context.Context, idx *catalogx.Index, query string, prefs statex.Preferences) ([]statex.CatalogPackage, error) {
	if e.oracle == nil {
		return nil, fmt.Errorf("text catalog extraction %w", contractx.ErrNotConfigured)
	}
	if idx.Retriever == nil {
		return nil, fmt.Errorf("%w: no retriever for %s", contractx.ErrEmptyDocument, idx.Path)
	}

	docs, err := idx.Retriever.Retrieve(ctx, catalogx.RetrievalQuery(query, prefs))
	if err != nil {
		return nil, fmt.Errorf("retrieve catalog excerpts: %w", err)
	}
	excerpts := make([]string, 0, len(docs))
	for _, d := range docs {
		excerpts = append(excerpts, d.Content)
	}

	out, err := e.oracle.Ask(ctx, map[string]any{
		"preferences": prefs,
		"excerpts":    excerpts,
	})
	if err != nil {
		return nil, fmt.Errorf("extract packages: %w", err)
	}

	pkgs := make([]statex.CatalogPackage, 0, len(out.Packages))
	for _, p := range out.Packages {
		name := strings.TrimSpace(p.Destination)
		if name == "" {
			continue
		}
		pkgs = append(pkgs, statex.CatalogPackage{
			Destination: name,
			Country:     strings.TrimSpace(p.Country),
			Price:       p.Price.Ptr(),
			Duration:    strings.TrimSpace(p.Duration),
			Activities:  statex.NormalizeList(p.Activities),
			BestSeason:  strings.TrimSpace(p.BestSeason),
			Description: strings.TrimSpace(p.Description),
		})
	}
	return pkgs, nil
}
