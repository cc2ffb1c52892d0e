package worker

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	oraclex "github.com/tanpawarit/travel-orchestrator/agent/oracle"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

const weatherMaxResults = 3

var _ contractx.Worker = (*WeatherLookup)(nil)

type WeatherLookup struct {
	search WebSearcher
	oracle *oraclex.Structured[statex.WeatherSummary]
}

func NewWeatherLookup(ctx context.Context, search WebSearcher, chatModel einomodel.BaseChatModel, systemPrompt string) (*WeatherLookup, error) {
	o, err := oraclex.NewStructured[statex.WeatherSummary](ctx, chatModel, systemPrompt, "worker.weather_extract")
	if err != nil {
		return nil, err
	}
	return &WeatherLookup{search: search, oracle: o}, nil
}

func (w *WeatherLookup) Kind() statex.WorkerKind { return statex.WorkerWeather }

func (w *WeatherLookup) Execute(ctx context.Context, prefs statex.Preferences, snapshot *statex.SharedState) statex.WorkerResult {
	dest := prefs.PrimaryDestination()
	if dest == "" {
		return statex.Failed(statex.WorkerWeather, contractx.ErrNoDestination)
	}
	if w.search == nil {
		return statex.Failed(statex.WorkerWeather, fmt.Errorf("web search %w", contractx.ErrNotConfigured))
	}

	query := BuildWeatherQuery(dest, prefs.TravelMonth)
	resp, err := w.search.Search(ctx, query, weatherMaxResults)
	if err != nil {
		res := statex.Failed(statex.WorkerWeather, fmt.Errorf("weather search: %w", err))
		res.Query = query
		return res
	}

	summary, err := w.oracle.Ask(ctx, map[string]any{
		"destination":  dest,
		"travel_month": prefs.TravelMonth,
		"results":      resp.Results,
	})
	if err != nil {
		res := statex.Failed(statex.WorkerWeather, fmt.Errorf("extract weather: %w", err))
		res.Query = query
		return res
	}
	if strings.TrimSpace(summary.DestinationLabel) == "" {
		summary.DestinationLabel = dest
	}

	return statex.WorkerResult{
		Kind:                   statex.WorkerWeather,
		Success:                true,
		Count:                  1,
		Query:                  query,
		Weather:                &summary,
		NoPriorRecommendations: snapshot.CombinedCount() == 0,
	}
}

func BuildWeatherQuery(dest, month string) string {
	if m := strings.TrimSpace(month); m != "" {
		return fmt.Sprintf("%s weather in %s temperature climate", dest, m)
	}
	return fmt.Sprintf("%s current weather forecast temperature climate", dest)
}
