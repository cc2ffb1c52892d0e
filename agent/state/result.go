package state

import (
	"fmt"
	"strings"
)

// WorkerKind tags a worker and the Shared State slot it writes.
type WorkerKind string

const (
	WorkerDocument WorkerKind = "document"
	WorkerDatabase WorkerKind = "database"
	WorkerWeb      WorkerKind = "web"
	WorkerWeather  WorkerKind = "weather"
)

// WorkerPriority is the fixed fallback order used whenever the decision
// oracle cannot be trusted.
var WorkerPriority = []WorkerKind{WorkerDocument, WorkerDatabase, WorkerWeb, WorkerWeather}

func (k WorkerKind) Valid() bool {
	switch k {
	case WorkerDocument, WorkerDatabase, WorkerWeb, WorkerWeather:
		return true
	default:
		return false
	}
}

// ParseWorkerKind accepts canonical kinds and the agent aliases used in
// oracle prompts (extractor, analyst, search).
func ParseWorkerKind(s string) (WorkerKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "extractor", "pdf":
		return WorkerDocument, true
	case "database", "analyst", "db":
		return WorkerDatabase, true
	case "web", "search", "searcher", "web_search":
		return WorkerWeb, true
	case "weather", "weather_lookup":
		return WorkerWeather, true
	default:
		return "", false
	}
}

// CatalogPackage is a package-like record extracted from a document catalog.
type CatalogPackage struct {
	Destination string   `json:"destination" yaml:"destination"`
	Country     string   `json:"country,omitempty" yaml:"country"`
	Price       *float64 `json:"price,omitempty" yaml:"price"`
	Duration    string   `json:"duration,omitempty" yaml:"duration"`
	Activities  []string `json:"activities,omitempty" yaml:"activities"`
	BestSeason  string   `json:"best_season,omitempty" yaml:"best_season"`
	Description string   `json:"description,omitempty" yaml:"description"`
}

// DatabaseRow mirrors one row of the travel_preferences table.
type DatabaseRow struct {
	BudgetMax            *float64 `json:"budget_max,omitempty"`
	Activities           []string `json:"activities,omitempty"`
	TravelMonth          string   `json:"travel_month,omitempty"`
	DestinationStates    []string `json:"destination_state,omitempty"`
	DestinationCountries []string `json:"destination_country,omitempty"`
}

// WebDestination is a destination candidate extracted from web search.
type WebDestination struct {
	Name          string   `json:"name"`
	Country       string   `json:"country,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
	Description   string   `json:"description,omitempty"`
	Activities    []string `json:"activities,omitempty"`
	BestSeason    string   `json:"best_season,omitempty"`
	SourceURL     string   `json:"source_url,omitempty"`
}

// WeatherSummary is the climate information for one destination.
type WeatherSummary struct {
	DestinationLabel string   `json:"destination"`
	TemperatureRange string   `json:"temperature_range,omitempty"`
	Conditions       string   `json:"conditions,omitempty"`
	BestTimeToVisit  string   `json:"best_time_to_visit,omitempty"`
	Rainfall         string   `json:"rainfall,omitempty"`
	Humidity         string   `json:"humidity,omitempty"`
	Advisories       []string `json:"travel_advisories,omitempty"`
	Summary          string   `json:"summary,omitempty"`
}

// Headline is the short weather line used in answer summaries.
func (w *WeatherSummary) Headline() string {
	if w == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if v := strings.TrimSpace(w.TemperatureRange); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(w.Conditions); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " | ")
}

// WorkerResult is what a worker hands back to the orchestration loop. Only
// the payload field matching Kind is populated.
type WorkerResult struct {
	Kind    WorkerKind `json:"kind"`
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Count   int        `json:"count"`
	Query   string     `json:"query,omitempty"`

	Packages     []CatalogPackage `json:"packages,omitempty"`
	Rows         []DatabaseRow    `json:"rows,omitempty"`
	Destinations []WebDestination `json:"destinations,omitempty"`
	Weather      *WeatherSummary  `json:"weather,omitempty"`

	// NoPriorRecommendations is set by the weather worker when no other
	// source had produced a record at the time it ran.
	NoPriorRecommendations bool `json:"no_prior_recommendations,omitempty"`

	DurationMS int64 `json:"duration_ms,omitempty"`
}

// Failed builds a success=false result carrying err's message.
func Failed(kind WorkerKind, err error) WorkerResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return WorkerResult{Kind: kind, Success: false, Error: msg}
}

func (r *WorkerResult) Validate() error {
	if r == nil {
		return fmt.Errorf("worker result is nil")
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("invalid worker kind %q", r.Kind)
	}
	if r.Count < 0 {
		return fmt.Errorf("worker %s: negative count", r.Kind)
	}
	if !r.Success && strings.TrimSpace(r.Error) == "" {
		return fmt.Errorf("worker %s: failed result without error", r.Kind)
	}
	return nil
}
