package state

// DestinationRecord is the normalized, source-tagged unit the aggregation
// pipeline deduplicates and ranks.
type DestinationRecord struct {
	Name       string   `json:"name"`
	Country    string   `json:"country,omitempty"`
	Cost       *float64 `json:"cost,omitempty"`
	Activities []string `json:"activities,omitempty"`
	BestSeason string   `json:"best_season,omitempty"`
	// BestTimeToVisit comes from the weather lookup, not the source.
	BestTimeToVisit string          `json:"best_time_to_visit,omitempty"`
	Description     string          `json:"description,omitempty"`
	SourceKind      WorkerKind      `json:"source"`
	SourceURL       string          `json:"source_url,omitempty"`
	Weather         *WeatherSummary `json:"weather,omitempty"`
	Score           float64         `json:"score"`
}

// FinalAnswer is returned to the caller of a run.
type FinalAnswer struct {
	Recommendations []DestinationRecord `json:"recommendations"`
	Summary         string              `json:"summary"`
	TotalFound      int                 `json:"totalFound"`
	DataSource      string              `json:"dataSource"`
	WeatherInfo     *WeatherSummary     `json:"weatherInfo,omitempty"`
	WeatherOnly     bool                `json:"weatherOnly"`
}
