// Package aggregate turns the worker results of a run into the final answer.
package aggregate

import (
	"fmt"
	"strconv"
	"strings"

	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

const (
	// MaxRecommendations bounds the recommendation list of a final answer.
	MaxRecommendations = 10

	noRecommendations = "No recommendations found"
	noSources         = "none"
)

// Dedup keeps the first record for each case-insensitive, trimmed name.
func Dedup(records []statex.DestinationRecord) []statex.DestinationRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]statex.DestinationRecord, 0, len(records))
	for _, r := range records {
		key := strings.ToLower(strings.TrimSpace(r.Name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// MergeWeather attaches summary to every record whose name or country
// matches its destination label and records its best time to visit. The
// record's own best season is left for ranking.
func MergeWeather(records []statex.DestinationRecord, summary *statex.WeatherSummary) []statex.DestinationRecord {
	out := make([]statex.DestinationRecord, len(records))
	copy(out, records)
	if summary == nil {
		return out
	}
	label := strings.ToLower(strings.TrimSpace(summary.DestinationLabel))
	if label == "" {
		return out
	}
	for i := range out {
		if !matchesLabel(out[i].Name, label) && !matchesLabel(out[i].Country, label) {
			continue
		}
		w := *summary
		out[i].Weather = &w
		out[i].BestTimeToVisit = strings.TrimSpace(summary.BestTimeToVisit)
	}
	return out
}

func matchesLabel(field, label string) bool {
	f := strings.ToLower(strings.TrimSpace(field))
	if f == "" {
		return false
	}
	return strings.Contains(f, label) || strings.Contains(label, f)
}

// Finalize builds the final answer from whatever st holds. It never fails:
// with no usable source it reports an empty answer.
func Finalize(st *statex.SharedState) statex.FinalAnswer {
	var prefs statex.Preferences
	if st.Preferences != nil {
		prefs = *st.Preferences
	}
	weather := successfulWeather(st)

	normalized := Normalize(st)
	records := Dedup(normalized)

	if len(records) == 0 {
		if weather != nil {
			w := *weather
			return statex.FinalAnswer{
				Recommendations: []statex.DestinationRecord{},
				Summary:         weatherOnlySummary(&w),
				DataSource:      string(statex.WorkerWeather),
				WeatherInfo:     &w,
				WeatherOnly:     true,
			}
		}
		return statex.FinalAnswer{
			Recommendations: []statex.DestinationRecord{},
			Summary:         noRecommendations,
			DataSource:      noSources,
		}
	}

	records = Rank(MergeWeather(records, weather), prefs)
	total := len(records)
	if len(records) > MaxRecommendations {
		records = records[:MaxRecommendations]
	}

	answer := statex.FinalAnswer{
		Recommendations: records,
		Summary:         summarize(records[0], weather),
		TotalFound:      total,
		DataSource:      dataSource(normalized, weather),
	}
	if weather != nil {
		w := *weather
		answer.WeatherInfo = &w
	}
	return answer
}

func successfulWeather(st *statex.SharedState) *statex.WeatherSummary {
	r := st.Result(statex.WorkerWeather)
	if r == nil || !r.Success || r.Weather == nil {
		return nil
	}
	return r.Weather
}

func summarize(top statex.DestinationRecord, weather *statex.WeatherSummary) string {
	parts := []string{
		"Top destination: " + top.Name,
		"Cost: " + formatCost(top.Cost),
	}
	if h := weather.Headline(); h != "" {
		parts = append(parts, h)
	}
	return strings.Join(parts, " | ")
}

func weatherOnlySummary(w *statex.WeatherSummary) string {
	h := w.Headline()
	if h == "" {
		h = strings.TrimSpace(w.Summary)
	}
	if h == "" {
		return fmt.Sprintf("Weather for %s", w.DestinationLabel)
	}
	return fmt.Sprintf("Weather for %s: %s", w.DestinationLabel, h)
}

func formatCost(c *float64) string {
	if c == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*c, 'f', -1, 64)
}

// dataSource lists the sources that contributed at least one record, in
// source order, with weather last.
func dataSource(records []statex.DestinationRecord, weather *statex.WeatherSummary) string {
	contributed := make(map[statex.WorkerKind]bool, len(sourceOrder))
	for _, r := range records {
		contributed[r.SourceKind] = true
	}
	var names []string
	for _, k := range sourceOrder {
		if contributed[k] {
			names = append(names, string(k))
		}
	}
	if weather != nil {
		names = append(names, string(statex.WorkerWeather))
	}
	if len(names) == 0 {
		return noSources
	}
	return strings.Join(names, "/")
}
