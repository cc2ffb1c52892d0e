package preference

import (
	"strings"

	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

type place struct {
	city    string
	state   string
	country string
}

// knownCities is a small, intentionally incomplete city lookup.
var knownCities = []place{
	{city: "paris", country: "France"},
	{city: "london", country: "United Kingdom"},
	{city: "tokyo", country: "Japan"},
	{city: "kyoto", country: "Japan"},
	{city: "new york", state: "New York", country: "United States"},
	{city: "dubai", country: "United Arab Emirates"},
	{city: "bali", state: "Bali", country: "Indonesia"},
	{city: "mumbai", state: "Maharashtra", country: "India"},
	{city: "bangkok", country: "Thailand"},
	{city: "singapore", country: "Singapore"},
	{city: "rome", country: "Italy"},
	{city: "barcelona", state: "Catalonia", country: "Spain"},
}

// InferLocations appends the state and country of cities named in text
// when the record does not already carry them.
func InferLocations(text string, p *statex.Preferences) {
	lower := " " + strings.ToLower(text) + " "
	for _, pl := range knownCities {
		if !containsWord(lower, pl.city) {
			continue
		}
		if pl.state != "" && !containsFold(p.DestinationStates, pl.state) {
			p.DestinationStates = append(p.DestinationStates, pl.state)
		}
		if pl.country != "" && !containsFold(p.DestinationCountries, pl.country) {
			p.DestinationCountries = append(p.DestinationCountries, pl.country)
		}
	}
}

func containsWord(padded, word string) bool {
	idx := strings.Index(padded, word)
	for idx >= 0 {
		before := padded[idx-1]
		end := idx + len(word)
		if !isLetter(before) && (end >= len(padded) || !isLetter(padded[end])) {
			return true
		}
		next := strings.Index(padded[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += next + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
