package catalog

import (
	"sort"
	"strings"

	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// MaxPackages bounds how many packages the document worker returns.
const MaxPackages = 10

// SelectPackages orders packages by how well they match prefs and keeps
// at most limit. Matching only reorders; nothing is filtered out.
func SelectPackages(pkgs []statex.CatalogPackage, prefs statex.Preferences, limit int) []statex.CatalogPackage {
	if limit <= 0 {
		limit = MaxPackages
	}
	type scored struct {
		pkg   statex.CatalogPackage
		score int
	}
	list := make([]scored, len(pkgs))
	for i, p := range pkgs {
		list[i] = scored{pkg: p, score: matchScore(p, prefs)}
	}
	sort.SliceStable(list, func(a, b int) bool { return list[a].score > list[b].score })

	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]statex.CatalogPackage, len(list))
	for i, s := range list {
		out[i] = s.pkg
	}
	return out
}

func matchScore(p statex.CatalogPackage, prefs statex.Preferences) int {
	score := 0
	acts := strings.ToLower(strings.Join(p.Activities, " ") + " " + p.Description)
	for _, a := range prefs.Activities {
		if a != "" && strings.Contains(acts, strings.ToLower(a)) {
			score += 2
		}
	}
	place := strings.ToLower(p.Destination + " " + p.Country)
	for _, loc := range append(append([]string(nil), prefs.DestinationStates...), prefs.DestinationCountries...) {
		if l := strings.ToLower(strings.TrimSpace(loc)); l != "" && strings.Contains(place, l) {
			score += 3
		}
	}
	if m := strings.ToLower(prefs.TravelMonth); m != "" && strings.Contains(strings.ToLower(p.BestSeason), m) {
		score++
	}
	if prefs.HasBudget() && p.Price != nil && *p.Price <= float64(*prefs.BudgetMax) {
		score++
	}
	return score
}

// RetrievalQuery builds the text used to pull relevant chunks from a text
// catalog.
func RetrievalQuery(query string, prefs statex.Preferences) string {
	parts := []string{"travel packages", query}
	parts = append(parts, prefs.Activities...)
	parts = append(parts, prefs.DestinationStates...)
	parts = append(parts, prefs.DestinationCountries...)
	if prefs.TravelMonth != "" {
		parts = append(parts, prefs.TravelMonth)
	}
	return strings.Join(parts, " ")
}
