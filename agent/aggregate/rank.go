package aggregate

import (
	"sort"
	"strings"

	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// Score weights.
const (
	baseDocument = 100.0
	baseDatabase = 80.0
	baseWeb      = 25.0

	inBudgetBonus     = 20.0
	inBudgetRatio     = 10.0
	overBudgetPenalty = 20.0
	activityBonus     = 5.0
	monthBonus        = 15.0
	weatherBonus      = 10.0
)

func baseScore(kind statex.WorkerKind) float64 {
	switch kind {
	case statex.WorkerDocument:
		return baseDocument
	case statex.WorkerDatabase:
		return baseDatabase
	case statex.WorkerWeb:
		return baseWeb
	default:
		return 0
	}
}

// Score is a pure function of the record and the preferences. The overage
// penalty has no floor.
func Score(rec statex.DestinationRecord, prefs statex.Preferences) float64 {
	score := baseScore(rec.SourceKind)

	if rec.Cost != nil && prefs.HasBudget() {
		cost, budget := *rec.Cost, float64(*prefs.BudgetMax)
		if cost <= budget {
			score += inBudgetBonus + (cost/budget)*inBudgetRatio
		} else {
			score -= ((cost - budget) / budget) * overBudgetPenalty
		}
	}

	if len(rec.Activities) > 0 {
		text := strings.ToLower(strings.Join(rec.Activities, " "))
		for _, a := range prefs.Activities {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" && strings.Contains(text, a) {
				score += activityBonus
			}
		}
	}

	if m := strings.ToLower(strings.TrimSpace(prefs.TravelMonth)); m != "" &&
		strings.Contains(strings.ToLower(rec.BestSeason), m) {
		score += monthBonus
	}

	if rec.Weather != nil {
		score += weatherBonus
	}
	return score
}

// Rank scores every record and returns them in descending score order.
// Equal scores keep their input order.
func Rank(records []statex.DestinationRecord, prefs statex.Preferences) []statex.DestinationRecord {
	out := make([]statex.DestinationRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].Score = Score(out[i], prefs)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}
