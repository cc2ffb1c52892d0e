package aggregate

import (
	"strings"

	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// sourceOrder is the concatenation order of destination-producing sources.
// Dedup keeps the first occurrence, so earlier sources win name collisions.
var sourceOrder = []statex.WorkerKind{statex.WorkerDocument, statex.WorkerDatabase, statex.WorkerWeb}

// Normalize maps every successful, non-empty worker result in st into
// destination records, in source order. Records without a usable name are
// skipped.
func Normalize(st *statex.SharedState) []statex.DestinationRecord {
	var out []statex.DestinationRecord
	for _, kind := range sourceOrder {
		out = append(out, normalizeResult(st.Result(kind))...)
	}
	return out
}

func normalizeResult(r *statex.WorkerResult) []statex.DestinationRecord {
	if r == nil || !r.Success {
		return nil
	}
	switch r.Kind {
	case statex.WorkerDocument:
		return fromPackages(r.Packages)
	case statex.WorkerDatabase:
		return fromRows(r.Rows)
	case statex.WorkerWeb:
		return fromWeb(r.Destinations)
	default:
		return nil
	}
}

func fromPackages(pkgs []statex.CatalogPackage) []statex.DestinationRecord {
	out := make([]statex.DestinationRecord, 0, len(pkgs))
	for _, p := range pkgs {
		name := strings.TrimSpace(p.Destination)
		if name == "" {
			continue
		}
		desc := strings.TrimSpace(p.Description)
		if desc == "" && p.Duration != "" {
			desc = "Package duration: " + strings.TrimSpace(p.Duration)
		}
		out = append(out, statex.DestinationRecord{
			Name:        name,
			Country:     strings.TrimSpace(p.Country),
			Cost:        copyFloat(p.Price),
			Activities:  statex.NormalizeList(p.Activities),
			BestSeason:  strings.TrimSpace(p.BestSeason),
			Description: desc,
			SourceKind:  statex.WorkerDocument,
		})
	}
	return out
}

// fromRows names a database record after its first state, else its first
// country. The row's budget ceiling stands in for cost.
func fromRows(rows []statex.DatabaseRow) []statex.DestinationRecord {
	out := make([]statex.DestinationRecord, 0, len(rows))
	for _, row := range rows {
		name := firstNonEmpty(row.DestinationStates)
		if name == "" {
			name = firstNonEmpty(row.DestinationCountries)
		}
		if name == "" {
			continue
		}
		acts := statex.NormalizeList(row.Activities)
		var desc string
		if len(acts) > 0 {
			desc = "Features " + strings.Join(acts, ", ")
		}
		out = append(out, statex.DestinationRecord{
			Name:        name,
			Country:     firstNonEmpty(row.DestinationCountries),
			Cost:        copyFloat(row.BudgetMax),
			Activities:  acts,
			BestSeason:  strings.TrimSpace(row.TravelMonth),
			Description: desc,
			SourceKind:  statex.WorkerDatabase,
		})
	}
	return out
}

func fromWeb(dests []statex.WebDestination) []statex.DestinationRecord {
	out := make([]statex.DestinationRecord, 0, len(dests))
	for _, d := range dests {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		out = append(out, statex.DestinationRecord{
			Name:        name,
			Country:     strings.TrimSpace(d.Country),
			Cost:        copyFloat(d.EstimatedCost),
			Activities:  statex.NormalizeList(d.Activities),
			BestSeason:  strings.TrimSpace(d.BestSeason),
			Description: strings.TrimSpace(d.Description),
			SourceKind:  statex.WorkerWeb,
			SourceURL:   strings.TrimSpace(d.SourceURL),
		})
	}
	return out
}

func firstNonEmpty(list []string) string {
	for _, s := range list {
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	}
	return ""
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
