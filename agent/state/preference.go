package state

import "strings"

// Preferences is the structured form of a free-text travel request. It is
// produced once per run and treated as a hint by every worker.
type Preferences struct {
	BudgetMax            *int     `json:"budget_max,omitempty"`
	Activities           []string `json:"activities,omitempty"`
	TravelMonth          string   `json:"travel_month,omitempty"`
	DestinationStates    []string `json:"destination_state,omitempty"`
	DestinationCountries []string `json:"destination_country,omitempty"`
	WeatherRequested     bool     `json:"weather"`
}

// PrimaryDestination returns the first requested state, else the first
// requested country, else "".
func (p *Preferences) PrimaryDestination() string {
	if p == nil {
		return ""
	}
	for _, s := range p.DestinationStates {
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	}
	for _, c := range p.DestinationCountries {
		if v := strings.TrimSpace(c); v != "" {
			return v
		}
	}
	return ""
}

func (p *Preferences) HasBudget() bool {
	return p != nil && p.BudgetMax != nil && *p.BudgetMax > 0
}

func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}
	out := *p
	if p.BudgetMax != nil {
		v := *p.BudgetMax
		out.BudgetMax = &v
	}
	out.Activities = append([]string(nil), p.Activities...)
	out.DestinationStates = append([]string(nil), p.DestinationStates...)
	out.DestinationCountries = append([]string(nil), p.DestinationCountries...)
	return &out
}

// NormalizeList trims entries, drops empties and removes case-insensitive
// duplicates while keeping the first spelling and the original order.
func NormalizeList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
