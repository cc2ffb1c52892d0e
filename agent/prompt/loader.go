package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
)

var (
	//go:embed template/preference.txt
	preferenceRaw string

	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/search.txt
	searchRaw string

	//go:embed template/weather.txt
	weatherRaw string

	//go:embed template/catalog.txt
	catalogRaw string
)

// PromptSet holds the system prompts of every oracle-backed component.
type PromptSet struct {
	Preference string
	Supervisor string
	Search     string
	Weather    string
	Catalog    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Preference: strings.TrimSpace(preferenceRaw),
		Supervisor: strings.TrimSpace(supervisorRaw),
		Search:     strings.TrimSpace(searchRaw),
		Weather:    strings.TrimSpace(weatherRaw),
		Catalog:    strings.TrimSpace(catalogRaw),
	}
}

// For returns the prompt used by role.
func (p PromptSet) For(role contractx.ModelRole) (string, error) {
	var out string
	switch role {
	case contractx.ModelRolePreference:
		out = p.Preference
	case contractx.ModelRoleSupervisor:
		out = p.Supervisor
	case contractx.ModelRoleSearch:
		out = p.Search
	case contractx.ModelRoleWeather:
		out = p.Weather
	case contractx.ModelRoleCatalog:
		out = p.Catalog
	}
	if out == "" {
		return "", fmt.Errorf("%w: role %q", contractx.ErrPromptMissing, role)
	}
	return out, nil
}
