package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
)

func TestLoadPromptSetCoversEveryRole(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	for _, role := range []contractx.ModelRole{
		contractx.ModelRolePreference,
		contractx.ModelRoleSupervisor,
		contractx.ModelRoleSearch,
		contractx.ModelRoleWeather,
		contractx.ModelRoleCatalog,
	} {
		p, err := set.For(role)
		if err != nil {
			t.Fatalf("For(%s) error = %v", role, err)
		}
		if strings.TrimSpace(p) != p {
			t.Fatalf("For(%s) is not trimmed", role)
		}
	}
}

func TestPromptSetForMissing(t *testing.T) {
	t.Parallel()

	_, err := PromptSet{}.For(contractx.ModelRoleSearch)
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("For() error = %v, want ErrPromptMissing", err)
	}
}

func TestPromptsEscapeLiteralBraces(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	for name, p := range map[string]string{"supervisor": set.Supervisor, "search": set.Search} {
		if strings.Contains(strings.ReplaceAll(p, "{{", ""), "{\"") {
			t.Fatalf("%s prompt has an unescaped JSON brace", name)
		}
	}
}
