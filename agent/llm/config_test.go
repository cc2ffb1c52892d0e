package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
)

func TestOpenRouterForAppliesRoleOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:                "key",
		Model:                 "base-model",
		Temperature:           0.2,
		MaxCompletionToken:    1000,
		SupervisorModel:       "fast-model",
		SupervisorTemperature: 0,
		SearchTemperature:     -1,
		WeatherTemperature:    -1,
	}

	sup := cfg.OpenRouterFor(contractx.ModelRoleSupervisor)
	if sup.Model != "fast-model" || sup.Temperature != 0 {
		t.Fatalf("supervisor config = %s/%v, want fast-model/0", sup.Model, sup.Temperature)
	}

	search := cfg.OpenRouterFor(contractx.ModelRoleSearch)
	if search.Model != "base-model" || search.Temperature != 0.2 {
		t.Fatalf("search config = %s/%v, want base-model/0.2", search.Model, search.Temperature)
	}
	if search.MaxCompletionToken == nil || *search.MaxCompletionToken != 1000 {
		t.Fatalf("MaxCompletionToken = %v, want 1000", search.MaxCompletionToken)
	}
}

func TestValidateRequiresKeyAndModel(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "m"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
	if err := (Config{APIKey: "k"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
}
