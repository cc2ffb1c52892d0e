package preference

import (
	"context"
	"fmt"
	"math"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	oraclex "github.com/tanpawarit/travel-orchestrator/agent/oracle"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// WeatherKeywords force WeatherRequested regardless of what the model says.
var WeatherKeywords = []string{
	"weather", "climate", "temperature", "forecast", "rainfall",
	"sunny", "rainy", "humid", "conditions",
}

var _ contractx.PreferenceExtractor = (*Extractor)(nil)

type Extractor struct {
	oracle *oraclex.Structured[llmPreferences]
}

type llmPreferences struct {
	BudgetMax            *float64 `json:"budget_max"`
	Activities           []string `json:"activities"`
	TravelMonth          *string  `json:"travel_month"`
	DestinationStates    []string `json:"destination_state"`
	DestinationCountries []string `json:"destination_country"`
	Weather              bool     `json:"weather"`
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Extractor, error) {
	o, err := oraclex.NewStructured[llmPreferences](ctx, chatModel, systemPrompt, "preference.extract")
	if err != nil {
		return nil, err
	}
	return &Extractor{oracle: o}, nil
}

// Extract never fails: malformed or invalid model output yields the empty
// record. The weather keyword check and location inference run last.
func (e *Extractor) Extract(ctx context.Context, text string) statex.Preferences {
	weatherHit := MentionsWeather(text)

	var prefs statex.Preferences
	out, err := e.oracle.Ask(ctx, map[string]string{"text": text})
	if err != nil {
		log.Warn().Err(err).Msg("preference extraction degraded to defaults")
	} else if p, verr := validate(out); verr != nil {
		log.Warn().Err(verr).Msg("preference extraction rejected")
	} else {
		prefs = p
	}

	if weatherHit {
		prefs.WeatherRequested = true
	}
	InferLocations(text, &prefs)
	return prefs
}

func validate(out llmPreferences) (statex.Preferences, error) {
	var p statex.Preferences
	if out.BudgetMax != nil {
		b := *out.BudgetMax
		if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) || b > math.MaxInt32 {
			return statex.Preferences{}, fmt.Errorf("%w: budget_max=%v", contractx.ErrSchemaViolation, b)
		}
		v := int(math.Round(b))
		p.BudgetMax = &v
	}
	if out.TravelMonth != nil {
		p.TravelMonth = strings.TrimSpace(*out.TravelMonth)
	}
	p.Activities = lowerAll(statex.NormalizeList(out.Activities))
	p.DestinationStates = statex.NormalizeList(out.DestinationStates)
	p.DestinationCountries = statex.NormalizeList(out.DestinationCountries)
	p.WeatherRequested = out.Weather
	return p, nil
}

// MentionsWeather reports whether text contains any weather keyword,
// case-insensitively.
func MentionsWeather(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range WeatherKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	for i, v := range in {
		in[i] = strings.ToLower(v)
	}
	return in
}
