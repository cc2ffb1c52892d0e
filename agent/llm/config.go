package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	openrouterx "github.com/tanpawarit/travel-orchestrator/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" split_words:"true"`

	PreferenceModel       string  `envconfig:"PREFERENCE_MODEL" split_words:"true"`
	SupervisorModel       string  `envconfig:"SUPERVISOR_MODEL" split_words:"true"`
	SearchModel           string  `envconfig:"SEARCH_MODEL" split_words:"true"`
	WeatherModel          string  `envconfig:"WEATHER_MODEL" split_words:"true"`
	CatalogModel          string  `envconfig:"CATALOG_MODEL" split_words:"true"`
	PreferenceTemperature float32 `envconfig:"PREFERENCE_TEMPERATURE" split_words:"true" default:"-1"`
	SupervisorTemperature float32 `envconfig:"SUPERVISOR_TEMPERATURE" split_words:"true" default:"-1"`
	SearchTemperature     float32 `envconfig:"SEARCH_TEMPERATURE" split_words:"true" default:"-1"`
	WeatherTemperature    float32 `envconfig:"WEATHER_TEMPERATURE" split_words:"true" default:"-1"`
	CatalogTemperature    float32 `envconfig:"CATALOG_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model and temperature for role, falling back
// to the defaults when no override is set.
func (c Config) OpenRouterFor(role contractx.ModelRole) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override, overrideTemp := c.roleOverride(role)
	if v := strings.TrimSpace(override); v != "" {
		modelName = v
	}
	if overrideTemp >= 0 {
		temp = overrideTemp
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

func (c Config) roleOverride(role contractx.ModelRole) (string, float32) {
	switch role {
	case contractx.ModelRolePreference:
		return c.PreferenceModel, c.PreferenceTemperature
	case contractx.ModelRoleSupervisor:
		return c.SupervisorModel, c.SupervisorTemperature
	case contractx.ModelRoleSearch:
		return c.SearchModel, c.SearchTemperature
	case contractx.ModelRoleWeather:
		return c.WeatherModel, c.WeatherTemperature
	case contractx.ModelRoleCatalog:
		return c.CatalogModel, c.CatalogTemperature
	default:
		return "", -1
	}
}
