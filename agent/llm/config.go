package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	openrouterx "github.com/fieldline/sales-copilot/pkg/openrouter"
)

// Role names one of the LLM collaborators.
type Role string

const (
	RoleSelector Role = "selector"
	RolePitch    Role = "pitch"
	RoleSummary  Role = "summary"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	SelectorModel       string  `envconfig:"SELECTOR_MODEL" split_words:"true"`
	PitchModel          string  `envconfig:"PITCH_MODEL" split_words:"true"`
	SummaryModel        string  `envconfig:"SUMMARY_MODEL" split_words:"true"`
	SelectorTemperature float32 `envconfig:"SELECTOR_TEMPERATURE" split_words:"true" default:"-1"`
	PitchTemperature    float32 `envconfig:"PITCH_TEMPERATURE" split_words:"true" default:"-1"`
	SummaryTemperature  float32 `envconfig:"SUMMARY_TEMPERATURE" split_words:"true" default:"-1"`
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

// OpenRouterFor resolves the effective model configuration for a role,
// falling back to the shared model and temperature.
func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case RoleSelector:
		if v := strings.TrimSpace(c.SelectorModel); v != "" {
			modelName = v
		}
		if c.SelectorTemperature >= 0 {
			temp = c.SelectorTemperature
		}
	case RolePitch:
		if v := strings.TrimSpace(c.PitchModel); v != "" {
			modelName = v
		}
		if c.PitchTemperature >= 0 {
			temp = c.PitchTemperature
		}
	case RoleSummary:
		if v := strings.TrimSpace(c.SummaryModel); v != "" {
			modelName = v
		}
		if c.SummaryTemperature >= 0 {
			temp = c.SummaryTemperature
		}
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
