// Package settings provides the typed configuration of the research
// agent, loaded from environment variables and an optional .env file
// using cleanenv and validated with validator.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ErrValidation is returned when the settings structure fails validation.
var ErrValidation = errors.New("settings validation failed")

type (
	// Settings is the agent-wide configuration surface.
	Settings struct {
		LLM    LLMCfg    `yaml:"llm"`
		Search SearchCfg `yaml:"search"`
		Report ReportCfg `yaml:"report"`
	}

	// LLMCfg configures the chat-completion endpoint. Any
	// OpenAI-compatible provider works; only key, base URL, and model
	// name need to match.
	LLMCfg struct {
		APIKey  string `yaml:"api_key" env:"QUERY_ENGINE_API_KEY" validate:"required"`
		BaseURL string `yaml:"base_url" env:"QUERY_ENGINE_BASE_URL"`
		Model   string `yaml:"model" env:"QUERY_ENGINE_MODEL_NAME" validate:"required"`
	}

	// SearchCfg configures the Tavily web-search tool.
	SearchCfg struct {
		TavilyAPIKey     string `yaml:"tavily_api_key" env:"TAVILY_API_KEY" validate:"required"`
		TimeoutSeconds   int    `yaml:"timeout_seconds" env:"SEARCH_TIMEOUT" env-default:"240" validate:"min=1"`
		MaxResults       int    `yaml:"max_results" env:"MAX_SEARCH_RESULTS" env-default:"20" validate:"min=1"`
		ContentMaxLength int    `yaml:"content_max_length" env:"SEARCH_CONTENT_MAX_LENGTH" env-default:"20000" validate:"min=1"`
	}

	// ReportCfg configures report generation.
	ReportCfg struct {
		OutputDir        string `yaml:"output_dir" env:"OUTPUT_DIR" env-default:"reports"`
		SaveIntermediate bool   `yaml:"save_intermediate" env:"SAVE_INTERMEDIATE_STATES" env-default:"true"`
		MaxReflections   int    `yaml:"max_reflections" env:"MAX_REFLECTIONS" env-default:"2" validate:"min=0"`
		MaxParagraphs    int    `yaml:"max_paragraphs" env:"MAX_PARAGRAPHS" env-default:"5" validate:"min=1"`
	}
)

// Load reads settings from the environment, first loading the .env file
// in the working directory if one exists, and validates the result.
func Load() (*Settings, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return LoadEnv()
}

// LoadEnv reads settings from environment variables only and validates
// the result.
func LoadEnv() (*Settings, error) {
	var s Settings
	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := validator.New().Struct(&s); err != nil {
		return nil, formatValidationError(err)
	}

	return &s, nil
}

// formatValidationError converts validator.ValidationErrors into a
// human-readable error. Each field error is formatted as
// "FieldName=value (tag)" and joined with "; ".
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var msgs []string
		for _, ve := range validationErrs {
			msgs = append(msgs, fmt.Sprintf("%s=%v (%s)", ve.Field(), ve.Value(), ve.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
