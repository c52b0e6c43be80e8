package main

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
	"github.com/saahil/toolcalling/pkg/llmfactory"
)

// defaultSystemPrompt instructs the model on tool selection.
const defaultSystemPrompt = `You are a helpful assistant. You can use the following tools: web_search for internet searches, wikipedia_search for finding information from Wikipedia, sql_query for querying a database,
weather to get current weather data, and translate_text for translation, or not use any of these tools at all.
Determine whether a tool should be used or not based on the query.
When dealing with weather reports, display and filter the information the user specifically wants.`

// appConfig is the top-level configuration of the chat CLI.
type appConfig struct {
	// LLM configures the model providers.
	LLM llmfactory.Config `json:"llm" yaml:"llm"`

	// Assistant configures the primary agent.
	Assistant assistantConfig `json:"assistant" yaml:"assistant"`

	// Tools configures the tool adapters. A tool without the required
	// settings is left out of the registry.
	Tools toolsConfig `json:"tools" yaml:"tools"`

	// Store configures the conversation history store.
	Store storeConfig `json:"store" yaml:"store"`
}

type assistantConfig struct {
	// SystemPrompt overrides the default agent instructions.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	// Model is the preferred model name.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// FilterModel is the preferred model name for the response filter.
	FilterModel string  `json:"filter_model,omitempty" yaml:"filter_model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

type toolsConfig struct {
	WebSearch websearchConfig `json:"web_search" yaml:"web_search"`
	Wikipedia wikipediaConfig `json:"wikipedia" yaml:"wikipedia"`
	Weather   weatherConfig   `json:"weather" yaml:"weather"`
	Translate translateConfig `json:"translate" yaml:"translate"`
	SQL       sqlConfig       `json:"sql" yaml:"sql"`
}

type websearchConfig struct {
	// APIKey for the Tavily search API, supports ${ENV} expansion.
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

type wikipediaConfig struct {
	// Enabled turns the Wikipedia tool on. It needs no credentials.
	Enabled bool   `json:"enabled" yaml:"enabled"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

type weatherConfig struct {
	// APIKey for OpenWeatherMap, supports ${ENV} expansion.
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

type translateConfig struct {
	// BaseURL of a LibreTranslate-compatible endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

type sqlConfig struct {
	// Driver is the database/sql driver name, e.g. postgres.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty" validate:"omitempty,oneof=postgres"`
	// DataSource is the connection string, supports ${ENV} expansion.
	DataSource string `json:"data_source,omitempty" yaml:"data_source,omitempty"`
}

type storeConfig struct {
	// Type selects the history store backend.
	Type string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=memory redis"`
	// Window is the number of history messages sent to the model.
	Window int         `json:"window,omitempty" yaml:"window,omitempty" validate:"omitempty,min=1"`
	Redis  redisConfig `json:"redis" yaml:"redis"`
}

type redisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
	// Prefix namespaces the conversation keys.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func loadAppConfig(file string) (*appConfig, error) {
	cfg := new(appConfig)
	if file == "" {
		return nil, errors.New("configuration file is required")
	}
	if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
		return nil, errors.WithMessagef(err, "failed to load configuration: %s", file)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.WithMessagef(err, "invalid configuration: %s", file)
	}
	if cfg.Assistant.SystemPrompt == "" {
		cfg.Assistant.SystemPrompt = defaultSystemPrompt
	}
	return cfg, nil
}
