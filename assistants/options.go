package assistants

import (
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/store"
)

const (
	// DefaultMaxContentSize is the default limit on the byte size of the
	// message history sent to the model.
	DefaultMaxContentSize = 256 * 1024
)

// Option is a function that can be used to modify the behavior of the Agent Config.
type Option func(*Config)

// Config carries the per-assistant and per-call settings.
type Config struct {
	// Model is the model to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling in an LLM call, between 0 and 1.
	Temperature    float64
	temperatureSet bool

	// MaxLength limits the byte size of the message history sent to the model.
	MaxLength int

	// CallbackHandler receives lifecycle events.
	CallbackHandler Callback

	// Store provides prior conversation history to the model.
	Store store.MessageStore

	// SkipMessageHistory disables reading history from the Store.
	SkipMessageHistory bool
}

func NewConfig(opts ...Option) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// GetCallOptions converts the config into LLM call options.
func (c *Config) GetCallOptions(extra ...llms.CallOption) []llms.CallOption {
	var callOpts []llms.CallOption
	if c.modelSet {
		callOpts = append(callOpts, llms.WithModel(c.Model))
	}
	if c.maxTokensSet {
		callOpts = append(callOpts, llms.WithMaxTokens(c.MaxTokens))
	}
	if c.temperatureSet {
		callOpts = append(callOpts, llms.WithTemperature(c.Temperature))
	}
	return append(callOpts, extra...)
}

// WithModel is an option that sets the model name.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option that sets the max tokens to generate.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option that sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithMaxLength is an option that limits the history byte size.
func WithMaxLength(maxLength int) Option {
	return func(o *Config) {
		o.MaxLength = maxLength
	}
}

// WithCallback is an option that sets the callback handler.
func WithCallback(callback Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callback
	}
}

// WithMessageStore is an option that sets the history store.
func WithMessageStore(st store.MessageStore) Option {
	return func(o *Config) {
		o.Store = st
	}
}

// WithSkipMessageHistory is an option that disables history reading.
func WithSkipMessageHistory(skip bool) Option {
	return func(o *Config) {
		o.SkipMessageHistory = skip
	}
}
