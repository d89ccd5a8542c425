package ai

// DefaultMaxInputTokens is assumed for models whose context size the endpoint does not report.
const DefaultMaxInputTokens = 8192

// Config points the provider at an OpenAI compatible endpoint.
type Config struct {
	BaseURL string `json:"baseUrl,omitempty" env:"BASE_URL"`
	APIKey  string `json:"apiKey,omitempty" env:"API_KEY"`

	// Model is used when a call does not name one, as "vendor:family" or a bare family
	Model string `json:"model,omitempty" env:"MODEL"`

	// MaxInputTokens bounds how much of a diff is sent. Defaults to DefaultMaxInputTokens
	MaxInputTokens int `json:"maxInputTokens,omitempty" env:"MAX_INPUT_TOKENS"`

	Prompts Prompts `json:"prompts,omitempty" envPrefix:"PROMPT_"`
}

// IsConfigured reports whether enough is set to talk to the endpoint.
func (c *Config) IsConfigured() bool {
	return c != nil && c.BaseURL != "" && c.APIKey != ""
}

func (c *Config) maxInputTokens() int {
	if c.MaxInputTokens > 0 {
		return c.MaxInputTokens
	}
	return DefaultMaxInputTokens
}
