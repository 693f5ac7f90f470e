package config

// LLMConfig configures which chat model backs the agent loop.
type LLMConfig struct {
	Provider string `yaml:"provider" json:"provider"` // openai, anthropic, gemini
	APIKey   string `yaml:"api_key" json:"api_key,omitempty"`
	Model    string `yaml:"model" json:"model"`
	BaseURL  string `yaml:"base_url" json:"base_url,omitempty"`
	Timeout  string `yaml:"timeout" json:"timeout,omitempty"`
	Vision   bool   `yaml:"vision" json:"vision,omitempty"`
}
