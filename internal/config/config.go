package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RomanUsername777/browseragent/internal/logging"
)

// Config holds everything needed to run one agent session: which model to
// call, how the browser is launched, step-loop bounds, and logging.
type Config struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	LLM     LLMConfig         `json:"llm"`
	Agent   AgentConfig       `json:"agent"`
	Browser BrowserExecConfig `json:"browser"`
	Logging LoggingConfig     `json:"logging"`
}

// DefaultConfig returns the baseline configuration a fresh workspace starts
// from before any .browseragent/config.json or env override is applied.
func DefaultConfig() *Config {
	return &Config{
		Name:    "browseragent",
		Version: "0.1.0",

		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			Timeout:  "120s",
			Vision:   true,
		},

		Agent: AgentConfig{
			MaxSteps:          100,
			MaxFailures:       3,
			MaxActionsPerStep: 10,
			StepTimeout:       "60s",
			FlashMode:         false,
			IncludeThinking:   true,
		},

		Browser: BrowserExecConfig{
			Headless:          true,
			ViewportWidth:     1280,
			ViewportHeight:    1024,
			NavigationTimeout: "30s",
			ActionTimeout:     "10s",
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Load reads JSON configuration from path, falling back to defaults (with
// env overrides applied) when the file doesn't exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.Boot("loading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)
	return cfg, nil
}

// Save writes the configuration back to path as JSON, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets deploy-time environment variables win over
// whatever is on disk, checked in provider priority order.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if baseURL := os.Getenv("BROWSERAGENT_LLM_BASE_URL"); baseURL != "" {
		c.LLM.BaseURL = baseURL
	}
	if v := os.Getenv("BROWSERAGENT_HEADLESS"); v == "false" {
		c.Browser.Headless = false
	}
	if v := os.Getenv("BROWSERAGENT_MAX_STEPS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.Agent.MaxSteps = n
		}
	}
}

func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("config: value must be positive: %s", s)
	}
	return n, nil
}

// GetLLMTimeout returns the configured LLM call timeout, or a safe default
// if the configured value doesn't parse.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetStepTimeout returns the configured per-step timeout.
func (c *Config) GetStepTimeout() time.Duration {
	d, err := time.ParseDuration(c.Agent.StepTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// ValidProviders lists the LLM providers this config accepts.
var ValidProviders = []string{"openai", "anthropic", "gemini"}

// Validate checks the configuration is complete enough to start a session.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config: LLM API key not set (set OPENAI_API_KEY, ANTHROPIC_API_KEY, or GEMINI_API_KEY)")
	}
	valid := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("config: invalid LLM provider %q (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("config: agent.max_steps must be positive")
	}
	return nil
}
