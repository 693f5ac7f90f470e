package config

// AgentConfig bounds one run of the step loop against a task.
type AgentConfig struct {
	MaxSteps         int    `yaml:"max_steps" json:"max_steps"`
	MaxFailures      int    `yaml:"max_failures" json:"max_failures"`
	MaxActionsPerStep int   `yaml:"max_actions_per_step" json:"max_actions_per_step"`
	StepTimeout      string `yaml:"step_timeout" json:"step_timeout,omitempty"`
	FlashMode        bool   `yaml:"flash_mode" json:"flash_mode,omitempty"`
	IncludeThinking  bool   `yaml:"include_thinking" json:"include_thinking,omitempty"`
}

// BrowserExecConfig configures the browser session the agent drives.
type BrowserExecConfig struct {
	Headless          bool     `yaml:"headless" json:"headless"`
	ViewportWidth     int      `yaml:"viewport_width" json:"viewport_width,omitempty"`
	ViewportHeight    int      `yaml:"viewport_height" json:"viewport_height,omitempty"`
	NavigationTimeout string   `yaml:"navigation_timeout" json:"navigation_timeout,omitempty"`
	ActionTimeout     string   `yaml:"action_timeout" json:"action_timeout,omitempty"`
	AllowedDomains    []string `yaml:"allowed_domains" json:"allowed_domains,omitempty"`
	ProxyURL          string   `yaml:"proxy_url" json:"proxy_url,omitempty"`
}
