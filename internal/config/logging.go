package config

// LoggingConfig mirrors the shape internal/logging reads from
// .browseragent/config.json.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`
	JSONFormat bool            `yaml:"json_format" json:"json_format,omitempty"`
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"`
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"`
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false (production mode).
// Returns true if debug_mode is true and category is enabled (or not specified).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}
