package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetState() {
	CloseAll()
	CloseAudit()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	cfg = loggingConfig{}
	auditLogger = nil
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".browseragent")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true, "agent": true, "browser": true, "actions": true,
				"message": true, "llm": true, "config": true, "performance": true
			}
		}
	}`
	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Error("expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategoryAgent, CategoryBrowser, CategoryActions,
		CategoryMessage, CategoryLLM, CategoryConfig, CategoryPerformance,
	}
	for _, cat := range categories {
		if !isCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("info message for %s", cat)
		logger.Debug("debug message for %s", cat)
		logger.Warn("warn message for %s", cat)
		logger.Error("error message for %s", cat)
	}

	Boot("convenience boot log")
	Agent("convenience agent log")
	Browser("convenience browser log")
	Actions("convenience actions log")
	LLM("convenience llm log")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".browseragent", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("no log file found for category: %s", cat)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_disabled")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".browseragent")
	os.MkdirAll(configDir, 0o755)
	configContent := `{"logging": {"level": "debug", "debug_mode": false, "categories": {"boot": true}}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0o644)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Error("expected debug mode to be disabled")
	}

	for _, cat := range []Category{CategoryBoot, CategoryAgent} {
		if isCategoryEnabled(cat) {
			t.Errorf("category %s should be disabled when debug_mode=false", cat)
		}
	}

	Boot("should not be logged")
	logger := Get(CategoryBoot)
	logger.Info("should not be logged")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".browseragent", "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("expected no log files in production mode, found %d", len(entries))
		}
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_category")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".browseragent")
	os.MkdirAll(configDir, 0o755)
	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {"boot": true, "actions": true, "browser": false, "message": false}
		}
	}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0o644)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	if !isCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if !isCategoryEnabled(CategoryActions) {
		t.Error("actions should be enabled")
	}
	if isCategoryEnabled(CategoryBrowser) {
		t.Error("browser should be disabled")
	}
	if isCategoryEnabled(CategoryMessage) {
		t.Error("message should be disabled")
	}
	if !isCategoryEnabled(CategoryLLM) {
		t.Error("llm (not in config) should default to enabled")
	}

	Boot("should be logged")
	Actions("should be logged")
	Browser("should not be logged")

	CloseAll()
	CloseAudit()

	logsPath := filepath.Join(tempDir, ".browseragent", "logs")
	entries, _ := os.ReadDir(logsPath)

	hasBootLog, hasActionsLog, hasBrowserLog := false, false, false
	for _, e := range entries {
		name := e.Name()
		if strings.Contains(name, "boot") {
			hasBootLog = true
		}
		if strings.Contains(name, "actions") {
			hasActionsLog = true
		}
		if strings.Contains(name, "browser") {
			hasBrowserLog = true
		}
	}
	if !hasBootLog {
		t.Error("expected boot log file")
	}
	if !hasActionsLog {
		t.Error("expected actions log file")
	}
	if hasBrowserLog {
		t.Error("should not have browser log file (disabled)")
	}
}

func TestAuditLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_audit")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".browseragent")
	os.MkdirAll(configDir, 0o755)
	configContent := `{"logging": {"level": "debug", "debug_mode": true}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0o644)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	if err := InitAudit(); err != nil {
		t.Fatalf("failed to init audit: %v", err)
	}

	a := AuditWithSession("sess-1")
	a.TaskStart("log into example.com")
	a.StepStart(1)
	a.ActionExecute(1, "click", "#login", 120, true, "")
	a.LLMCall(1, "gpt-4o", 500, 80, 900, true, "")
	a.StepEnd(1, 1000, true)
	a.TaskEnd(1, 1200, true)

	CloseAudit()
	CloseAll()

	logsPath := filepath.Join(tempDir, ".browseragent", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("failed to read logs dir: %v", err)
	}
	found := false
	for _, e := range entries {
		if strings.Contains(e.Name(), "audit.log") {
			found = true
			content, _ := os.ReadFile(filepath.Join(logsPath, e.Name()))
			if !strings.Contains(string(content), "task_start") {
				t.Error("expected task_start event in audit log")
			}
		}
	}
	if !found {
		t.Error("expected an audit log file")
	}
}
