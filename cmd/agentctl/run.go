package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RomanUsername777/browseragent/internal/actions"
	"github.com/RomanUsername777/browseragent/internal/agent"
	"github.com/RomanUsername777/browseragent/internal/browser"
	"github.com/RomanUsername777/browseragent/internal/config"
	"github.com/RomanUsername777/browseragent/internal/fsys"
	"github.com/RomanUsername777/browseragent/internal/llm"
	"github.com/RomanUsername777/browseragent/internal/logging"
	"github.com/RomanUsername777/browseragent/internal/message"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// RunRecord is the snapshot written to the workspace after each run, for
// the history and tabs subcommands to inspect without re-running the task.
type RunRecord struct {
	Task      string
	SessionID string
	Steps     int
	Success   bool
	Tabs      []state.TabInfo
	StartedAt time.Time
	EndedAt   time.Time
}

func newRunCmd() *cobra.Command {
	var headless bool
	var maxSteps int
	var flashMode bool
	var noVision bool

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Run a natural-language task against a real browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]

			if err := logging.Initialize(workspace); err != nil {
				return fmt.Errorf("agentctl: initialize logging: %w", err)
			}
			defer logging.CloseAll()
			if err := logging.InitAudit(); err != nil {
				return fmt.Errorf("agentctl: initialize audit log: %w", err)
			}
			defer logging.CloseAudit()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("agentctl: load config: %w", err)
			}
			cfg.Browser.Headless = cfg.Browser.Headless && headless
			if maxSteps > 0 {
				cfg.Agent.MaxSteps = maxSteps
			}
			cfg.Agent.FlashMode = cfg.Agent.FlashMode || flashMode
			if noVision {
				cfg.LLM.Vision = false
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("agentctl: %w", err)
			}

			sessionID := uuid.NewString()
			logging.Boot("starting run %s: %q", sessionID, task)

			ctx := cmd.Context()

			profile := browser.Profile{
				Headless:          cfg.Browser.Headless,
				ViewportWidth:     cfg.Browser.ViewportWidth,
				ViewportHeight:    cfg.Browser.ViewportHeight,
				DeviceScaleFactor: 1,
				AllowedDomains:    cfg.Browser.AllowedDomains,
				ProxyURL:          cfg.Browser.ProxyURL,
				NavigationTimeout: parseDurationOr(cfg.Browser.NavigationTimeout, 30*time.Second),
				ActionTimeout:     parseDurationOr(cfg.Browser.ActionTimeout, 10*time.Second),
			}
			session, err := browser.NewSession(ctx, profile)
			if err != nil {
				return fmt.Errorf("agentctl: launch browser: %w", err)
			}
			defer session.Close()

			fs, err := fsys.New(workspace)
			if err != nil {
				return fmt.Errorf("agentctl: set up workspace: %w", err)
			}

			registry := actions.NewRegistry()
			if err := actions.RegisterCanonical(registry); err != nil {
				return fmt.Errorf("agentctl: register actions: %w", err)
			}

			model := llm.NewOpenAIAdapter(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)

			dispatcher := actions.NewDispatcher(registry, actions.Deps{
				BrowserSession:     session,
				FileSystem:         fs,
				PageExtractionLLM:  extractorAdapter{model: model},
				AvailableFilePaths: fs.ListExtractedFiles(),
			})

			msgCfg := message.DefaultConfig()
			msgCfg.MaxActionsPerStep = cfg.Agent.MaxActionsPerStep
			msgCfg.IncludeThinking = cfg.Agent.IncludeThinking
			msgCfg.FlashMode = cfg.Agent.FlashMode
			msgCfg.Vision = cfg.LLM.Vision
			msgs := message.NewManager(msgCfg)

			mode := state.ModeFull
			switch {
			case cfg.Agent.FlashMode:
				mode = state.ModeFlash
			case !cfg.Agent.IncludeThinking:
				mode = state.ModeNoThinking
			}

			orc := agent.New(agent.Config{
				MaxSteps:          cfg.Agent.MaxSteps,
				MaxFailures:       cfg.Agent.MaxFailures,
				MaxActionsPerStep: cfg.Agent.MaxActionsPerStep,
				StepTimeout:       cfg.GetStepTimeout(),
				Mode:              mode,
				Vision:            cfg.LLM.Vision,
			}, registry, dispatcher, session, fs, model, msgs, task, state.SensitiveData{}, sessionID)

			runStart := time.Now()
			history, runErr := orc.Run(ctx)

			record := RunRecord{
				Task:      task,
				SessionID: sessionID,
				Steps:     len(history.Items),
				Success:   history.IsSuccessful(),
				StartedAt: runStart,
				EndedAt:   time.Now(),
			}
			if len(history.Items) > 0 {
				record.Tabs = history.Items[len(history.Items)-1].State.Tabs
			}
			if err := fs.SaveState(record); err != nil {
				logging.Boot("failed to persist run record: %v", err)
			}

			if runErr != nil {
				return fmt.Errorf("agentctl: run ended with an error: %w", runErr)
			}
			fmt.Printf("done after %d steps (success=%v)\n", record.Steps, record.Success)
			return nil
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", true, "launch the browser without a visible window")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "override the configured step budget (0 keeps the config value)")
	cmd.Flags().BoolVar(&flashMode, "flash", false, "skip thinking/evaluation/goal fields for faster, cheaper steps")
	cmd.Flags().BoolVar(&noVision, "no-vision", false, "omit screenshots from the prompt")
	return cmd
}

// extractorAdapter lets the chat model double as the extract action's
// page-summarization LLM, asking it a plain question with no output
// schema and taking the completion text as the answer.
type extractorAdapter struct {
	model llm.ChatModel
}

func (e extractorAdapter) Extract(ctx context.Context, query, pageText string) (string, error) {
	msgs := []message.Message{
		{Role: message.RoleSystem, Text: "Extract the requested information from the page text. Reply with the answer only."},
		{Role: message.RoleUser, Text: fmt.Sprintf("Query: %s\n\nPage text:\n%s", query, pageText)},
	}
	resp, err := e.model.Invoke(ctx, msgs, nil)
	if err != nil {
		return "", err
	}
	return resp.Completion, nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
