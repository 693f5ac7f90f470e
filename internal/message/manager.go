package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/RomanUsername777/browseragent/internal/actions"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// FileSystemInfo is the small slice of the FileSystem collaborator the
// state message needs; kept separate from actions.FileSystem so this
// package doesn't import the browser/dispatch stack just to render text.
type FileSystemInfo struct {
	Description  string
	TodoContents string
}

// StepInput is everything ComposeMessages needs for one step's state
// message. Constructed fresh by the orchestrator every step.
type StepInput struct {
	Task             string
	FollowUpTask     string
	FileSystem       FileSystemInfo
	SensitiveDataKeys []string // names only, never values
	Step             StepInfo

	Browser *state.BrowserStateSummary
	DOMText string // rendered by internal/dom.Serialize

	// ReadState holds content from the previous extract action that must
	// appear exactly once in the prompt.
	ReadState string

	AvailableActions []*actions.Action
	UnavailableNote  string

	Screenshots []ImagePart // most recent last
}

// Manager owns the cached system message, the append-only history, and
// the URL shortener, and renders the three-part rolling prompt on demand.
type Manager struct {
	cfg Config

	systemMessage Message
	history       []state.HistoryItem
	shortener     *Shortener
	counter       *TokenCounter

	contextNotes []string
}

// NewManager builds a Manager with its system message already rendered
// and cached; it never changes for the lifetime of a run unless the
// config's overrides change.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		cfg:       cfg,
		shortener: NewShortener(cfg.URLShortenLimit),
		counter:   NewTokenCounter(),
	}
	m.systemMessage = Message{Role: RoleSystem, Text: renderSystemPrompt(cfg)}
	return m
}

func renderSystemPrompt(cfg Config) string {
	if cfg.SystemPromptOverride != "" {
		text := cfg.SystemPromptOverride
		if cfg.SystemPromptExtension != "" {
			text += "\n\n" + cfg.SystemPromptExtension
		}
		return text
	}

	var b strings.Builder
	b.WriteString("You are a browser automation agent. You control a real browser one step at a time.\n")
	fmt.Fprintf(&b, "You may take at most %d actions per step.\n", cfg.MaxActionsPerStep)

	switch {
	case cfg.FlashMode:
		b.WriteString("Respond with the next action only; omit memory, evaluation, and goal fields.\n")
	case cfg.IncludeThinking:
		b.WriteString("Think step by step before acting: evaluate the previous goal, update your memory, state the next goal, then choose actions.\n")
	default:
		b.WriteString("State your next goal and choose actions; no extended reasoning field is expected.\n")
	}

	if cfg.Vision {
		b.WriteString("Screenshots of the current page are provided; the most recent one reflects the current state.\n")
	}

	if cfg.SystemPromptExtension != "" {
		b.WriteString("\n")
		b.WriteString(cfg.SystemPromptExtension)
	}
	return b.String()
}

// AppendHistory records one step's rendering in the rolling history.
func (m *Manager) AppendHistory(item state.HistoryItem) {
	m.history = append(m.history, item)
}

// AddNewTask implements the add-new-task semantics: the current task is
// wrapped as the initial request, the new instruction becomes the
// follow-up, and a synthetic history item records the event.
func (m *Manager) AddNewTask(currentTask, followUp string, stepNumber int) string {
	m.AppendHistory(state.HistoryItem{
		StepNumber:    stepNumber,
		SystemMessage: fmt.Sprintf("User added a follow-up task: %s", followUp),
	})
	return followUp
}

// AddContextNote queues a one-shot context message (timeout warning,
// final-step warning, retry clarification) cleared after the next
// ComposeMessages call.
func (m *Manager) AddContextNote(note string) {
	m.contextNotes = append(m.contextNotes, note)
}

// ComposeMessages renders the full rolling prompt: cached system message,
// freshly built state message, then any queued context notes (which are
// cleared as a side effect, matching the "this step only" lifetime).
func (m *Manager) ComposeMessages(in StepInput) []Message {
	msgs := []Message{m.systemMessage}

	stateText := m.renderStateMessage(in)
	stateMsg := Message{Role: RoleUser, Text: m.shortener.Shorten(stateText)}
	if m.cfg.Vision && len(in.Screenshots) > 0 {
		stateMsg.Images = in.Screenshots
	}
	msgs = append(msgs, stateMsg)

	for _, note := range m.contextNotes {
		msgs = append(msgs, Message{Role: RoleUser, Text: note})
	}
	m.contextNotes = nil

	return msgs
}

// RestoreStructuredOutput reverses any URL shortening this manager applied
// when composing the most recent prompt, walking the decoded structured
// output recursively.
func (m *Manager) RestoreStructuredOutput(v any) any {
	return m.shortener.Restore(v)
}

func (m *Manager) renderStateMessage(in StepInput) string {
	var b strings.Builder

	b.WriteString(RenderAgentHistory(m.history, m.cfg.MaxHistoryItems))
	b.WriteString("\n")

	b.WriteString(renderAgentState(in))
	b.WriteString("\n")

	b.WriteString(renderBrowserState(in))

	if in.ReadState != "" {
		fmt.Fprintf(&b, "\n<read_state>\n%s\n</read_state>", in.ReadState)
	}

	if len(in.AvailableActions) > 0 {
		b.WriteString("\n<page_specific_actions>\n")
		for _, a := range in.AvailableActions {
			if len(a.Spec.AllowedDomainPatterns) == 0 {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", a.Spec.Name, a.Spec.Description)
		}
		b.WriteString("</page_specific_actions>")
	}

	if in.UnavailableNote != "" {
		fmt.Fprintf(&b, "\n<unavailable_skills_info>\n%s\n</unavailable_skills_info>", in.UnavailableNote)
	}

	return b.String()
}

func renderAgentState(in StepInput) string {
	var b strings.Builder
	b.WriteString("<agent_state>\n")
	if in.FollowUpTask != "" {
		fmt.Fprintf(&b, "<initial_user_request>%s</initial_user_request>\n", in.Task)
		fmt.Fprintf(&b, "<follow_up_user_request>%s</follow_up_user_request>\n", in.FollowUpTask)
	} else {
		fmt.Fprintf(&b, "Task: %s\n", in.Task)
	}
	fmt.Fprintf(&b, "File system: %s\n", in.FileSystem.Description)
	if in.FileSystem.TodoContents != "" {
		fmt.Fprintf(&b, "Todo:\n%s\n", in.FileSystem.TodoContents)
	}
	if len(in.SensitiveDataKeys) > 0 {
		fmt.Fprintf(&b, "Sensitive data available for this page: %s\n", strings.Join(in.SensitiveDataKeys, ", "))
	}
	fmt.Fprintf(&b, "Step: %d/%d\n", in.Step.StepNumber, in.Step.MaxSteps)
	now := in.Step.Now
	if now.IsZero() {
		now = time.Now()
	}
	fmt.Fprintf(&b, "Date: %s\n", now.Format(time.RFC3339))
	b.WriteString("</agent_state>")
	return b.String()
}

func renderBrowserState(in StepInput) string {
	var b strings.Builder
	b.WriteString("<browser_state>\n")
	if in.Browser != nil {
		fmt.Fprintf(&b, "URL: %s\n", in.Browser.URL)
		fmt.Fprintf(&b, "Title: %s\n", in.Browser.Title)
		fmt.Fprintf(&b, "Tabs: %d\n", len(in.Browser.Tabs))
		fmt.Fprintf(&b, "Scroll: %.0fpx above, %.0fpx below\n", in.Browser.PageInfo.PixelsAbove, in.Browser.PageInfo.PixelsBelow)
		if len(in.Browser.RecentEvents) > 0 {
			fmt.Fprintf(&b, "Recent events:\n- %s\n", strings.Join(in.Browser.RecentEvents, "\n- "))
		}
		if len(in.Browser.ClosedPopupMessages) > 0 {
			fmt.Fprintf(&b, "Auto-closed popups:\n- %s\n", strings.Join(in.Browser.ClosedPopupMessages, "\n- "))
		}
		if in.Browser.IsPDFViewer {
			b.WriteString("The current tab is a PDF viewer.\n")
		}
	}
	b.WriteString(in.DOMText)
	b.WriteString("\n</browser_state>")
	return b.String()
}
