package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/RomanUsername777/browseragent/internal/actions"
	"github.com/RomanUsername777/browseragent/internal/browser"
	"github.com/RomanUsername777/browseragent/internal/fsys"
	"github.com/RomanUsername777/browseragent/internal/llm"
	"github.com/RomanUsername777/browseragent/internal/message"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// fakeBrowser is a no-network BrowserSession test double: every page
// looks identical and every action reports success unless failLookups is
// set, in which case element lookups always fail (simulating a stale
// selector-map index).
type fakeBrowser struct {
	url         string
	failLookups bool
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error { f.url = url; return nil }
func (f *fakeBrowser) GoBack(ctx context.Context) error                { return nil }
func (f *fakeBrowser) Click(ctx context.Context, index int) error      { return nil }
func (f *fakeBrowser) ClickCoordinate(ctx context.Context, x, y float64) error { return nil }
func (f *fakeBrowser) Input(ctx context.Context, index int, text string, clear bool) error {
	return nil
}
func (f *fakeBrowser) SendKeys(ctx context.Context, keys string) error { return nil }
func (f *fakeBrowser) Scroll(ctx context.Context, down bool, pages float64, index *int) error {
	return nil
}
func (f *fakeBrowser) FindText(ctx context.Context, text string) error { return nil }
func (f *fakeBrowser) ClickText(ctx context.Context, text string, exact bool) error {
	return nil
}
func (f *fakeBrowser) ClickRole(ctx context.Context, role, name string, exact bool) error {
	return nil
}
func (f *fakeBrowser) DropdownOptions(ctx context.Context, index int) ([]string, error) {
	return nil, nil
}
func (f *fakeBrowser) SelectDropdown(ctx context.Context, index int, text string) error {
	return nil
}
func (f *fakeBrowser) Screenshot(ctx context.Context) (string, error) { return "", nil }
func (f *fakeBrowser) ExtractPageText(ctx context.Context) (string, error) {
	return "", nil
}
func (f *fakeBrowser) GetElementByIndex(index int) (*state.EnhancedDOMNode, error) {
	if f.failLookups {
		return nil, errElementNotFound
	}
	return &state.EnhancedDOMNode{TagName: "button"}, nil
}
func (f *fakeBrowser) CurrentURL() string { return f.url }
func (f *fakeBrowser) Wait(ctx context.Context, seconds float64) error { return nil }
func (f *fakeBrowser) SafeLinks(ctx context.Context) ([]browser.Link, error) {
	return nil, nil
}

func (f *fakeBrowser) GetBrowserStateSummary(ctx context.Context, mode state.RenderMode, build browser.BuildStateFunc) (*state.BrowserStateSummary, string, error) {
	return &state.BrowserStateSummary{URL: "https://example.com", Title: "Example"}, "<empty/>", nil
}

var errElementNotFound = errors.New("element not found")

func newTestOrchestrator(t *testing.T, fb *fakeBrowser, responses ...llm.Response) (*Orchestrator, *llm.StaticTranscript) {
	t.Helper()

	reg := actions.NewRegistry()
	if err := actions.RegisterCanonical(reg); err != nil {
		t.Fatalf("register canonical actions: %v", err)
	}

	fs, err := fsys.New(t.TempDir())
	if err != nil {
		t.Fatalf("new fsys: %v", err)
	}

	disp := actions.NewDispatcher(reg, actions.Deps{FileSystem: fs, BrowserSession: fb})
	model := llm.NewStaticTranscript(responses...)
	msgs := message.NewManager(message.DefaultConfig())

	orc := New(Config{MaxSteps: 10, MaxFailures: 3, MaxActionsPerStep: 5}, reg, disp, fb, fs, model, msgs, "find the pricing page", state.SensitiveData{}, "test-session")
	return orc, model
}

func doneResponse(success bool, text string) llm.Response {
	return llm.Response{Structured: map[string]any{
		"memory":                   "noted",
		"evaluation_previous_goal": "n/a",
		"next_goal":                "finish",
		"action": []any{
			map[string]any{"done": map[string]any{"success": success, "text": text}},
		},
	}}
}

func TestRunCompletesOnDone(t *testing.T) {
	orc, _ := newTestOrchestrator(t, &fakeBrowser{}, doneResponse(true, "found it"))

	history, err := orc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !history.IsSuccessful() {
		t.Fatalf("expected successful history, got %+v", history.Items)
	}
	if len(history.Items) != 1 {
		t.Fatalf("expected 1 history item, got %d", len(history.Items))
	}
}

func TestRunStopsAfterConsecutiveFailures(t *testing.T) {
	badAction := llm.Response{Structured: map[string]any{
		"memory":                   "noted",
		"evaluation_previous_goal": "n/a",
		"next_goal":                "keep trying",
		"action": []any{
			map[string]any{"click": map[string]any{"index": 1}},
		},
	}}

	orc, _ := newTestOrchestrator(t, &fakeBrowser{failLookups: true}, badAction, badAction, badAction)
	orc.cfg.MaxFailures = 2

	_, err := orc.Run(context.Background())
	if err == nil {
		t.Fatalf("expected an error after exceeding the failure budget")
	}
}

func TestBuildOutputSchemaVariesByMode(t *testing.T) {
	reg := actions.NewRegistry()
	if err := actions.RegisterCanonical(reg); err != nil {
		t.Fatalf("register canonical actions: %v", err)
	}
	available := reg.All()

	full, err := BuildOutputSchema(available, state.ModeFull)
	if err != nil {
		t.Fatalf("BuildOutputSchema(full): %v", err)
	}
	flash, err := BuildOutputSchema(available, state.ModeFlash)
	if err != nil {
		t.Fatalf("BuildOutputSchema(flash): %v", err)
	}

	var fullSchema, flashSchema map[string]any
	if err := json.Unmarshal(full, &fullSchema); err != nil {
		t.Fatalf("unmarshal full schema: %v", err)
	}
	if err := json.Unmarshal(flash, &flashSchema); err != nil {
		t.Fatalf("unmarshal flash schema: %v", err)
	}

	fullRequired := fullSchema["required"].([]any)
	flashRequired := flashSchema["required"].([]any)
	if len(flashRequired) >= len(fullRequired) {
		t.Fatalf("expected flash mode to require fewer fields than full mode")
	}
}

func TestDecodeStepDecisionRejectsEmptyAction(t *testing.T) {
	_, err := DecodeStepDecision(map[string]any{
		"memory": "x",
		"action": []any{},
	}, state.ModeFlash)
	if err == nil {
		t.Fatalf("expected an error for an empty action list")
	}
}
