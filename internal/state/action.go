package state

import "encoding/json"

// ActionSpec describes one registered action: its name, documentation, and
// the JSON schema for its parameters. Name is unique within a Registry.
type ActionSpec struct {
	Name                  string
	Description           string
	ParamSchema           json.RawMessage
	AllowedDomainPatterns []string
}

// Unconstrained reports whether this action is always available regardless
// of the current URL.
func (s ActionSpec) Unconstrained() bool { return len(s.AllowedDomainPatterns) == 0 }

// ActionInvocation is one entry in a StepDecision.Action list: the name of
// a registered action plus its raw, not-yet-validated parameters.
type ActionInvocation struct {
	Name   string
	Params json.RawMessage
}

// ActionResult is the normalized outcome of dispatching one ActionInvocation.
//
// Invariant: Success == true implies IsDone == true — only the terminal
// `done` action ever reports success.
type ActionResult struct {
	ExtractedContent              string
	LongTermMemory                string
	Error                         string
	IsDone                        bool
	Success                       *bool
	Images                        []string
	Attachments                   []string
	Metadata                      map[string]string
	IncludeExtractedContentOnlyOnce bool
}

// IsError reports whether this result carries an error.
func (r ActionResult) IsError() bool { return r.Error != "" }

// Valid checks the Success-implies-IsDone invariant. Construction helpers
// in this package never produce a violating value; this exists for tests
// and for defensively checking results coming back from user-supplied
// handlers.
func (r ActionResult) Valid() bool {
	if r.Success != nil && *r.Success && !r.IsDone {
		return false
	}
	return true
}

func boolPtr(b bool) *bool { return &b }

// Done constructs the terminal ActionResult for the `done` action.
func Done(success bool, text string) ActionResult {
	return ActionResult{
		ExtractedContent: text,
		IsDone:           true,
		Success:          boolPtr(success),
	}
}

// ErrorResult constructs an error ActionResult that does not terminate the
// run (network errors, stale references, and other browser failures all flow
// through here).
func ErrorResult(msg string) ActionResult {
	return ActionResult{Error: msg}
}

// TextResult wraps a plain string return from a handler as extracted
// content, the common case for actions that only report what they found.
func TextResult(text string) ActionResult {
	return ActionResult{ExtractedContent: text}
}

// StepDecision is the LLM's structured output for one step.
//
// Mode selects which optional fields are populated: ModeFull carries
// Thinking; ModeNoThinking omits it; ModeFlash additionally omits
// EvaluationPreviousGoal and NextGoal. All three variants share this one
// struct; the per-mode output schema is built per step by
// agent.BuildOutputSchema.
type StepDecision struct {
	Mode                   DecisionMode
	EvaluationPreviousGoal string
	Memory                 string
	NextGoal               string
	Thinking               string
	Action                 []ActionInvocation
}

type DecisionMode int

const (
	ModeFull DecisionMode = iota
	ModeNoThinking
	ModeFlash
)

// Validate checks that a StepDecision accepted by the orchestrator carries
// at least one action.
func (d StepDecision) Validate() error {
	if len(d.Action) == 0 {
		return ErrEmptyAction
	}
	return nil
}
