// Package agent implements the step-loop state machine that drives a
// browser session against a natural-language task: collect the current
// page state, compose the rolling prompt, call the model, dispatch the
// actions it chose, and record the outcome, repeating until the model
// calls done, the run is stopped, or the step/failure budget runs out.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/RomanUsername777/browseragent/internal/actions"
	"github.com/RomanUsername777/browseragent/internal/browser"
	"github.com/RomanUsername777/browseragent/internal/dom"
	"github.com/RomanUsername777/browseragent/internal/llm"
	"github.com/RomanUsername777/browseragent/internal/logging"
	"github.com/RomanUsername777/browseragent/internal/message"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// BrowserSession is the capability surface the orchestrator drives the
// browser through: the dispatcher's narrow action surface plus the
// per-step state summary collector.
type BrowserSession interface {
	actions.BrowserSession
	GetBrowserStateSummary(ctx context.Context, mode state.RenderMode, build browser.BuildStateFunc) (*state.BrowserStateSummary, string, error)
}

// Config bounds one run of the step loop.
type Config struct {
	MaxSteps          int
	MaxFailures       int
	MaxActionsPerStep int
	StepTimeout       time.Duration
	Mode              state.DecisionMode
	Vision            bool
}

// Orchestrator owns the collaborators one run needs: the action registry
// and dispatcher, the browser session, the filesystem, the chat model,
// and the rolling prompt manager. One Orchestrator drives exactly one
// task from start to finish; build a fresh one per run.
type Orchestrator struct {
	Registry   *actions.Registry
	Dispatcher *actions.Dispatcher
	Browser    BrowserSession
	FileSystem actions.FileSystem
	Model      llm.ChatModel
	Messages   *message.Manager

	Task               string
	SensitiveData       state.SensitiveData
	AvailableFilePaths []string

	cfg     Config
	st      state.AgentState
	history state.AgentHistory
	audit   *logging.AuditLogger
}

// New builds an Orchestrator ready to run task against the given
// collaborators. sessionID scopes the audit trail; it has no bearing on
// browser identity.
func New(cfg Config, registry *actions.Registry, dispatcher *actions.Dispatcher, browserSession BrowserSession, fs actions.FileSystem, model llm.ChatModel, messages *message.Manager, task string, sensitive state.SensitiveData, sessionID string) *Orchestrator {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 100
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 60 * time.Second
	}
	return &Orchestrator{
		Registry:     registry,
		Dispatcher:   dispatcher,
		Browser:      browserSession,
		FileSystem:   fs,
		Model:        model,
		Messages:     messages,
		Task:         task,
		SensitiveData: sensitive,
		cfg:          cfg,
		audit:        logging.AuditWithSession(sessionID),
		st:           state.AgentState{PausedCh: closedChan()},
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Pause blocks the loop at the top of its next step until Resume is
// called.
func (o *Orchestrator) Pause() {
	if !o.st.Paused {
		o.st.Paused = true
		o.st.PausedCh = make(chan struct{})
	}
}

// Resume releases a paused loop.
func (o *Orchestrator) Resume() {
	if o.st.Paused {
		o.st.Paused = false
		close(o.st.PausedCh)
	}
}

// Stop requests the loop end at the top of its next step, before the
// next model call.
func (o *Orchestrator) Stop() {
	o.st.Stopped = true
}

// AddFollowUpTask implements the add-new-task semantics: the follow-up
// becomes the active instruction from the next step onward, alongside a
// synthetic history entry recording the event.
func (o *Orchestrator) AddFollowUpTask(followUp string) {
	o.st.FollowUpTask = o.Messages.AddNewTask(o.Task, followUp, o.st.NSteps)
}

// Run drives the step loop to completion: until the model calls done,
// the run is stopped, or the step/failure budget is exhausted. It returns
// the full AgentHistory regardless of how the run ended.
func (o *Orchestrator) Run(ctx context.Context) (*state.AgentHistory, error) {
	runStart := time.Now()
	o.audit.TaskStart(o.Task)

	var runErr error
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil || o.st.Stopped {
			break
		}

		<-o.st.PausedCh

		if o.st.NSteps >= o.cfg.MaxSteps {
			runErr = fmt.Errorf("agent: step budget exhausted after %d steps", o.st.NSteps)
			break
		}

		done, err := o.step(ctx)
		if err != nil {
			runErr = err
			break
		}
		if done {
			break
		}
	}

	o.audit.TaskEnd(o.st.NSteps, time.Since(runStart).Milliseconds(), o.history.IsSuccessful())
	return &o.history, runErr
}

// step runs one full iteration of collect_state -> update_actions ->
// compose_prompt -> call_llm -> execute_actions -> post_process.
func (o *Orchestrator) step(ctx context.Context) (done bool, err error) {
	stepStart := time.Now()
	o.st.NSteps++
	stepNumber := o.st.NSteps
	o.audit.StepStart(stepNumber)

	stepCtx, cancel := context.WithTimeout(ctx, o.cfg.StepTimeout)
	defer cancel()

	summary, domText, err := o.collectState(stepCtx)
	if err != nil {
		o.recordFailure(stepNumber, stepStart, fmt.Sprintf("failed to collect browser state: %v", err))
		return false, nil
	}

	forcedDone := o.st.NSteps >= o.cfg.MaxSteps
	catalog := o.Registry
	if forcedDone {
		catalog = o.Registry.DoneOnly()
		o.Messages.AddContextNote("This is the final step. You must call done now with your best available result.")
	}
	available := catalog.AvailableForURL(summary.URL)
	if len(available) == 0 {
		available = o.Registry.AvailableForURL(summary.URL)
	}

	in := message.StepInput{
		Task:         o.Task,
		FollowUpTask: o.st.FollowUpTask,
		FileSystem: message.FileSystemInfo{
			Description:  o.FileSystem.Describe(),
			TodoContents: o.FileSystem.GetTodoContents(),
		},
		SensitiveDataKeys: sensitiveDataKeys(o.SensitiveData, summary.URL),
		Step: message.StepInfo{
			StepNumber: stepNumber,
			MaxSteps:   o.cfg.MaxSteps,
			Now:        time.Now(),
		},
		Browser:          summary,
		DOMText:          domText,
		AvailableActions: available,
	}
	if o.cfg.Vision && summary.ScreenshotPNGBase64 != "" {
		in.Screenshots = []message.ImagePart{{
			URL:       "data:image/png;base64," + summary.ScreenshotPNGBase64,
			MediaType: "image/png",
			Detail:    message.DetailAuto,
		}}
	}

	msgs := o.Messages.ComposeMessages(in)

	schema, err := BuildOutputSchema(available, o.cfg.Mode)
	if err != nil {
		o.recordFailure(stepNumber, stepStart, fmt.Sprintf("failed to build output schema: %v", err))
		return false, nil
	}

	llmStart := time.Now()
	resp, err := o.Model.Invoke(stepCtx, msgs, schema)
	llmDuration := time.Since(llmStart).Milliseconds()
	if err != nil {
		o.audit.LLMCall(stepNumber, o.Model.Name(), 0, 0, llmDuration, false, err.Error())
		o.recordFailure(stepNumber, stepStart, fmt.Sprintf("llm call failed: %v", err))
		return false, nil
	}
	o.audit.LLMCall(stepNumber, o.Model.Name(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, llmDuration, true, "")

	restored := o.Messages.RestoreStructuredOutput(resp.Structured)
	structured, ok := restored.(map[string]any)
	if !ok {
		o.recordFailure(stepNumber, stepStart, "model returned no structured output")
		return false, nil
	}

	decision, err := DecodeStepDecision(structured, o.cfg.Mode)
	if err != nil {
		o.recordFailure(stepNumber, stepStart, fmt.Sprintf("failed to decode model output: %v", err))
		return false, nil
	}

	maxActions := o.cfg.MaxActionsPerStep
	if maxActions > 0 && len(decision.Action) > maxActions {
		decision.Action = decision.Action[:maxActions]
	}

	results := o.multiAct(stepCtx, decision.Action, stepNumber)

	isDone := false
	anyError := false
	for _, r := range results {
		if r.IsDone {
			isDone = true
		}
		if r.IsError() {
			anyError = true
		}
	}

	if anyError {
		o.st.ConsecutiveFailures++
	} else {
		o.st.ConsecutiveFailures = 0
	}

	o.st.LastModelOutput = &decision
	o.st.LastResult = results

	historyItem := state.HistoryItem{
		StepNumber:             stepNumber,
		Memory:                 decision.Memory,
		EvaluationPreviousGoal: decision.EvaluationPreviousGoal,
		NextGoal:               decision.NextGoal,
		ActionResultsText:      resultTexts(results),
	}
	o.Messages.AppendHistory(historyItem)
	o.history.Append(state.AgentHistoryItem{
		ModelOutput: &decision,
		Result:      results,
		State: state.BrowserStateHistory{
			URL:   summary.URL,
			Title: summary.Title,
			Tabs:  summary.Tabs,
		},
		Metadata: state.StepMetadata{
			StepNumber:   stepNumber,
			StepStart:    stepStart,
			StepEnd:      time.Now(),
			StepInterval: time.Since(stepStart),
		},
	})

	stepSuccess := !anyError
	o.audit.StepEnd(stepNumber, time.Since(stepStart).Milliseconds(), stepSuccess)

	if o.st.ConsecutiveFailures >= o.cfg.MaxFailures {
		return false, fmt.Errorf("agent: stopped after %d consecutive failures", o.st.ConsecutiveFailures)
	}

	return isDone, nil
}

// multiAct dispatches a step's actions in order, stopping early once the
// terminal done action runs or an action reports an error — later
// actions in the same batch are likely to act on a page state the
// failure already invalidated.
func (o *Orchestrator) multiAct(ctx context.Context, invocations []state.ActionInvocation, stepNumber int) []state.ActionResult {
	results := make([]state.ActionResult, 0, len(invocations))
	for _, inv := range invocations {
		actionStart := time.Now()
		result := o.Dispatcher.Dispatch(ctx, inv)
		results = append(results, result)

		o.audit.ActionExecute(stepNumber, inv.Name, o.Dispatcher.Deps.PageURL, time.Since(actionStart).Milliseconds(), !result.IsError(), result.Error)

		if result.IsDone || result.IsError() {
			break
		}
	}
	return results
}

// collectState takes a fresh browser state summary and renders its DOM
// text, the two things compose_prompt needs from the current page.
func (o *Orchestrator) collectState(ctx context.Context) (*state.BrowserStateSummary, string, error) {
	summary, domText, err := o.Browser.GetBrowserStateSummary(ctx, state.RenderLLM, dom.BuildSerializedDOMState)
	if err != nil {
		return nil, "", err
	}
	o.Dispatcher.Deps.PageURL = summary.URL
	return summary, domText, nil
}

// recordFailure appends a synthetic error history item for a step that
// failed before producing a model decision, and bumps the consecutive
// failure counter.
func (o *Orchestrator) recordFailure(stepNumber int, stepStart time.Time, msg string) {
	o.st.ConsecutiveFailures++
	o.Messages.AppendHistory(state.HistoryItem{StepNumber: stepNumber, Error: msg})
	o.audit.StepEnd(stepNumber, time.Since(stepStart).Milliseconds(), false)
}

func resultTexts(results []state.ActionResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		switch {
		case r.Error != "":
			out = append(out, "error: "+r.Error)
		case r.ExtractedContent != "":
			out = append(out, r.ExtractedContent)
		default:
			out = append(out, "ok")
		}
	}
	return out
}

// sensitiveDataKeys lists the placeholder names whose values apply on url.
func sensitiveDataKeys(sd state.SensitiveData, url string) []string {
	var keys []string
	for k := range sd.Resolve(url, actions.MatchDomainPattern) {
		keys = append(keys, k)
	}
	return keys
}
