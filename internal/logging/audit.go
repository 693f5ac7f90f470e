// Audit logging writes one structured JSON line per notable event (step
// boundaries, action execution, LLM calls) to a dedicated audit log file,
// independent of the per-category debug logs in logger.go.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType names the kind of event an AuditEvent records.
type AuditEventType string

const (
	AuditStepStart     AuditEventType = "step_start"
	AuditStepEnd       AuditEventType = "step_end"
	AuditActionExecute AuditEventType = "action_execute"
	AuditActionError   AuditEventType = "action_error"
	AuditLLMRequest    AuditEventType = "llm_request"
	AuditLLMResponse   AuditEventType = "llm_response"
	AuditLLMError      AuditEventType = "llm_error"
	AuditTaskStart     AuditEventType = "task_start"
	AuditTaskEnd       AuditEventType = "task_end"
)

// AuditEvent is one structured audit log entry.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`
	EventType  AuditEventType         `json:"event"`
	SessionID  string                 `json:"session,omitempty"`
	Step       int                    `json:"step,omitempty"`
	Target     string                 `json:"target,omitempty"`
	Action     string                 `json:"action,omitempty"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Message    string                 `json:"msg,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes AuditEvents scoped to a session.
type AuditLogger struct {
	sessionID string
}

// InitAudit opens the audit log file for today, a no-op outside debug mode.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open audit log: %w", err)
	}
	auditFile = file
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile != nil {
		_ = auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the unscoped global audit logger.
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession returns an audit logger scoped to a session ID.
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes one audit event as a JSON line.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = a.sessionID
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = auditFile.Write(append(data, '\n'))
}

// StepStart logs the beginning of an agent step.
func (a *AuditLogger) StepStart(step int) {
	a.Log(AuditEvent{EventType: AuditStepStart, Step: step, Success: true, Message: fmt.Sprintf("step %d started", step)})
}

// StepEnd logs the completion of an agent step.
func (a *AuditLogger) StepEnd(step int, durationMs int64, success bool) {
	a.Log(AuditEvent{
		EventType: AuditStepEnd, Step: step, Success: success, DurationMs: durationMs,
		Message: fmt.Sprintf("step %d ended (%dms, success=%v)", step, durationMs, success),
	})
}

// ActionExecute logs one action's execution outcome.
func (a *AuditLogger) ActionExecute(step int, action, target string, durationMs int64, success bool, errMsg string) {
	eventType := AuditActionExecute
	if !success {
		eventType = AuditActionError
	}
	a.Log(AuditEvent{
		EventType: eventType, Step: step, Action: action, Target: target,
		Success: success, DurationMs: durationMs, Error: errMsg,
		Message: fmt.Sprintf("action %s -> %s (success=%v, %dms)", action, target, success, durationMs),
	})
}

// LLMCall logs one LLM invocation's usage and outcome.
func (a *AuditLogger) LLMCall(step int, model string, promptTokens, completionTokens int, durationMs int64, success bool, errMsg string) {
	eventType := AuditLLMResponse
	if !success {
		eventType = AuditLLMError
	}
	a.Log(AuditEvent{
		EventType: eventType, Step: step, Target: model, Success: success,
		DurationMs: durationMs, Error: errMsg,
		Fields:  map[string]interface{}{"prompt_tokens": promptTokens, "completion_tokens": completionTokens},
		Message: fmt.Sprintf("llm call %s -> %d+%d tokens (%dms, success=%v)", model, promptTokens, completionTokens, durationMs, success),
	})
}

// TaskStart logs the start of a whole run against a natural-language task.
func (a *AuditLogger) TaskStart(task string) {
	a.Log(AuditEvent{EventType: AuditTaskStart, Success: true, Message: fmt.Sprintf("task started: %s", task)})
}

// TaskEnd logs the end of a whole run.
func (a *AuditLogger) TaskEnd(steps int, durationMs int64, success bool) {
	a.Log(AuditEvent{
		EventType: AuditTaskEnd, Success: success, DurationMs: durationMs,
		Fields:  map[string]interface{}{"steps": steps},
		Message: fmt.Sprintf("task ended (%d steps, %dms, success=%v)", steps, durationMs, success),
	})
}
