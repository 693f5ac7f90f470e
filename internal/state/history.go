package state

import "time"

// HistoryItem is one entry in the rolling prompt's <agent_history> section.
// Either a normal step, a system injection, or an error entry.
type HistoryItem struct {
	StepNumber             int
	Memory                 string
	EvaluationPreviousGoal string
	NextGoal               string
	ActionResultsText      []string
	Error                  string
	SystemMessage          string
}

// IsSystemInjection reports whether this item is a synthetic system note
// (e.g. add-new-task) rather than a model-produced step.
func (h HistoryItem) IsSystemInjection() bool { return h.SystemMessage != "" }

// BrowserStateHistory is the persisted slice of BrowserStateSummary kept in
// AgentHistory — screenshots are referenced by path, not inlined.
type BrowserStateHistory struct {
	URL               string
	Title             string
	Tabs              []TabInfo
	InteractedElementIDs []int
	ScreenshotPath    string
}

// StepMetadata records wall-clock timing for one step.
type StepMetadata struct {
	StepNumber   int
	StepStart    time.Time
	StepEnd      time.Time
	StepInterval time.Duration
}

// AgentHistoryItem is one entry of the monotonically growing AgentHistory.
type AgentHistoryItem struct {
	ModelOutput *StepDecision
	Result      []ActionResult
	State       BrowserStateHistory
	Metadata    StepMetadata
}

// AgentHistory is the ordered, append-only run log.
type AgentHistory struct {
	Items []AgentHistoryItem
}

func (h *AgentHistory) Append(item AgentHistoryItem) {
	h.Items = append(h.Items, item)
}

// IsSuccessful reports the run's overall outcome: the last recorded action
// result has Success == true. Mirrors AgentHistoryList.is_successful().
func (h *AgentHistory) IsSuccessful() bool {
	if len(h.Items) == 0 {
		return false
	}
	last := h.Items[len(h.Items)-1]
	if len(last.Result) == 0 {
		return false
	}
	r := last.Result[len(last.Result)-1]
	return r.Success != nil && *r.Success
}

// IsDone reports whether any recorded action result set IsDone.
func (h *AgentHistory) IsDone() bool {
	for _, item := range h.Items {
		for _, r := range item.Result {
			if r.IsDone {
				return true
			}
		}
	}
	return false
}

// AgentState is the orchestrator-owned mutable run state. Serializable for
// checkpointing except for PausedCh, the live synchronization primitive.
type AgentState struct {
	NSteps              int
	ConsecutiveFailures int
	LastModelOutput     *StepDecision
	LastResult          []ActionResult
	Paused              bool
	Stopped             bool
	SessionInitialized  bool
	FollowUpTask        string

	// PausedCh is closed to signal resume; a fresh channel replaces it each
	// time the orchestrator pauses. The loop waits on it at the top of
	// each step when paused.
	PausedCh chan struct{} `json:"-"`
}

// SensitiveData is either a flat placeholder map, or a per-domain map of
// placeholder maps. Exactly one of Flat / ByDomain is populated.
type SensitiveData struct {
	Flat     map[string]string
	ByDomain map[string]map[string]string
}

// Resolve returns the effective placeholder→value map for the given URL:
// the flat map if set, otherwise the union of every per-domain map whose
// pattern matches url.
func (s SensitiveData) Resolve(url string, matchDomain func(pattern, url string) bool) map[string]string {
	if s.Flat != nil {
		return s.Flat
	}
	merged := map[string]string{}
	for pattern, values := range s.ByDomain {
		if matchDomain(pattern, url) {
			for k, v := range values {
				merged[k] = v
			}
		}
	}
	return merged
}
