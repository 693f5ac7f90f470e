package agent

import (
	"encoding/json"
	"fmt"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// DecodeStepDecision converts one call's decoded structured output back
// into a StepDecision, re-marshaling each action's single-key wrapper
// object into an ActionInvocation, then validating the result.
func DecodeStepDecision(structured map[string]any, mode state.DecisionMode) (state.StepDecision, error) {
	d := state.StepDecision{Mode: mode}

	if v, ok := structured["memory"].(string); ok {
		d.Memory = v
	}
	if v, ok := structured["evaluation_previous_goal"].(string); ok {
		d.EvaluationPreviousGoal = v
	}
	if v, ok := structured["next_goal"].(string); ok {
		d.NextGoal = v
	}
	if v, ok := structured["thinking"].(string); ok {
		d.Thinking = v
	}

	raw, ok := structured["action"].([]any)
	if !ok {
		return state.StepDecision{}, fmt.Errorf("agent: structured output missing action array")
	}

	actions := make([]state.ActionInvocation, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return state.StepDecision{}, fmt.Errorf("agent: action[%d] is not an object", i)
		}
		if len(obj) != 1 {
			return state.StepDecision{}, fmt.Errorf("agent: action[%d] must have exactly one key, got %d", i, len(obj))
		}
		for name, params := range obj {
			payload, err := json.Marshal(params)
			if err != nil {
				return state.StepDecision{}, fmt.Errorf("agent: action[%d] %s: marshal params: %w", i, name, err)
			}
			actions = append(actions, state.ActionInvocation{Name: name, Params: payload})
		}
	}
	d.Action = actions

	if err := d.Validate(); err != nil {
		return state.StepDecision{}, err
	}
	return d, nil
}
