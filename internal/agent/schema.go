package agent

import (
	"encoding/json"
	"fmt"

	"github.com/RomanUsername777/browseragent/internal/actions"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// BuildOutputSchema renders the JSON Schema the LLM's structured output
// must conform to for one step: memory and action are always required;
// evaluation_previous_goal, next_goal, and thinking are added depending on
// mode, matching the three StepDecision variants. The schema is built
// afresh on every call (the orchestrator calls it once per step); nothing
// is cached between calls.
func BuildOutputSchema(available []*actions.Action, mode state.DecisionMode) ([]byte, error) {
	if len(available) == 0 {
		return nil, fmt.Errorf("agent: cannot build output schema with no available actions")
	}

	actionVariants := make([]map[string]any, 0, len(available))
	for _, a := range available {
		var paramSchema any = map[string]any{"type": "object"}
		if len(a.Spec.ParamSchema) > 0 {
			var parsed any
			if err := json.Unmarshal(a.Spec.ParamSchema, &parsed); err != nil {
				return nil, fmt.Errorf("agent: parse param schema for %s: %w", a.Spec.Name, err)
			}
			paramSchema = parsed
		}
		actionVariants = append(actionVariants, map[string]any{
			"type":                 "object",
			"properties":           map[string]any{a.Spec.Name: paramSchema},
			"required":             []string{a.Spec.Name},
			"additionalProperties": false,
		})
	}

	properties := map[string]any{
		"memory": map[string]any{"type": "string"},
		"action": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"anyOf": actionVariants},
		},
	}
	required := []string{"memory", "action"}

	if mode == state.ModeFull || mode == state.ModeNoThinking {
		properties["evaluation_previous_goal"] = map[string]any{"type": "string"}
		properties["next_goal"] = map[string]any{"type": "string"}
		required = append(required, "evaluation_previous_goal", "next_goal")
	}
	if mode == state.ModeFull {
		properties["thinking"] = map[string]any{"type": "string"}
		required = append(required, "thinking")
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}

	return json.Marshal(schema)
}
