package message

import (
	"fmt"
	"strings"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// TruncateHistory keeps the first item and the most recent maxItems-1
// items, replacing anything in between with a single omission marker.
// Returns the items to render and the omission-marker text (empty if
// nothing was cut).
func TruncateHistory(items []state.HistoryItem, maxItems int) ([]state.HistoryItem, string) {
	if maxItems <= 0 || len(items) <= maxItems {
		return items, ""
	}

	keepRecent := maxItems - 1
	if keepRecent < 0 {
		keepRecent = 0
	}

	first := items[0]
	recent := items[len(items)-keepRecent:]
	omitted := len(items) - 1 - len(recent)

	out := make([]state.HistoryItem, 0, 1+len(recent))
	out = append(out, first)
	out = append(out, recent...)

	marker := ""
	if omitted > 0 {
		marker = fmt.Sprintf("<sys>[… %d previous steps omitted …]</sys>", omitted)
	}
	return out, marker
}

// RenderAgentHistory produces the <agent_history> block: the truncated
// item list (with the omission marker spliced in right after the first
// item) rendered as one line per item.
func RenderAgentHistory(items []state.HistoryItem, maxItems int) string {
	kept, marker := TruncateHistory(items, maxItems)

	var b strings.Builder
	b.WriteString("<agent_history>\n")
	for i, item := range kept {
		if i == 1 && marker != "" {
			b.WriteString(marker)
			b.WriteString("\n")
		}
		b.WriteString(renderHistoryItem(item))
		b.WriteString("\n")
	}
	b.WriteString("</agent_history>")
	return b.String()
}

func renderHistoryItem(item state.HistoryItem) string {
	if item.IsSystemInjection() {
		return fmt.Sprintf("<step %d>\n%s\n</step>", item.StepNumber, item.SystemMessage)
	}
	if item.Error != "" {
		return fmt.Sprintf("<step %d>\nError: %s\n</step>", item.StepNumber, item.Error)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<step %d>\n", item.StepNumber)
	if item.EvaluationPreviousGoal != "" {
		fmt.Fprintf(&b, "Evaluation of previous goal: %s\n", item.EvaluationPreviousGoal)
	}
	if item.Memory != "" {
		fmt.Fprintf(&b, "Memory: %s\n", item.Memory)
	}
	if item.NextGoal != "" {
		fmt.Fprintf(&b, "Next goal: %s\n", item.NextGoal)
	}
	for _, r := range item.ActionResultsText {
		fmt.Fprintf(&b, "Action result: %s\n", r)
	}
	b.WriteString("</step>")
	return b.String()
}
