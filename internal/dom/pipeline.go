package dom

import "github.com/RomanUsername777/browseragent/internal/state"

// BuildSerializedDOMState runs the DOM projection pipeline's later stages
// (stages 3-8; stages 1-2, snapshot-lookup construction and enhanced-tree
// fusion, happen upstream in the browser session facade since they need
// raw CDP payloads) over an already-fused EnhancedDOMNode tree.
//
// The serializer never returns an error: missing snapshots degrade to
// empty bounds (treated as invisible for bbox filtering), and a defensive
// recover() guards against unexpected nil dereferences deep in a malformed
// tree, so a malformed snapshot degrades the rendered page rather than
// the agent loop.
func BuildSerializedDOMState(root *state.EnhancedDOMNode, mode state.RenderMode) (state.SerializedDOMState, string) {
	var out state.SerializedDOMState
	var text string

	func() {
		defer func() {
			if r := recover(); r != nil {
				out = state.SerializedDOMState{Root: &state.SimplifiedNode{}, SelectorMap: state.SelectorMap{}}
				text = ""
			}
		}()

		simplified := BuildSimplifiedTree(root)
		if simplified == nil {
			simplified = &state.SimplifiedNode{Original: root}
		}

		ApplyPaintOrderFiltering(simplified)
		ApplyBBoxContainmentFiltering(simplified)
		simplified = Optimize(simplified)
		if simplified == nil {
			simplified = &state.SimplifiedNode{Original: root}
		}

		selectorMap := state.SelectorMap{}
		AssignInteractiveIndices(simplified, selectorMap)

		out = state.SerializedDOMState{Root: simplified, SelectorMap: selectorMap}
		text = Serialize(simplified, mode)
	}()

	return out, text
}
