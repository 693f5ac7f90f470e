package dom

import "github.com/RomanUsername777/browseragent/internal/state"

// hasInteractiveDescendant reports whether any descendant of n is itself
// interactive — used to decide whether a scrollable container should be
// promoted to interactive.
func hasInteractiveDescendant(n *state.SimplifiedNode) bool {
	for _, c := range n.Children {
		if c.IsInteractive || hasInteractiveDescendant(c) {
			return true
		}
	}
	return false
}

// AssignInteractiveIndices implements stage 7: walk the surviving tree,
// marking IsInteractive and populating the selector map using
// backend_node_id as key for any node that is CDP-clickable, has an
// interactive tag/role and is visible, is a scrollable container with no
// interactive descendants, is a file input, or is a button-like element
// (including disabled ones, which must remain addressable).
func AssignInteractiveIndices(root *state.SimplifiedNode, selectorMap state.SelectorMap) {
	var walk func(n *state.SimplifiedNode)
	walk = func(n *state.SimplifiedNode) {
		for _, c := range n.Children {
			walk(c)
		}

		o := n.Original
		isFileInput := o.TagName == "input" && o.Attributes["type"] == "file"
		isButtonLike := o.TagName == "button" || o.Attributes["role"] == "button"
		scrollableNoDescendants := IsScrollable(o) && !hasInteractiveDescendant(n)

		interactive := o.IsClickable ||
			(IsInteractive(o) && (n.ShouldDisplay || isButtonLike)) ||
			scrollableNoDescendants ||
			isFileInput ||
			isButtonLike

		if n.ExcludedByParent {
			interactive = false
		}

		if interactive {
			n.IsInteractive = true
			n.InteractiveIndex = o.BackendNodeID
			selectorMap[o.BackendNodeID] = o
		}
	}
	walk(root)
}
