package dom

import "github.com/RomanUsername777/browseragent/internal/state"

var scrollableOverflow = map[string]bool{"auto": true, "scroll": true, "overlay": true}

// semanticScrollContainers are scrollable even without an explicit overflow
// declaration, once content actually overflows their client rect.
var semanticScrollContainers = map[string]bool{
	"div": true, "main": true, "body": true, "html": true,
	"section": true, "article": true, "aside": true,
}

// IsScrollable applies the scrollability heuristic: CDP hint, or
// scroll rect exceeding client rect by more than 1px on either axis with an
// overflow style that allows scrolling, or — for a fixed set of semantic
// containers — overflowing content even without an explicit overflow style.
func IsScrollable(n *state.EnhancedDOMNode) bool {
	if n.IsScrollable {
		return true
	}

	overflowsX := n.ScrollRect.Width-n.ClientRect.Width > 1
	overflowsY := n.ScrollRect.Height-n.ClientRect.Height > 1
	if !overflowsX && !overflowsY {
		return false
	}

	ox, oy := n.Style("overflow-x"), n.Style("overflow-y")
	if scrollableOverflow[ox] || scrollableOverflow[oy] {
		return true
	}
	if general := n.Style("overflow"); scrollableOverflow[general] {
		return true
	}

	return semanticScrollContainers[n.TagName]
}

// ScrollInfoVisible reports whether a scroll-info annotation should be
// emitted for this node during serialization: only for scrollable nodes
// whose parent is not also scrollable, plus body/html/iframe unconditionally.
func ScrollInfoVisible(n *state.EnhancedDOMNode, scrollable bool) bool {
	if !scrollable {
		return false
	}
	if n.TagName == "body" || n.TagName == "html" {
		return true
	}
	tagUpper := n.TagName
	if tagUpper == "iframe" || tagUpper == "frame" {
		return true
	}
	if n.Parent != nil && IsScrollable(n.Parent) {
		return false
	}
	return true
}
