package dom

import "github.com/RomanUsername777/browseragent/internal/state"

// bboxContainmentThreshold is the fraction of a descendant's area that must
// lie inside a propagating parent's bounds for the descendant to be
// excluded once a descendant is at least 99% contained by it.
const bboxContainmentThreshold = 0.99

var propagatingTags = map[string]bool{"a": true, "button": true}

// isPropagating reports whether n's bounds should suppress contained
// descendants in the LLM projection.
func isPropagating(n *state.SimplifiedNode) bool {
	tag := n.Original.TagName
	if propagatingTags[tag] {
		return true
	}
	role := n.Original.Attributes["role"]
	if tag == "input" && role == "combobox" {
		return true
	}
	if tag == "span" && role == "button" {
		return true
	}
	return false
}

var formControlTags = map[string]bool{"input": true, "label": true, "select": true, "textarea": true}

func exemptFromExclusion(n *state.SimplifiedNode) bool {
	o := n.Original
	if formControlTags[o.TagName] {
		return true
	}
	if isPropagating(n) {
		return true
	}
	if _, ok := o.Attr("onclick"); ok {
		return true
	}
	if label, ok := o.Attr("aria-label"); ok && label != "" {
		return true
	}
	if role, ok := o.Attr("role"); ok && interactiveRoles[role] {
		return true
	}
	return false
}

func containmentFraction(parent, child state.Bounds) float64 {
	if child.Width <= 0 || child.Height <= 0 {
		return 0
	}
	x1 := max(parent.X, child.X)
	y1 := max(parent.Y, child.Y)
	x2 := min(parent.X+parent.Width, child.X+child.Width)
	y2 := min(parent.Y+parent.Height, child.Y+child.Height)
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	overlap := (x2 - x1) * (y2 - y1)
	childArea := child.Width * child.Height
	return overlap / childArea
}

// ApplyBBoxContainmentFiltering walks the tree propagating the nearest
// enclosing "propagating" ancestor's bounds downward, marking a descendant
// ExcludedByParent when it is ≥99% contained in that ancestor's bounds and
// is not itself exempt (form control, propagating element, click handler,
// meaningful aria-label, or interactive role).
func ApplyBBoxContainmentFiltering(root *state.SimplifiedNode) {
	var walk func(n *state.SimplifiedNode, propagator *state.SimplifiedNode)
	walk = func(n *state.SimplifiedNode, propagator *state.SimplifiedNode) {
		next := propagator
		if propagator != nil && n != propagator {
			if containmentFraction(propagator.Original.ViewportBounds, n.Original.ViewportBounds) >= bboxContainmentThreshold {
				if !exemptFromExclusion(n) {
					n.ExcludedByParent = true
				}
			}
		}
		if isPropagating(n) {
			next = n
		}
		for _, c := range n.Children {
			walk(c, next)
		}
	}
	walk(root, nil)
}
