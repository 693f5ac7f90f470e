package dom

import (
	"sort"
	"strconv"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// paintOrderOpacityThreshold and transparentBackground are the exact
// thresholds used by the original occlusion filter: an element below this
// opacity, or with a fully transparent background, never contributes to the
// occlusion union even though it can still itself be occluded.
const (
	paintOrderOpacityThreshold = 0.8
	transparentBackground      = "rgba(0, 0, 0, 0)"
)

// alwaysVisibleTags are never marked ignored_by_paint_order regardless of
// occlusion, as an exception for real buttons/links.
var alwaysVisibleTags = map[string]bool{
	"button": true,
}

func isAlwaysVisible(n *state.SimplifiedNode) bool {
	tag := n.Original.TagName
	if alwaysVisibleTags[tag] {
		return true
	}
	if tag == "a" {
		if role, ok := n.Original.Attr("role"); ok && role == "button" {
			return true
		}
	}
	return false
}

// ApplyPaintOrderFiltering groups simplified nodes by paint order
// (descending) and marks IgnoredByPaintOrder on any node whose bounds are
// already fully covered by higher-paint-order nodes added so far.
//
// This is a direct port of the reference implementation's paint-order
// PaintOrderRemover: same grouping, same opacity/background gates, same
// "always visible" escape hatch.
func ApplyPaintOrderFiltering(root *state.SimplifiedNode) {
	var withPaintOrder []*state.SimplifiedNode
	var collect func(n *state.SimplifiedNode)
	collect = func(n *state.SimplifiedNode) {
		if n.Original != nil && n.Original.HasPaintOrder && !n.Original.ViewportBounds.Empty() {
			withPaintOrder = append(withPaintOrder, n)
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(root)

	grouped := map[int][]*state.SimplifiedNode{}
	for _, n := range withPaintOrder {
		grouped[n.Original.PaintOrder] = append(grouped[n.Original.PaintOrder], n)
	}

	orders := make([]int, 0, len(grouped))
	for po := range grouped {
		orders = append(orders, po)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(orders)))

	union := &rectUnion{}

	for _, po := range orders {
		nodes := grouped[po]

		var rectsToAdd []Rect
		for _, n := range nodes {
			b := n.Original.ViewportBounds
			r := Rect{X1: b.X, X2: b.X + b.Width, Y1: b.Y, Y2: b.Y + b.Height}

			if union.Contains(r) && !isAlwaysVisible(n) {
				n.IgnoredByPaintOrder = true
			}

			if !contributesToOcclusion(n.Original.ComputedStyles) {
				continue
			}
			rectsToAdd = append(rectsToAdd, r)
		}

		// Nodes are only added to the union after every node in this paint
		// group has been tested against the union built from higher paint
		// orders — matches the original two-pass per-group structure.
		for _, r := range rectsToAdd {
			union.Add(r)
		}
	}
}

func contributesToOcclusion(styles map[string]string) bool {
	if styles == nil {
		return true
	}
	if op, ok := styles["opacity"]; ok {
		if v, err := strconv.ParseFloat(op, 64); err == nil && v < paintOrderOpacityThreshold {
			return false
		}
	}
	if bg, ok := styles["background-color"]; ok && bg == transparentBackground {
		return false
	}
	return true
}
