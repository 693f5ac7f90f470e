package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RomanUsername777/browseragent/internal/state"
)

func leaf(backendID int, x, y, w, h float64, paintOrder int, styles map[string]string) *state.SimplifiedNode {
	return &state.SimplifiedNode{
		Original: &state.EnhancedDOMNode{
			BackendNodeID:  backendID,
			TagName:        "div",
			ViewportBounds: state.Bounds{X: x, Y: y, Width: w, Height: h},
			PaintOrder:     paintOrder,
			HasPaintOrder:  true,
			ComputedStyles: styles,
		},
	}
}

func TestApplyPaintOrderFiltering_OccludedNodeMarked(t *testing.T) {
	opaque := map[string]string{"opacity": "1", "background-color": "rgb(255,255,255)"}

	// top (paint order 2) fully covers bottom (paint order 1).
	top := leaf(1, 0, 0, 100, 100, 2, opaque)
	bottom := leaf(2, 10, 10, 20, 20, 1, opaque)
	root := &state.SimplifiedNode{
		Original: &state.EnhancedDOMNode{TagName: "body"},
		Children: []*state.SimplifiedNode{top, bottom},
	}

	ApplyPaintOrderFiltering(root)

	assert.False(t, top.IgnoredByPaintOrder)
	assert.True(t, bottom.IgnoredByPaintOrder)
}

func TestApplyPaintOrderFiltering_TransparentDoesNotOcclude(t *testing.T) {
	transparent := map[string]string{"opacity": "1", "background-color": transparentBackground}

	top := leaf(1, 0, 0, 100, 100, 2, transparent)
	bottom := leaf(2, 10, 10, 20, 20, 1, map[string]string{"opacity": "1", "background-color": "rgb(0,0,0)"})
	root := &state.SimplifiedNode{
		Original: &state.EnhancedDOMNode{TagName: "body"},
		Children: []*state.SimplifiedNode{top, bottom},
	}

	ApplyPaintOrderFiltering(root)

	assert.False(t, bottom.IgnoredByPaintOrder, "a transparent top layer must not occlude what's beneath it")
}

func TestApplyPaintOrderFiltering_ButtonNeverIgnored(t *testing.T) {
	opaque := map[string]string{"opacity": "1", "background-color": "rgb(255,255,255)"}

	top := leaf(1, 0, 0, 100, 100, 2, opaque)
	button := leaf(2, 10, 10, 20, 20, 1, opaque)
	button.Original.TagName = "button"
	root := &state.SimplifiedNode{
		Original: &state.EnhancedDOMNode{TagName: "body"},
		Children: []*state.SimplifiedNode{top, button},
	}

	ApplyPaintOrderFiltering(root)

	assert.False(t, button.IgnoredByPaintOrder)
}

func TestApplyPaintOrderFiltering_Idempotent(t *testing.T) {
	opaque := map[string]string{"opacity": "1", "background-color": "rgb(255,255,255)"}
	top := leaf(1, 0, 0, 100, 100, 2, opaque)
	bottom := leaf(2, 10, 10, 20, 20, 1, opaque)
	root := &state.SimplifiedNode{
		Original: &state.EnhancedDOMNode{TagName: "body"},
		Children: []*state.SimplifiedNode{top, bottom},
	}

	ApplyPaintOrderFiltering(root)
	first := bottom.IgnoredByPaintOrder
	ApplyPaintOrderFiltering(root)
	second := bottom.IgnoredByPaintOrder

	assert.Equal(t, first, second)
}

func TestRectUnion_ContainsAfterSplitAroundHole(t *testing.T) {
	u := &rectUnion{}
	u.Add(Rect{X1: 0, X2: 10, Y1: 0, Y2: 10})
	u.Add(Rect{X1: 10, X2: 20, Y1: 0, Y2: 10})

	assert.True(t, u.Contains(Rect{X1: 2, X2: 18, Y1: 2, Y2: 8}))
	assert.False(t, u.Contains(Rect{X1: 2, X2: 22, Y1: 2, Y2: 8}))
}
