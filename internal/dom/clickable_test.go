package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RomanUsername777/browseragent/internal/state"
)

func TestIsInteractive_CDPHintWins(t *testing.T) {
	n := &state.EnhancedDOMNode{NodeType: state.NodeTypeElement, TagName: "div", IsClickable: true}
	assert.True(t, IsInteractive(n))
}

func TestIsInteractive_HtmlAndBodyExcluded(t *testing.T) {
	assert.False(t, IsInteractive(&state.EnhancedDOMNode{NodeType: state.NodeTypeElement, TagName: "body"}))
	assert.False(t, IsInteractive(&state.EnhancedDOMNode{NodeType: state.NodeTypeElement, TagName: "html"}))
}

func TestIsInteractive_SmallIframeNotInteractive(t *testing.T) {
	n := &state.EnhancedDOMNode{
		NodeType:       state.NodeTypeElement,
		TagName:        "iframe",
		ViewportBounds: state.Bounds{Width: 50, Height: 50},
	}
	assert.False(t, IsInteractive(n))
}

func TestIsInteractive_LargeIframeInteractive(t *testing.T) {
	n := &state.EnhancedDOMNode{
		NodeType:       state.NodeTypeElement,
		TagName:        "iframe",
		ViewportBounds: state.Bounds{Width: 200, Height: 200},
	}
	assert.True(t, IsInteractive(n))
}

func TestIsInteractive_SearchClassIndicator(t *testing.T) {
	n := &state.EnhancedDOMNode{
		NodeType:   state.NodeTypeElement,
		TagName:    "div",
		Attributes: map[string]string{"class": "icon search-icon"},
	}
	assert.True(t, IsInteractive(n))
}

func TestIsInteractive_AXHiddenOverridesEverythingElse(t *testing.T) {
	n := &state.EnhancedDOMNode{
		NodeType: state.NodeTypeElement,
		TagName:  "button",
		AX:       &state.AXInfo{Properties: map[string]string{"hidden": "true"}},
	}
	assert.False(t, IsInteractive(n), "AX hidden must short-circuit before the tag allowlist check")
}

func TestIsInteractive_LabelTagAloneIsNotInteractive(t *testing.T) {
	n := &state.EnhancedDOMNode{NodeType: state.NodeTypeElement, TagName: "label"}
	assert.False(t, IsInteractive(n), "label was deliberately excluded from the interactive-tag allowlist")
}

func TestIsInteractive_AriaRole(t *testing.T) {
	n := &state.EnhancedDOMNode{
		NodeType:   state.NodeTypeElement,
		TagName:    "div",
		Attributes: map[string]string{"role": "checkbox"},
	}
	assert.True(t, IsInteractive(n))
}

func TestIsInteractive_IconSizedElementNeedsAttribute(t *testing.T) {
	plain := &state.EnhancedDOMNode{
		NodeType:       state.NodeTypeElement,
		TagName:        "div",
		ViewportBounds: state.Bounds{Width: 24, Height: 24},
	}
	assert.False(t, IsInteractive(plain))

	withAttr := &state.EnhancedDOMNode{
		NodeType:       state.NodeTypeElement,
		TagName:        "div",
		ViewportBounds: state.Bounds{Width: 24, Height: 24},
		Attributes:     map[string]string{"aria-label": "close"},
	}
	assert.True(t, IsInteractive(withAttr))
}

func TestIsInteractive_CursorPointerFallback(t *testing.T) {
	n := &state.EnhancedDOMNode{
		NodeType:       state.NodeTypeElement,
		TagName:        "div",
		ComputedStyles: map[string]string{"cursor": "pointer"},
	}
	assert.True(t, IsInteractive(n))
}
