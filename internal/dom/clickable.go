package dom

import (
	"strings"

	"github.com/RomanUsername777/browseragent/internal/state"
)

var searchIndicators = []string{
	"find", "glass", "lookup", "magnify", "query",
	"search", "search-btn", "search-button", "search-icon", "searchbox",
}

var interactiveTags = map[string]bool{
	"a": true, "button": true, "details": true, "input": true,
	"optgroup": true, "option": true, "select": true, "summary": true, "textarea": true,
}

var interactiveAttrs = []string{"onclick", "onkeydown", "onkeyup", "onmousedown", "onmouseup", "tabindex"}

var interactiveRoles = map[string]bool{
	"button": true, "checkbox": true, "combobox": true, "link": true,
	"menuitem": true, "option": true, "radio": true, "search": true,
	"searchbox": true, "slider": true, "spinbutton": true, "tab": true, "textbox": true,
}

// interactiveAXRoles additionally allows "listbox" over interactiveRoles,
// matching the original's two slightly different role sets for ARIA
// attributes vs. the accessibility tree's own role field.
var interactiveAXRoles = map[string]bool{
	"button": true, "checkbox": true, "combobox": true, "link": true,
	"listbox": true, "menuitem": true, "option": true, "radio": true,
	"search": true, "searchbox": true, "slider": true, "spinbutton": true,
	"tab": true, "textbox": true,
}

// IsInteractive ports ClickableElementDetector.is_interactive check-for-
// check: CDP clickable hint first, then an iframe size gate, a search-
// affordance sniff, direct AX-property indicators, an interactive-tag
// allowlist, DOM event-attribute presence, ARIA/AX role allowlists, an
// icon-sized-element gate, and a cursor:pointer fallback. The first
// matching rule decides; there is no combined score (an open question
// resolved in favor of the simpler, order-sensitive behavior).
// Question 1).
func IsInteractive(n *state.EnhancedDOMNode) bool {
	if n.NodeType != state.NodeTypeElement {
		return false
	}
	if n.TagName == "body" || n.TagName == "html" {
		return false
	}

	if n.IsClickable {
		return true
	}

	tagUpper := strings.ToUpper(n.TagName)
	if tagUpper == "FRAME" || tagUpper == "IFRAME" {
		if n.ViewportBounds.Height > 100 && n.ViewportBounds.Width > 100 {
			return true
		}
	}

	if len(n.Attributes) > 0 {
		classList := strings.ToLower(n.Attributes["class"])
		for _, ind := range searchIndicators {
			if strings.Contains(classList, ind) {
				return true
			}
		}
		id := strings.ToLower(n.Attributes["id"])
		for _, ind := range searchIndicators {
			if strings.Contains(id, ind) {
				return true
			}
		}
		for name, value := range n.Attributes {
			if strings.HasPrefix(name, "data-") {
				lv := strings.ToLower(value)
				for _, ind := range searchIndicators {
					if strings.Contains(lv, ind) {
						return true
					}
				}
			}
		}
	}

	if n.AX != nil && n.AX.Properties != nil {
		props := n.AX.Properties
		if v, ok := props["hidden"]; ok && v == "true" {
			return false
		}
		if v, ok := props["disabled"]; ok && v == "true" {
			return false
		}
		for _, name := range []string{"editable", "focusable", "settable"} {
			if v, ok := props[name]; ok && v == "true" {
				return true
			}
		}
		for _, name := range []string{"checked", "expanded", "pressed", "selected"} {
			if _, ok := props[name]; ok {
				return true
			}
		}
		for _, name := range []string{"autocomplete", "required"} {
			if v, ok := props[name]; ok && v == "true" {
				return true
			}
		}
		if v, ok := props["keyshortcuts"]; ok && v != "" {
			return true
		}
	}

	if interactiveTags[strings.ToLower(n.TagName)] {
		return true
	}

	if len(n.Attributes) > 0 {
		for _, attr := range interactiveAttrs {
			if _, ok := n.Attributes[attr]; ok {
				return true
			}
		}
		if role, ok := n.Attributes["role"]; ok && interactiveRoles[role] {
			return true
		}
	}

	if n.AX != nil && n.AX.Role != "" && interactiveAXRoles[n.AX.Role] {
		return true
	}

	h, w := n.ViewportBounds.Height, n.ViewportBounds.Width
	if h >= 10 && h <= 50 && w >= 10 && w <= 50 {
		iconAttrs := []string{"aria-label", "class", "data-action", "onclick", "role"}
		for _, attr := range iconAttrs {
			if _, ok := n.Attributes[attr]; ok {
				return true
			}
		}
	}

	if n.Style("cursor") == "pointer" {
		return true
	}

	return false
}
