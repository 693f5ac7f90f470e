package dom

import (
	"fmt"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// skipTags are dropped entirely at stage 3 (never become a SimplifiedNode),
// collapsing wrapper elements that contribute no signal of their own.
var skipTags = map[string]bool{
	"head": true, "link": true, "meta": true, "script": true, "style": true, "title": true,
}

var compoundControlTags = map[string]bool{
	"select": true, "details": true, "audio": true, "video": true,
}

func isCompoundInput(n *state.EnhancedDOMNode) bool {
	if n.TagName != "input" {
		return false
	}
	switch n.Attributes["type"] {
	case "range", "number", "color", "file":
		return true
	}
	return false
}

func isSVGDescendant(n *state.EnhancedDOMNode) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.TagName == "svg" {
			return true
		}
	}
	return false
}

func hasValidationAttr(n *state.EnhancedDOMNode) bool {
	for _, attr := range []string{"required", "pattern", "minlength", "maxlength", "min", "max"} {
		if _, ok := n.Attributes[attr]; ok {
			return true
		}
	}
	return false
}

func forceVisible(n *state.EnhancedDOMNode) bool {
	if hasValidationAttr(n) {
		return true
	}
	if n.TagName == "input" && n.Attributes["type"] == "file" {
		return true
	}
	return n.IsClickable
}

// BuildSimplifiedTree implements stage 3: depth-first construction of
// SimplifiedNode, keeping nodes that are visible, scrollable, shadow hosts,
// iframes, or structurally required; skipping non-content tags and SVG
// descendants (the <svg> element itself is kept, collapsed).
func BuildSimplifiedTree(n *state.EnhancedDOMNode) *state.SimplifiedNode {
	if n == nil {
		return nil
	}
	if n.NodeType == state.NodeTypeElement {
		if skipTags[n.TagName] {
			return nil
		}
		if n.TagName != "svg" && isSVGDescendant(n) {
			return nil
		}
	}

	sn := &state.SimplifiedNode{Original: n}

	visible := n.IsVisible || forceVisible(n)
	scrollable := IsScrollable(n)
	isShadowHost := len(n.ShadowRoots) > 0
	isIframe := n.TagName == "iframe" || n.TagName == "frame"
	isCompound := compoundControlTags[n.TagName] || isCompoundInput(n)

	sn.ShouldDisplay = visible || scrollable || isShadowHost || isIframe
	sn.IsShadowHost = isShadowHost
	sn.IsCompoundComponent = isCompound

	if isCompound {
		sn.VirtualChildren = synthesizeCompoundChildren(n)
	}

	if n.TagName == "svg" {
		// Collapsed: keep the tag, drop its subtree.
		return sn
	}

	for _, child := range n.Children {
		if c := BuildSimplifiedTree(child); c != nil {
			sn.Children = append(sn.Children, c)
			c.Original.Parent = n
		}
	}
	for _, sr := range n.ShadowRoots {
		if c := BuildSimplifiedTree(sr); c != nil {
			sn.Children = append(sn.Children, c)
		}
	}
	if n.ContentDocument != nil {
		if c := BuildSimplifiedTree(n.ContentDocument); c != nil {
			sn.Children = append(sn.Children, c)
		}
	}

	return sn
}

// synthesizeCompoundChildren builds the virtual descriptor strings for
// compound controls: a slider shows min/max/value; a
// select shows up to its first four option texts plus a count of the
// options left out.
func synthesizeCompoundChildren(n *state.EnhancedDOMNode) []string {
	switch n.TagName {
	case "input":
		switch n.Attributes["type"] {
		case "range", "number":
			return []string{"slider min=" + n.Attributes["min"] + " max=" + n.Attributes["max"] + " value=" + n.Attributes["value"]}
		case "color":
			return []string{"color value=" + n.Attributes["value"]}
		case "file":
			return []string{"file-upload accept=" + n.Attributes["accept"]}
		}
	case "select":
		var opts []string
		count := 0
		for _, c := range n.Children {
			if c.TagName != "option" {
				continue
			}
			count++
			if len(opts) < 4 {
				// An option's label lives in its child text nodes.
				text := c.TextValue
				for _, t := range c.Children {
					if t.NodeType == state.NodeTypeText {
						text += t.TextValue
					}
				}
				opts = append(opts, text)
			}
		}
		descriptor := "options"
		for _, o := range opts {
			descriptor += " " + o
		}
		if count > len(opts) {
			descriptor += fmt.Sprintf(" (+%d more)", count-len(opts))
		}
		return []string{descriptor}
	case "audio", "video":
		return []string{"media-transport play/pause/mute/progress"}
	}
	return nil
}

// Optimize implements stage 5: prune nodes that are not clickable, not
// visible, not scrollable, not text, and have no surviving children.
func Optimize(n *state.SimplifiedNode) *state.SimplifiedNode {
	var kept []*state.SimplifiedNode
	for _, c := range n.Children {
		if opt := Optimize(c); opt != nil {
			kept = append(kept, opt)
		}
	}
	n.Children = kept

	if n.ShouldDisplay || n.Original.IsClickable || n.Original.NodeType == state.NodeTypeText || len(kept) > 0 {
		return n
	}
	return nil
}
