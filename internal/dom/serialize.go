package dom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// maxSerializedLength is the hard cap on the rendered text form, past which
// a truncation marker replaces the remainder.
const maxSerializedLength = 40_000

const maxAttrValueLen = 100

// llmAttrAllowlist is the base attribute set shown in the LLM-facing
// rendering; eval rendering shows the full attribute map instead.
var llmAttrAllowlist = []string{
	"id", "class", "name", "type", "placeholder", "value", "href",
	"aria-label", "role", "title", "alt", "for", "data-testid",
}

// Serialize renders stage 8: the compact indexed text form, or — in
// RenderEval mode — a fuller, attribute-complete, index-free form.
func Serialize(root *state.SimplifiedNode, mode state.RenderMode) string {
	var b strings.Builder
	renderNode(&b, root, 0, mode)
	out := b.String()
	if len(out) > maxSerializedLength {
		out = out[:maxSerializedLength] + "\n...[truncated]"
	}
	return out
}

func renderNode(b *strings.Builder, n *state.SimplifiedNode, depth int, mode state.RenderMode) {
	if n.ExcludedByParent || n.IgnoredByPaintOrder {
		for _, c := range n.Children {
			renderNode(b, c, depth, mode)
		}
		return
	}

	if n.Original.NodeType == state.NodeTypeText {
		text := strings.TrimSpace(n.Original.TextValue)
		if text != "" {
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString(text)
			b.WriteString("\n")
		}
		for _, c := range n.Children {
			renderNode(b, c, depth, mode)
		}
		return
	}

	if !n.ShouldDisplay && !n.IsInteractive {
		for _, c := range n.Children {
			renderNode(b, c, depth, mode)
		}
		return
	}

	b.WriteString(strings.Repeat("  ", depth))

	prefix := ""
	if n.IsInteractive {
		prefix = fmt.Sprintf("[%d]", n.InteractiveIndex)
	}
	scrollable := IsScrollable(n.Original)
	if scrollable && ScrollInfoVisible(n.Original, scrollable) {
		prefix += fmt.Sprintf("|SCROLL[%d]|", n.Original.BackendNodeID)
	}
	if n.Original.TagName == "iframe" || n.Original.TagName == "frame" {
		prefix += "|IFRAME|"
	}
	if n.IsShadowHost {
		mode := "closed"
		if _, ok := n.Original.Attr("data-shadow-open"); ok {
			mode = "open"
		}
		prefix += fmt.Sprintf("|SHADOW(%s)|", mode)
	}

	b.WriteString(prefix)
	b.WriteString("<")
	b.WriteString(n.Original.TagName)

	for _, attr := range attrsToShow(n.Original, mode) {
		val, ok := n.Original.Attr(attr)
		if !ok || val == "" {
			continue
		}
		if len(val) > maxAttrValueLen {
			val = val[:maxAttrValueLen]
		}
		fmt.Fprintf(b, " %s=%q", attr, val)
	}

	if format := html5Format(n.Original); format != "" {
		fmt.Fprintf(b, " format=%q", format)
	}

	if scrollable && ScrollInfoVisible(n.Original, scrollable) {
		info := scrollInfoText(n.Original)
		fmt.Fprintf(b, " scroll=%q", info)
	}

	for _, vc := range n.VirtualChildren {
		fmt.Fprintf(b, " virtual=%q", vc)
	}

	b.WriteString(">\n")

	for _, c := range n.Children {
		renderNode(b, c, depth+1, mode)
	}
}

func attrsToShow(n *state.EnhancedDOMNode, mode state.RenderMode) []string {
	if mode == state.RenderEval {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	return llmAttrAllowlist
}

func html5Format(n *state.EnhancedDOMNode) string {
	if n.TagName != "input" {
		return ""
	}
	switch n.Attributes["type"] {
	case "date":
		return "YYYY-MM-DD"
	case "time":
		return "HH:MM"
	case "datetime-local":
		return "YYYY-MM-DDTHH:MM"
	case "month":
		return "YYYY-MM"
	case "week":
		return "YYYY-Www"
	}
	return ""
}

func scrollInfoText(n *state.EnhancedDOMNode) string {
	above := n.ScrollRect.Height - n.ClientRect.Height
	if above < 0 {
		above = 0
	}
	total := n.ScrollRect.Height
	pct := 0.0
	if total > 0 {
		pct = (n.ClientRect.Height / total) * 100
	}
	return fmt.Sprintf("pages_above=%.1f pages_below=%.1f pct=%.0f%%", above/maxf(n.ClientRect.Height, 1), 0.0, pct)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
