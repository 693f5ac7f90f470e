// Package state holds the value objects shared by every core component:
// the enhanced/simplified DOM trees, the browser state summary, the action
// and history types, and the sensitive-data map.
package state

// NodeType mirrors the small set of CDP node kinds the projection cares
// about. Everything else collapses into NodeTypeElement or is dropped
// upstream of EnhancedDOMNode construction.
type NodeType int

const (
	NodeTypeElement NodeType = iota
	NodeTypeText
	NodeTypeDocument
	NodeTypeShadowRoot
)

// Bounds is an axis-aligned rectangle in CSS pixels.
type Bounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (b Bounds) Empty() bool { return b.Width <= 0 && b.Height <= 0 }

// AXInfo is the accessibility-tree facet fused onto a DOM node.
type AXInfo struct {
	Role        string
	Name        string
	Description string
	Properties  map[string]string
	Ignored     bool
}

// EnhancedDOMNode is the unified node produced by stage 2 of the DOM
// projection pipeline: CDP DOM tree + accessibility tree + layout snapshot
// fused into one tree.
type EnhancedDOMNode struct {
	NodeID        int
	BackendNodeID int
	FrameID       string
	TargetID      string

	NodeType   NodeType
	TagName    string
	Attributes map[string]string
	Children   []*EnhancedDOMNode
	ShadowRoots []*EnhancedDOMNode
	ContentDocument *EnhancedDOMNode
	Parent     *EnhancedDOMNode
	TextValue  string

	DocumentBounds Bounds
	ViewportBounds Bounds
	ClientRect     Bounds
	ScrollRect     Bounds
	ComputedStyles map[string]string
	PaintOrder     int
	HasPaintOrder  bool
	StackingContext int

	AX *AXInfo

	IsVisible    bool
	IsScrollable bool
	IsClickable  bool
}

// Attr returns an attribute value and whether it was present.
func (n *EnhancedDOMNode) Attr(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	v, ok := n.Attributes[name]
	return v, ok
}

func (n *EnhancedDOMNode) Style(prop string) string {
	if n.ComputedStyles == nil {
		return ""
	}
	return n.ComputedStyles[prop]
}

// SimplifiedNode is the parallel tree produced by stage 3 onward: a subset
// of EnhancedDOMNode, enriched with projection-specific flags. It owns its
// children; Original is referenced, not owned.
type SimplifiedNode struct {
	Original *EnhancedDOMNode
	Children []*SimplifiedNode

	ShouldDisplay        bool
	IsInteractive        bool
	ExcludedByParent     bool
	IgnoredByPaintOrder  bool
	IsShadowHost         bool
	IsCompoundComponent  bool

	// VirtualChildren holds synthesized descriptors for compound controls
	// (range thumb, select options, media transport) — text-only, never
	// resolved back to a live DOM node.
	VirtualChildren []string

	// InteractiveIndex is the backend_node_id used as the selector-map key
	// once this node is promoted to interactive in stage 7. Zero if unset.
	InteractiveIndex int
}

// SelectorMap maps a backend_node_id to the live EnhancedDOMNode it
// resolves to, for every node the serializer indexed.
type SelectorMap map[int]*EnhancedDOMNode

// SerializedDOMState is the DOM projection pipeline's output: the
// simplified tree plus the map the LLM addresses elements through.
type SerializedDOMState struct {
	Root        *SimplifiedNode
	SelectorMap SelectorMap
}

// RenderMode selects between the two serialization flavors: the compact
// indexed text form sent to the LLM, or a richer form with full attribute
// values used when an action handler needs to re-derive an element
// in-page (e.g. via page.Eval) rather than just display it.
type RenderMode int

const (
	RenderLLM RenderMode = iota
	RenderEval
)

// PageInfo carries scroll/viewport metrics for the current page.
type PageInfo struct {
	ScrollY     float64
	PixelsAbove float64
	PixelsBelow float64
	ViewportW   float64
	ViewportH   float64
	PageW       float64
	PageH       float64
}

// TabInfo describes one open browser tab/target.
type TabInfo struct {
	TargetID string
	URL      string
	Title    string
}

// BrowserStateSummary is the browser session facade's immutable per-step
// snapshot.
type BrowserStateSummary struct {
	URL                  string
	Title                string
	Tabs                 []TabInfo
	DOMState             SerializedDOMState
	ScreenshotPNGBase64  string
	PageInfo             PageInfo
	RecentEvents         []string
	ClosedPopupMessages  []string
	IsPDFViewer          bool
}
