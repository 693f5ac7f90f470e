package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rod/rod"

	"github.com/RomanUsername777/browseragent/internal/logging"
)

// DetectionResult describes why a single element was flagged as a trap:
// a decoy link or button kept on the page to catch an agent that clicks
// everything, instead of only what a sighted user would ever reach.
type DetectionResult struct {
	Selector   string   `json:"selector"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
	Href       string   `json:"href,omitempty"`
}

// Link is a page link annotated with honeypot analysis.
type Link struct {
	Selector        string   `json:"selector"`
	Href            string   `json:"href"`
	Text            string   `json:"text"`
	IsHoneypot      bool     `json:"is_honeypot"`
	HoneypotReasons []string `json:"honeypot_reasons,omitempty"`
}

const offscreenThreshold = -1000.0

var suspiciousURLSubstrings = []string{"honeypot", "trap", "decoy"}

// elementSignature is the geometry, style, and attribute snapshot a
// single element is judged against.
type elementSignature struct {
	styles map[string]string
	attrs  map[string]string
	x, y   float64
	w, h   float64
	hasBox bool
	href   string
}

func inspectElement(el *rod.Element) elementSignature {
	var sig elementSignature

	if styles, err := computedStyles(el); err == nil {
		sig.styles = styles
	}
	if attrs, err := elementAttributes(el); err == nil {
		sig.attrs = attrs
	}
	if box, err := el.Shape(); err == nil && box != nil && len(box.Quads) > 0 {
		quad := box.Quads[0]
		sig.x = (quad[0] + quad[2] + quad[4] + quad[6]) / 4
		sig.y = (quad[1] + quad[3] + quad[5] + quad[7]) / 4
		sig.w = quad[2] - quad[0]
		sig.h = quad[5] - quad[1]
		sig.hasBox = true
	}
	if href, err := el.Attribute("href"); err == nil && href != nil {
		sig.href = *href
	}

	return sig
}

// computedStyles returns the subset of an element's computed style
// relevant to honeypot detection.
func computedStyles(el *rod.Element) (map[string]string, error) {
	result, err := el.Eval(`() => {
		const s = window.getComputedStyle(this);
		return {
			display: s.display,
			visibility: s.visibility,
			opacity: s.opacity,
			pointerEvents: s.pointerEvents,
		};
	}`)
	if err != nil {
		return nil, err
	}
	styles := make(map[string]string)
	for k, v := range result.Value.Map() {
		styles[k] = v.String()
	}
	return styles, nil
}

// elementAttributes returns every HTML attribute on the element.
func elementAttributes(el *rod.Element) (map[string]string, error) {
	result, err := el.Eval(`() => {
		const attrs = {};
		for (const attr of this.attributes) attrs[attr.name] = attr.value;
		return attrs;
	}`)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]string)
	for k, v := range result.Value.Map() {
		attrs[k] = v.String()
	}
	return attrs, nil
}

// honeypotReasons judges a signature against the indicators a sighted
// user would never trigger: hidden via CSS, parked off-screen,
// collapsed to zero size, or otherwise unreachable by keyboard or eye.
func honeypotReasons(sig elementSignature) []string {
	var reasons []string

	if sig.styles["display"] == "none" {
		reasons = append(reasons, "hidden via display:none")
	}
	if sig.styles["visibility"] == "hidden" {
		reasons = append(reasons, "hidden via visibility:hidden")
	}
	if op, err := strconv.ParseFloat(sig.styles["opacity"], 64); err == nil && op == 0 {
		reasons = append(reasons, "hidden via opacity:0")
	}
	if sig.styles["pointerEvents"] == "none" {
		reasons = append(reasons, "pointer events disabled")
	}

	if sig.hasBox {
		if sig.x < offscreenThreshold || sig.y < offscreenThreshold {
			reasons = append(reasons, "positioned off-screen")
		}
		if sig.w < 2 && sig.h < 2 {
			reasons = append(reasons, "zero or near-zero size")
		}
	}

	if sig.attrs["aria-hidden"] == "true" {
		reasons = append(reasons, "marked as aria-hidden")
	}
	if sig.attrs["tabindex"] == "-1" {
		reasons = append(reasons, "not keyboard accessible (negative tabindex)")
	}

	if sig.href != "" {
		lower := strings.ToLower(sig.href)
		for _, substr := range suspiciousURLSubstrings {
			if strings.Contains(lower, substr) {
				reasons = append(reasons, "suspicious URL pattern")
				break
			}
		}
	}

	return reasons
}

func confidenceFor(reasons []string) float64 {
	if len(reasons) == 0 {
		return 0
	}
	confidence := 0.5 + float64(len(reasons))*0.15
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// IsHoneypot reports whether el carries any of the decoy indicators a
// scraper-trap author relies on to catch an agent that clicks blind,
// along with the reasons and a rough confidence score.
func IsHoneypot(el *rod.Element) (DetectionResult, bool) {
	sig := inspectElement(el)
	reasons := honeypotReasons(sig)
	result := DetectionResult{
		Reasons:    reasons,
		Confidence: confidenceFor(reasons),
		Href:       sig.href,
	}
	return result, len(reasons) > 0
}

// GetSafeLinks returns every on-page link that does not look like a
// honeypot, logging the ones it filters out.
func GetSafeLinks(page *rod.Page) ([]Link, error) {
	elements, err := page.Elements("a[href]")
	if err != nil {
		return nil, fmt.Errorf("honeypot: list links: %w", err)
	}

	var links []Link
	for _, el := range elements {
		href, err := el.Attribute("href")
		if err != nil || href == nil || *href == "" {
			continue
		}
		text, _ := el.Text()

		if result, isHoneypot := IsHoneypot(el); isHoneypot {
			logging.BrowserDebug("filtered honeypot link %s: %v", *href, result.Reasons)
			continue
		}

		links = append(links, Link{
			Selector: fmt.Sprintf("a[href=%q]", *href),
			Href:     *href,
			Text:     strings.TrimSpace(text),
		})
	}
	return links, nil
}

// GetAllLinksWithAnalysis returns every on-page link together with its
// honeypot verdict, without filtering any out.
func GetAllLinksWithAnalysis(page *rod.Page) ([]Link, error) {
	elements, err := page.Elements("a[href]")
	if err != nil {
		return nil, fmt.Errorf("honeypot: list links: %w", err)
	}

	var links []Link
	for _, el := range elements {
		href, err := el.Attribute("href")
		if err != nil || href == nil || *href == "" {
			continue
		}
		text, _ := el.Text()

		result, isHoneypot := IsHoneypot(el)
		links = append(links, Link{
			Selector:        fmt.Sprintf("a[href=%q]", *href),
			Href:            *href,
			Text:            strings.TrimSpace(text),
			IsHoneypot:      isHoneypot,
			HoneypotReasons: result.Reasons,
		})
	}
	return links, nil
}
