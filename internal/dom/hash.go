package dom

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// staticAttrNames are the attributes considered "static" identity for
// hashing — attributes likely to be stable across a re-render of the same
// logical element, stable across repeated serializations of the same page.
var staticAttrNames = []string{
	"id", "class", "name", "type", "placeholder", "aria-label", "href", "data-testid", "role",
}

// ElementHash computes a stable structural hash for an element: the
// sequence of tag names from the root (light-DOM ancestry; shadow
// boundaries pass through transparently; iframes stop the walk) combined
// with a sorted list of static attributes, hashed with SHA-256 and
// truncated to the first 16 hex chars, read as a uint64. Used to
// re-resolve an element across a re-snapshot when its index has shifted.
func ElementHash(n *state.EnhancedDOMNode) uint64 {
	var tags []string
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.TagName == "iframe" || cur.TagName == "frame" {
			break
		}
		tags = append([]string{cur.TagName}, tags...)
	}
	path := strings.Join(tags, "/")

	attrs := make([]string, 0, len(staticAttrNames))
	for _, name := range staticAttrNames {
		if v, ok := n.Attr(name); ok && v != "" {
			attrs = append(attrs, name+"="+v)
		}
	}
	sort.Strings(attrs)

	payload := path + "|" + strings.Join(attrs, ",")
	sum := sha256.Sum256([]byte(payload))
	hexStr := hex.EncodeToString(sum[:])[:16]
	v, _ := strconv.ParseUint(hexStr, 16, 64)
	return v
}
