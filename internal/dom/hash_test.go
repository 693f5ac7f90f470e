package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RomanUsername777/browseragent/internal/state"
)

func buildChain() *state.EnhancedDOMNode {
	root := &state.EnhancedDOMNode{TagName: "body"}
	form := &state.EnhancedDOMNode{TagName: "form", Parent: root}
	input := &state.EnhancedDOMNode{
		TagName:    "input",
		Parent:     form,
		Attributes: map[string]string{"id": "email", "name": "email", "class": "form-control"},
	}
	return input
}

func TestElementHash_StableAcrossRebuild(t *testing.T) {
	a := buildChain()
	b := buildChain()
	assert.Equal(t, ElementHash(a), ElementHash(b))
}

func TestElementHash_DiffersOnAttributeChange(t *testing.T) {
	a := buildChain()
	b := buildChain()
	b.Attributes["id"] = "phone"
	assert.NotEqual(t, ElementHash(a), ElementHash(b))
}

func TestElementHash_StopsAtIframeBoundary(t *testing.T) {
	outer := &state.EnhancedDOMNode{TagName: "body"}
	frame := &state.EnhancedDOMNode{TagName: "iframe", Parent: outer}
	inner := &state.EnhancedDOMNode{TagName: "input", Parent: frame, Attributes: map[string]string{"id": "x"}}

	loneInner := &state.EnhancedDOMNode{TagName: "input", Attributes: map[string]string{"id": "x"}}

	assert.Equal(t, ElementHash(loneInner), ElementHash(inner), "the iframe boundary must stop the ancestry walk")
}
