// Package llm defines the provider-agnostic chat model boundary the agent
// loop calls through, never a concrete SDK directly, plus one OpenAI-backed
// adapter and a no-network test double.
package llm

import (
	"context"

	"github.com/RomanUsername777/browseragent/internal/message"
)

// Usage reports token accounting for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	CachedTokens     int
	CreationTokens   int
	TotalTokens      int
}

// Response is what ainvoke returns: either a free-text completion or, when
// an output schema was supplied, the structured output already decoded
// into a map keyed by the schema's top-level properties.
type Response struct {
	Completion string
	Structured map[string]any
	Usage      Usage
	StopReason string
	Refusal    string
}

// ChatModel is the capability every step's call_llm substep depends on.
// Wire/HTTP specifics are entirely the adapter's concern.
type ChatModel interface {
	Name() string
	Invoke(ctx context.Context, messages []message.Message, outputSchema []byte) (Response, error)
}

// ThinkingCapable is implemented by adapters whose model exposes an
// extended-reasoning trace alongside the completion.
type ThinkingCapable interface {
	LastThoughtSummary() string
	LastThinkingTokens() int
}

// GroundingCapable is implemented by adapters that can attach web-search
// grounding citations to a completion.
type GroundingCapable interface {
	LastGroundingSources() []string
}
