package message

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates prompt size using the same BPE tables the target
// model's tokenizer uses, so truncation decisions track the model's real
// context window rather than a character heuristic.
type TokenCounter struct {
	mu  sync.Mutex
	enc *tiktoken.Tiktoken
}

// NewTokenCounter loads the cl100k_base encoding, the encoding shared by
// the GPT-3.5/GPT-4 family. Falls back to a nil encoder (CountString then
// degrades to the chars/4 heuristic) if the BPE ranks can't be loaded,
// e.g. no network access to fetch them on first use.
func NewTokenCounter() *TokenCounter {
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &TokenCounter{enc: enc}
}

// CountString estimates the token count of a single string.
func (tc *TokenCounter) CountString(s string) int {
	if s == "" {
		return 0
	}
	if tc.enc == nil {
		return len([]rune(s)) / 4
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.enc.Encode(s, nil, nil))
}

// CountMessage estimates tokens for one message, including a small
// per-message overhead for role framing and a flat per-image cost.
func (tc *TokenCounter) CountMessage(m Message) int {
	tokens := 4 + tc.CountString(m.Text)
	for range m.Images {
		tokens += 85 // low-detail image baseline; high-detail is tiled and model-specific
	}
	return tokens
}

// CountMessages sums CountMessage over a conversation.
func (tc *TokenCounter) CountMessages(msgs []Message) int {
	total := 0
	for _, m := range msgs {
		total += tc.CountMessage(m)
	}
	return total
}
