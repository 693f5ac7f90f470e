package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/RomanUsername777/browseragent/internal/message"
)

// StaticTranscript is a no-network ChatModel test double that replays a
// fixed sequence of responses, one per call, in order. It never reads
// network or filesystem state, making agent-loop tests deterministic and
// fast.
type StaticTranscript struct {
	mu        sync.Mutex
	responses []Response
	calls     []Call
}

// Call records one Invoke's inputs for assertions.
type Call struct {
	Messages     []message.Message
	OutputSchema []byte
}

func NewStaticTranscript(responses ...Response) *StaticTranscript {
	return &StaticTranscript{responses: responses}
}

func (s *StaticTranscript) Name() string { return "static-transcript" }

func (s *StaticTranscript) Invoke(ctx context.Context, messages []message.Message, outputSchema []byte) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Messages: messages, OutputSchema: outputSchema})

	idx := len(s.calls) - 1
	if idx >= len(s.responses) {
		return Response{}, fmt.Errorf("llm: static transcript exhausted after %d calls", len(s.responses))
	}
	return s.responses[idx], nil
}

// Calls returns every recorded call, for test assertions.
func (s *StaticTranscript) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}
