package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanUsername777/browseragent/internal/message"
)

func TestStaticTranscript_RepliesInOrder(t *testing.T) {
	m := NewStaticTranscript(
		Response{Completion: "first"},
		Response{Completion: "second"},
	)

	r1, err := m.Invoke(context.Background(), []message.Message{{Role: message.RoleUser, Text: "a"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", r1.Completion)

	r2, err := m.Invoke(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", r2.Completion)
}

func TestStaticTranscript_ExhaustedReturnsError(t *testing.T) {
	m := NewStaticTranscript(Response{Completion: "only"})

	_, err := m.Invoke(context.Background(), nil, nil)
	require.NoError(t, err)

	_, err = m.Invoke(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestStaticTranscript_RecordsCalls(t *testing.T) {
	m := NewStaticTranscript(Response{Completion: "ok"})
	_, _ = m.Invoke(context.Background(), []message.Message{{Role: message.RoleSystem, Text: "sys"}}, []byte(`{"type":"object"}`))

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "sys", calls[0].Messages[0].Text)
	assert.NotEmpty(t, calls[0].OutputSchema)
}
