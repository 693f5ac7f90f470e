package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortener_LeavesShortURLsUntouched(t *testing.T) {
	s := NewShortener(25)
	text := "see https://example.com/page?x=1"
	assert.Equal(t, text, s.Shorten(text))
}

func TestShortener_ShortensLongQueryAndRestores(t *testing.T) {
	s := NewShortener(10)
	long := "https://example.com/search?q=a+very+long+query+string+that+exceeds+the+limit"
	text := "go to " + long + " now"

	shortened := s.Shorten(text)
	assert.NotEqual(t, text, shortened)
	assert.Contains(t, shortened, "?truncated…")
	assert.NotContains(t, shortened, "very+long")

	restored := s.RestoreString(shortened)
	assert.Equal(t, text, restored)
}

func TestShortener_RestoreWalksNestedStructures(t *testing.T) {
	s := NewShortener(10)
	long := "https://example.com/a?token=abcdefghijklmnopqrstuvwxyz"
	shortened := s.Shorten(long)

	nested := map[string]any{
		"outer": []any{
			map[string]any{"url": shortened},
			"plain string",
		},
	}

	restored := s.Restore(nested).(map[string]any)
	list := restored["outer"].([]any)
	entry := list[0].(map[string]any)
	assert.Equal(t, long, entry["url"])
	assert.Equal(t, "plain string", list[1])
}

func TestShortener_DisabledWhenLimitZero(t *testing.T) {
	s := NewShortener(0)
	long := "https://example.com/a?token=abcdefghijklmnopqrstuvwxyz"
	assert.Equal(t, long, s.Shorten(long))
}
