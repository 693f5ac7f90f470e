package message

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// Shortener replaces long query+fragment suffixes with a short, stable
// stand-in before a prompt goes out, and restores them in the model's
// structured output afterward. The mapping lives only in memory and grows
// for the lifetime of the Shortener (one per Manager, so one per run); it
// is never required to survive a restart.
type Shortener struct {
	mu    sync.Mutex
	limit int
	toLong map[string]string // shortened url -> original url
}

// NewShortener builds a Shortener with the given query+fragment length
// limit. A limit <= 0 disables shortening (Shorten becomes the identity).
func NewShortener(limit int) *Shortener {
	return &Shortener{limit: limit, toLong: map[string]string{}}
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>)]+`)

// Shorten rewrites every URL embedded in text whose query+fragment suffix
// exceeds the configured limit, recording the reverse mapping.
func (s *Shortener) Shorten(text string) string {
	if s.limit <= 0 {
		return text
	}
	return urlPattern.ReplaceAllStringFunc(text, s.shortenOne)
}

func (s *Shortener) shortenOne(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	suffix := u.RawQuery
	if u.Fragment != "" {
		suffix += "#" + u.Fragment
	}
	if len(suffix) <= s.limit {
		return raw
	}

	base := u.Scheme + "://" + u.Host + u.Path
	sum := sha256.Sum256([]byte(raw))
	hash7 := hex.EncodeToString(sum[:])[:7]
	short := base + "?truncated…" + hash7

	s.mu.Lock()
	s.toLong[short] = raw
	s.mu.Unlock()

	return short
}

// Restore walks an arbitrary JSON-decoded value (map[string]any,
// []any, string, or scalar) and replaces every shortened URL it finds
// with the original, recursively.
func (s *Shortener) Restore(v any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restore(v)
}

func (s *Shortener) restore(v any) any {
	switch t := v.(type) {
	case string:
		out := t
		for short, long := range s.toLong {
			if strings.Contains(out, short) {
				out = strings.ReplaceAll(out, short, long)
			}
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = s.restore(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = s.restore(val)
		}
		return t
	default:
		return v
	}
}

// RestoreString restores shortened URLs within a single string, without
// the map/slice walk — used for the final text answer and similar
// scalar fields that don't go through structured-output decoding.
func (s *Shortener) RestoreString(text string) string {
	result := s.restore(text)
	str, _ := result.(string)
	return str
}
