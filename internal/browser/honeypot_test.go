package browser

import "testing"

func TestHoneypotReasons(t *testing.T) {
	tests := []struct {
		name     string
		sig      elementSignature
		expected []string
	}{
		{
			name:     "display none",
			sig:      elementSignature{styles: map[string]string{"display": "none"}},
			expected: []string{"hidden via display:none"},
		},
		{
			name:     "visibility hidden",
			sig:      elementSignature{styles: map[string]string{"visibility": "hidden"}},
			expected: []string{"hidden via visibility:hidden"},
		},
		{
			name:     "opacity zero",
			sig:      elementSignature{styles: map[string]string{"opacity": "0"}},
			expected: []string{"hidden via opacity:0"},
		},
		{
			name:     "pointer events disabled",
			sig:      elementSignature{styles: map[string]string{"pointerEvents": "none"}},
			expected: []string{"pointer events disabled"},
		},
		{
			name:     "offscreen",
			sig:      elementSignature{hasBox: true, x: -9999, y: 0, w: 100, h: 100},
			expected: []string{"positioned off-screen"},
		},
		{
			name:     "zero size",
			sig:      elementSignature{hasBox: true, x: 100, y: 100, w: 0, h: 0},
			expected: []string{"zero or near-zero size"},
		},
		{
			name:     "aria hidden",
			sig:      elementSignature{attrs: map[string]string{"aria-hidden": "true"}},
			expected: []string{"marked as aria-hidden"},
		},
		{
			name:     "negative tabindex",
			sig:      elementSignature{attrs: map[string]string{"tabindex": "-1"}},
			expected: []string{"not keyboard accessible (negative tabindex)"},
		},
		{
			name:     "suspicious url",
			sig:      elementSignature{href: "https://example.com/honeypot-link"},
			expected: []string{"suspicious URL pattern"},
		},
		{
			name: "normal visible element",
			sig: elementSignature{
				styles: map[string]string{"display": "block", "visibility": "visible", "opacity": "1"},
				hasBox: true, x: 100, y: 100, w: 50, h: 20,
				href: "https://example.com/about",
			},
			expected: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reasons := honeypotReasons(tc.sig)
			if len(reasons) != len(tc.expected) {
				t.Fatalf("expected %d reasons, got %d: %v", len(tc.expected), len(reasons), reasons)
			}
			for i, want := range tc.expected {
				if reasons[i] != want {
					t.Errorf("reason %d: expected %q, got %q", i, want, reasons[i])
				}
			}
		})
	}
}

func TestConfidenceFor(t *testing.T) {
	if got := confidenceFor(nil); got != 0 {
		t.Errorf("expected 0 confidence for no reasons, got %v", got)
	}
	one := confidenceFor([]string{"a"})
	if one <= 0.5 || one > 1.0 {
		t.Errorf("expected confidence in (0.5, 1.0] for one reason, got %v", one)
	}
	many := confidenceFor([]string{"a", "b", "c", "d", "e"})
	if many != 1.0 {
		t.Errorf("expected confidence capped at 1.0, got %v", many)
	}
}
