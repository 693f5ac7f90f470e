package actions

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanUsername777/browseragent/internal/state"
)

func noopAction(name string, patterns ...string) *Action {
	return &Action{
		Spec: state.ActionSpec{Name: name, AllowedDomainPatterns: patterns},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			return state.TextResult(name), nil
		},
	}
}

func TestRegistry_AvailableForURL_UnconstrainedAlwaysPresent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(noopAction("done")))
	require.NoError(t, r.Register(noopAction("navigate")))

	avail := r.AvailableForURL("")
	names := map[string]bool{}
	for _, a := range avail {
		names[a.Spec.Name] = true
	}
	assert.True(t, names["done"])
	assert.True(t, names["navigate"])
}

func TestRegistry_AvailableForURL_DomainRestricted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(noopAction("site_only", "https://*.example.com/*")))
	require.NoError(t, r.Register(noopAction("global")))

	onSite := r.AvailableForURL("https://www.example.com/login")
	offSite := r.AvailableForURL("https://other.test/page")

	assertContains(t, onSite, "site_only")
	assertContains(t, onSite, "global")
	assertNotContains(t, offSite, "site_only")
	assertContains(t, offSite, "global")
}

func TestRegistry_AvailableForURL_UnknownURLOnlyUnconstrained(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(noopAction("site_only", "https://*.example.com/*")))
	require.NoError(t, r.Register(noopAction("global")))

	avail := r.AvailableForURL("")
	assertNotContains(t, avail, "site_only")
	assertContains(t, avail, "global")
}

func TestRegistry_DuplicateRegistrationFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(noopAction("x")))
	err := r.Register(noopAction("x"))
	assert.ErrorIs(t, err, ErrActionAlreadyRegistered)
}

func TestRegistry_DoneOnly(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(noopAction("done")))
	require.NoError(t, r.Register(noopAction("navigate")))

	only := r.DoneOnly()
	assert.Len(t, only.All(), 1)
	assert.Equal(t, "done", only.All()[0].Spec.Name)
}

func assertContains(t *testing.T, actions []*Action, name string) {
	t.Helper()
	for _, a := range actions {
		if a.Spec.Name == name {
			return
		}
	}
	t.Fatalf("expected %s to be present", name)
}

func assertNotContains(t *testing.T, actions []*Action, name string) {
	t.Helper()
	for _, a := range actions {
		if a.Spec.Name == name {
			t.Fatalf("expected %s to be absent", name)
		}
	}
}
