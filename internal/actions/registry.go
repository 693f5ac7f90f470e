package actions

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// Registry holds the catalog of registered actions. Thread-safe; supports
// registration at construction time and lookup/dispatch at runtime. Beyond
// a flat name-sorted catalog, it also filters by the current URL against
// each action's AllowedDomainPatterns, so a page only sees actions valid
// for its domain.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*Action
}

func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]*Action)}
}

func (r *Registry) Register(a *Action) error {
	if a.Spec.Name == "" {
		return fmt.Errorf("%w: empty action name", ErrMissingRequiredParam)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.Spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrActionAlreadyRegistered, a.Spec.Name)
	}
	if a.Priority == 0 {
		a.Priority = 50
	}
	r.actions[a.Spec.Name] = a
	return nil
}

func (r *Registry) MustRegister(a *Action) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) *Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[name]
}

// All returns every registered action, sorted by priority descending then
// name, for deterministic prompt ordering.
func (r *Registry) All() []*Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Spec.Name < out[j].Spec.Name
	})
	return out
}

// AvailableForURL filters the registry down to actions usable on the
// current page: unconstrained
// actions are always included; an action with AllowedDomainPatterns is
// included only if the URL is known and matches at least one pattern. When
// the URL is empty (new-tab/unknown), only unconstrained actions appear.
func (r *Registry) AvailableForURL(url string) []*Action {
	all := r.All()
	out := make([]*Action, 0, len(all))
	for _, a := range all {
		if a.Spec.Unconstrained() {
			out = append(out, a)
			continue
		}
		if url == "" {
			continue
		}
		for _, pattern := range a.Spec.AllowedDomainPatterns {
			if MatchDomainPattern(pattern, url) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// DoneOnly returns a registry view containing only the terminal `done`
// action, used to build the FullActionModel/DoneOnlyActionModel forced-done
// schema swap for a forced-terminal step.
func (r *Registry) DoneOnly() *Registry {
	only := NewRegistry()
	if a := r.Get("done"); a != nil {
		only.MustRegister(a)
	}
	return only
}

// MatchDomainPattern matches a glob of the form "scheme://*.example.com/…"
// against a concrete URL. "*" matches any run of characters within one URL
// segment boundary, mirroring shell-style glob semantics used by
// path.Match, applied to the whole URL string. A pattern with no path
// part ("https://*.example.com") is matched against the URL's
// scheme://host prefix only, so it covers every path on a matching host.
func MatchDomainPattern(pattern, url string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	url = strings.TrimSuffix(url, "/")
	if i := strings.Index(pattern, "://"); i >= 0 && !strings.Contains(pattern[i+3:], "/") {
		if j := strings.Index(url, "://"); j >= 0 {
			if k := strings.IndexAny(url[j+3:], "/?#"); k >= 0 {
				url = url[:j+3+k]
			}
		}
	}
	ok, err := path.Match(pattern, url)
	if err == nil && ok {
		return true
	}
	// path.Match's "*" does not cross "/" boundaries; domain patterns like
	// "https://*.example.com/*" need a looser match across the whole
	// string, so fall back to a manual prefix/suffix/wildcard walk.
	return globMatch(pattern, url)
}

func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(s, parts[i])
		if idx == -1 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

// BuildCatalog renders the action union available for url into ActionSpecs,
// the shape handed to the structured-output schema builder for the LLM
// call.
func (r *Registry) BuildCatalog(url string) []state.ActionSpec {
	actions := r.AvailableForURL(url)
	out := make([]state.ActionSpec, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Spec)
	}
	return out
}
