package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/RomanUsername777/browseragent/internal/logging"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// secretPlaceholder matches <secret>name</secret> tokens in action params.
var secretPlaceholder = regexp.MustCompile(`<secret>([^<]+)</secret>`)

// twoFactorMarker flags placeholder names that should be expanded to a
// live TOTP code rather than a substituted static value.
const twoFactorMarker = "totp"

// Dispatcher binds a Registry to its runtime dependencies and executes
// ActionInvocations, performing sensitive-data substitution before the
// handler runs and result normalization after.
type Dispatcher struct {
	Registry   *Registry
	Deps       Deps
	TOTPCode   func(secret string) (string, error)
	usedPlaceholders map[string][]string // url -> placeholder names used, for logging
}

func NewDispatcher(reg *Registry, deps Deps) *Dispatcher {
	return &Dispatcher{Registry: reg, Deps: deps, TOTPCode: GenerateTOTP, usedPlaceholders: map[string][]string{}}
}

// Dispatch resolves params, injects dependencies, substitutes sensitive
// data, and executes the named action, normalizing the handler's outcome
// into a well-formed ActionResult.
func (d *Dispatcher) Dispatch(ctx context.Context, inv state.ActionInvocation) state.ActionResult {
	a := d.Registry.Get(inv.Name)
	if a == nil {
		return state.ErrorResult(fmt.Sprintf("action not found: %s", inv.Name))
	}

	params, missing, err := d.substituteSensitiveData(inv.Params, d.Deps.PageURL)
	if err != nil {
		return state.ErrorResult(fmt.Sprintf("sensitive data substitution failed: %v", err))
	}
	for _, name := range missing {
		d.logMissingPlaceholder(d.Deps.PageURL, name)
	}

	result, err := a.Handler(ctx, params, d.Deps)
	return d.normalize(result, err)
}

// normalize maps a handler's returned error into an ActionResult.
func (d *Dispatcher) normalize(result state.ActionResult, err error) state.ActionResult {
	if err == nil {
		return result
	}

	var browserErr *BrowserError
	if errors.As(err, &browserErr) {
		return state.ActionResult{
			Error:           browserErr.Error(),
			LongTermMemory:  browserErr.LongTermMemory,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return state.ErrorResult("action was not executed due to timeout")
	}
	return state.ErrorResult(err.Error())
}

// BrowserError is a semantic browser-level error that carries an optional
// long-term-memory note for the history.
type BrowserError struct {
	Msg            string
	LongTermMemory string
}

func (e *BrowserError) Error() string { return e.Msg }

// substituteSensitiveData walks params as a generic JSON value, replacing
// every <secret>name</secret> occurrence in string values using the
// effective per-URL placeholder map, expanding TOTP placeholders live, and
// collecting names that had no matching value (kept as-is, logged as a
// warning by the caller).
func (d *Dispatcher) substituteSensitiveData(params json.RawMessage, url string) (json.RawMessage, []string, error) {
	if len(params) == 0 {
		return params, nil, nil
	}

	var generic any
	if err := json.Unmarshal(params, &generic); err != nil {
		return params, nil, err
	}

	effective := d.Deps.SensitiveData.Resolve(url, MatchDomainPattern)
	var missing []string
	used := map[string]bool{}

	replaced := substituteAny(generic, func(name string) string {
		if strings.Contains(strings.ToLower(name), twoFactorMarker) && d.TOTPCode != nil {
			if secret, ok := effective[name]; ok {
				if code, err := d.TOTPCode(secret); err == nil {
					used[name] = true
					return code
				}
			}
		}
		if v, ok := effective[name]; ok {
			used[name] = true
			return v
		}
		missing = append(missing, name)
		return "<secret>" + name + "</secret>"
	})

	for name := range used {
		d.usedPlaceholders[url] = append(d.usedPlaceholders[url], name)
	}

	out, err := json.Marshal(replaced)
	return out, missing, err
}

func substituteAny(v any, resolve func(name string) string) any {
	switch t := v.(type) {
	case string:
		return secretPlaceholder.ReplaceAllStringFunc(t, func(match string) string {
			name := secretPlaceholder.FindStringSubmatch(match)[1]
			return resolve(name)
		})
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = substituteAny(val, resolve)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = substituteAny(val, resolve)
		}
		return out
	default:
		return v
	}
}

// logMissingPlaceholder writes a warning to the actions log category for a
// placeholder that had no value for url; the placeholder itself is left in
// the params unchanged.
func (d *Dispatcher) logMissingPlaceholder(url, name string) {
	logging.Get(logging.CategoryActions).Warn("missing sensitive-data placeholder %q on %s; kept as-is", name, url)
}

// UsedPlaceholders returns, for diagnostics, the set of placeholder names
// actually substituted for a given URL so far.
func (d *Dispatcher) UsedPlaceholders(url string) []string {
	return d.usedPlaceholders[url]
}
