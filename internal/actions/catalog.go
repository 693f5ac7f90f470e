package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RomanUsername777/browseragent/internal/state"
)

// RegisterCanonical registers the canonical, always-available action set into
// reg. Grounded on internal/tools/core/register.go's static
// "RegisterAll(registry) error" construction pattern.
func RegisterCanonical(reg *Registry) error {
	for _, a := range []*Action{
		navigateAction(),
		goBackAction(),
		waitAction(),
		clickAction(),
		inputAction(),
		scrollAction(),
		sendKeysAction(),
		findTextAction(),
		clickTextAction(),
		clickRoleAction(),
		extractAction(),
		dropdownOptionsAction(),
		selectDropdownAction(),
		requestUserInputAction(),
		waitForUserInputAction(),
		screenshotAction(),
		doneAction(),
	} {
		if err := reg.Register(a); err != nil {
			return fmt.Errorf("registering %s: %w", a.Spec.Name, err)
		}
	}
	return nil
}

func schema(props map[string]string, required ...string) json.RawMessage {
	s := map[string]any{"type": "object", "properties": props, "required": required}
	b, _ := json.Marshal(s)
	return b
}

func decode[T any](params json.RawMessage) (T, error) {
	var v T
	if len(params) == 0 {
		return v, nil
	}
	err := json.Unmarshal(params, &v)
	return v, err
}

// --- navigate ---------------------------------------------------------

type navigateParams struct {
	URL string `json:"url"`
}

func navigateAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "navigate",
			Description: "Navigate the current tab to a URL.",
			ParamSchema: schema(map[string]string{"url": "string"}, "url"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[navigateParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if err := deps.BrowserSession.Navigate(ctx, p.URL); err != nil {
				return state.ActionResult{}, classifyNavigationError(err)
			}
			return state.TextResult("navigated to " + p.URL), nil
		},
	}
}

// classifyNavigationError maps common CDP network errors to a user-visible
// "site unavailable" long-term-memory note.
func classifyNavigationError(err error) error {
	msg := err.Error()
	for _, code := range []string{"ERR_NAME_NOT_RESOLVED", "ERR_CONNECTION_REFUSED", "net::"} {
		if strings.Contains(msg, code) {
			return &BrowserError{Msg: msg, LongTermMemory: "site was unavailable"}
		}
	}
	return err
}

// --- go_back ------------------------------------------------------------

func goBackAction() *Action {
	return &Action{
		Spec: state.ActionSpec{Name: "go_back", Description: "Navigate back in tab history."},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			if err := deps.BrowserSession.GoBack(ctx); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("went back"), nil
		},
	}
}

// --- wait -----------------------------------------------------------------

type waitParams struct {
	Seconds float64 `json:"seconds"`
}

func waitAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "wait",
			Description: "Wait for a number of seconds, clamped to [0,30].",
			ParamSchema: schema(map[string]string{"seconds": "number"}, "seconds"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[waitParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			secs := p.Seconds
			if secs < 0 {
				secs = 0
			}
			if secs > 30 {
				secs = 30
			}
			secs -= 1 // one second is already spent before the caller observes the new state
			if secs < 0 {
				secs = 0
			}
			if err := deps.BrowserSession.Wait(ctx, secs); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult(fmt.Sprintf("waited %.0fs", secs)), nil
		},
	}
}

// --- click ------------------------------------------------------------

type clickParams struct {
	Index       *int     `json:"index,omitempty"`
	CoordinateX *float64 `json:"coordinate_x,omitempty"`
	CoordinateY *float64 `json:"coordinate_y,omitempty"`
}

func clickAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "click",
			Description: "Click an element by selector-map index, or a viewport coordinate. Exactly one mode.",
			ParamSchema: schema(map[string]string{"index": "integer", "coordinate_x": "number", "coordinate_y": "number"}),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[clickParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			indexMode := p.Index != nil
			coordMode := p.CoordinateX != nil && p.CoordinateY != nil
			if indexMode == coordMode {
				return state.ActionResult{}, &BrowserError{Msg: "click requires exactly one of index or coordinate"}
			}

			if coordMode {
				if err := deps.BrowserSession.ClickCoordinate(ctx, *p.CoordinateX, *p.CoordinateY); err != nil {
					return state.ActionResult{}, err
				}
				return state.TextResult(fmt.Sprintf("clicked at (%.0f, %.0f)", *p.CoordinateX, *p.CoordinateY)), nil
			}

			node, err := deps.BrowserSession.GetElementByIndex(*p.Index)
			if err != nil {
				return state.ErrorResult(fmt.Sprintf("element with index %d is not available", *p.Index)), nil
			}
			if node.TagName == "select" {
				// clicking <select> is rejected and falls through
				// to dropdown_options.
				opts, err := deps.BrowserSession.DropdownOptions(ctx, *p.Index)
				if err != nil {
					return state.ActionResult{}, err
				}
				return state.TextResult("options: " + strings.Join(opts, ", ")), nil
			}

			if err := deps.BrowserSession.Click(ctx, *p.Index); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult(fmt.Sprintf("clicked element [%d]", *p.Index)), nil
		},
	}
}

// --- input ------------------------------------------------------------

type inputParams struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	Clear      bool   `json:"clear"`
	PressEnter bool   `json:"press_enter"`
}

func inputAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "input",
			Description: "Type text into an element by index, optionally clearing first and pressing Enter after.",
			ParamSchema: schema(map[string]string{"index": "integer", "text": "string", "clear": "boolean", "press_enter": "boolean"}, "index", "text"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[inputParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if err := deps.BrowserSession.Input(ctx, p.Index, p.Text, p.Clear); err != nil {
				return state.ActionResult{}, err
			}
			if p.PressEnter {
				_ = deps.BrowserSession.SendKeys(ctx, "Enter")
			}
			return state.TextResult(fmt.Sprintf("typed into element [%d]", p.Index)), nil
		},
	}
}

// --- scroll -----------------------------------------------------------

type scrollParams struct {
	Down  bool     `json:"down"`
	Pages float64  `json:"pages"`
	Index *int     `json:"index,omitempty"`
}

func scrollAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "scroll",
			Description: "Scroll the page or a specific scrollable container, pages in [0.1, 10.0].",
			ParamSchema: schema(map[string]string{"down": "boolean", "pages": "number", "index": "integer"}, "down", "pages"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[scrollParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			pages := p.Pages
			if pages < 0.1 {
				pages = 0.1
			}
			if pages > 10.0 {
				pages = 10.0
			}
			if err := deps.BrowserSession.Scroll(ctx, p.Down, pages, p.Index); err != nil {
				return state.ActionResult{}, err
			}
			dir := "down"
			if !p.Down {
				dir = "up"
			}
			return state.TextResult(fmt.Sprintf("scrolled %s %.1f pages", dir, pages)), nil
		},
	}
}

// --- send_keys ----------------------------------------------------------

type sendKeysParams struct {
	Keys string `json:"keys"`
}

func sendKeysAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "send_keys",
			Description: "Send a raw key sequence to the focused element.",
			ParamSchema: schema(map[string]string{"keys": "string"}, "keys"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[sendKeysParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if err := deps.BrowserSession.SendKeys(ctx, p.Keys); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("sent keys " + p.Keys), nil
		},
	}
}

// --- find_text / click_text / click_role -------------------------------

type textParams struct {
	Text  string `json:"text"`
	Exact bool   `json:"exact"`
}

func findTextAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "find_text",
			Description: "Scroll the page so the given text is in view.",
			ParamSchema: schema(map[string]string{"text": "string"}, "text"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[textParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if err := deps.BrowserSession.FindText(ctx, p.Text); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("scrolled to text"), nil
		},
	}
}

func clickTextAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "click_text",
			Description: "JS-evaluated fallback: click the first element matching visible text.",
			ParamSchema: schema(map[string]string{"text": "string", "exact": "boolean"}, "text"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[textParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if err := deps.BrowserSession.ClickText(ctx, p.Text, p.Exact); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("clicked text " + p.Text), nil
		},
	}
}

type clickRoleParams struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Exact bool   `json:"exact"`
}

func clickRoleAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "click_role",
			Description: "JS-evaluated fallback: click the first element matching an accessible role and name.",
			ParamSchema: schema(map[string]string{"role": "string", "name": "string", "exact": "boolean"}, "role"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[clickRoleParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if err := deps.BrowserSession.ClickRole(ctx, p.Role, p.Name, p.Exact); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("clicked role " + p.Role), nil
		},
	}
}

// --- extract ------------------------------------------------------------

const extractTruncateLimit = 30_000

type extractParams struct {
	Query          string `json:"query"`
	ExtractLinks   bool   `json:"extract_links"`
	StartFromChar  int    `json:"start_from_char"`
}

func extractAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "extract",
			Description: "Extract cleaned page content for query via the extraction LLM.",
			ParamSchema: schema(map[string]string{"query": "string", "extract_links": "boolean", "start_from_char": "integer"}, "query"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[extractParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			pageText, err := deps.BrowserSession.ExtractPageText(ctx)
			if err != nil {
				return state.ActionResult{}, err
			}
			if p.StartFromChar > 0 && p.StartFromChar < len(pageText) {
				pageText = pageText[p.StartFromChar:]
			}
			nextStart := -1
			if len(pageText) > extractTruncateLimit {
				cut := naturalBoundary(pageText, extractTruncateLimit)
				nextStart = p.StartFromChar + cut
				pageText = pageText[:cut]
			}
			if deps.PageExtractionLLM == nil {
				return state.ActionResult{}, &BrowserError{Msg: "no extraction LLM configured"}
			}
			result, err := deps.PageExtractionLLM.Extract(ctx, p.Query, pageText)
			if err != nil {
				return state.ActionResult{}, err
			}
			if p.ExtractLinks {
				if links, err := deps.BrowserSession.SafeLinks(ctx); err == nil && len(links) > 0 {
					var b strings.Builder
					for _, l := range links {
						fmt.Fprintf(&b, "\n- %s (%s)", l.Text, l.Href)
					}
					result += "\n\nLinks found on page:" + b.String()
				}
			}
			wrapped := fmt.Sprintf("<url>%s</url><query>%s</query><result>%s</result>", deps.PageURL, p.Query, result)
			ar := state.TextResult(wrapped)
			ar.IncludeExtractedContentOnlyOnce = true
			if nextStart >= 0 {
				if ar.Metadata == nil {
					ar.Metadata = map[string]string{}
				}
				ar.Metadata["next_start_char"] = fmt.Sprintf("%d", nextStart)
			}
			return ar, nil
		},
	}
}

// naturalBoundary finds the last whitespace at or before limit, to avoid
// truncating mid-word.
func naturalBoundary(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	for i := limit; i > 0; i-- {
		if s[i] == ' ' || s[i] == '\n' {
			return i
		}
	}
	return limit
}

// --- dropdown_options / select_dropdown ---------------------------------

type indexParams struct {
	Index int `json:"index"`
}

func dropdownOptionsAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "dropdown_options",
			Description: "List the options of a <select> element by index.",
			ParamSchema: schema(map[string]string{"index": "integer"}, "index"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[indexParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			opts, err := deps.BrowserSession.DropdownOptions(ctx, p.Index)
			if err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("options: " + strings.Join(opts, ", ")), nil
		},
	}
}

type selectDropdownParams struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func selectDropdownAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "select_dropdown",
			Description: "Select a <select> option by visible text.",
			ParamSchema: schema(map[string]string{"index": "integer", "text": "string"}, "index", "text"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[selectDropdownParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if err := deps.BrowserSession.SelectDropdown(ctx, p.Index, p.Text); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("selected " + p.Text), nil
		},
	}
}

// --- request_user_input / wait_for_user_input ---------------------------

type promptParams struct {
	Prompt  string `json:"prompt"`
	Message string `json:"message"`
}

func requestUserInputAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "request_user_input",
			Description: "Block for operator input (e.g. CAPTCHA, manual credential entry).",
			ParamSchema: schema(map[string]string{"prompt": "string"}, "prompt"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[promptParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if deps.UserInput == nil {
				return state.ActionResult{}, &BrowserError{Msg: "request_user_input requires a wired UserInputCallback"}
			}
			reply, err := deps.UserInput(ctx, p.Prompt)
			if err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult(reply), nil
		},
	}
}

func waitForUserInputAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "wait_for_user_input",
			Description: "Block until the operator confirms the given message.",
			ParamSchema: schema(map[string]string{"message": "string"}, "message"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[promptParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			if deps.UserInput == nil {
				return state.ActionResult{}, &BrowserError{Msg: "wait_for_user_input requires a wired UserInputCallback"}
			}
			if _, err := deps.UserInput(ctx, p.Message); err != nil {
				return state.ActionResult{}, err
			}
			return state.TextResult("confirmed"), nil
		},
	}
}

// --- screenshot -----------------------------------------------------------

func screenshotAction() *Action {
	return &Action{
		Spec: state.ActionSpec{Name: "screenshot", Description: "Flag that the next state build should capture a screenshot."},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			ar := state.TextResult("screenshot requested")
			ar.Metadata = map[string]string{"screenshot_requested": "true"}
			return ar, nil
		},
	}
}

// --- done -----------------------------------------------------------------

type doneParams struct {
	Success bool            `json:"success"`
	Text    string          `json:"text"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func doneAction() *Action {
	return &Action{
		Spec: state.ActionSpec{
			Name:        "done",
			Description: "Terminal action: end the run.",
			ParamSchema: schema(map[string]string{"success": "boolean", "text": "string", "data": "object"}, "success", "text"),
		},
		Handler: func(ctx context.Context, raw json.RawMessage, deps Deps) (state.ActionResult, error) {
			p, err := decode[doneParams](raw)
			if err != nil {
				return state.ActionResult{}, err
			}
			result := state.Done(p.Success, p.Text)
			if len(p.Data) > 0 {
				if result.Metadata == nil {
					result.Metadata = map[string]string{}
				}
				result.Metadata["data"] = string(p.Data)
			}
			return result, nil
		},
	}
}
