package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/RomanUsername777/browseragent/internal/logging"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// jsNode mirrors the shape produced by snapshotScript.
type jsNode struct {
	NodeType      int                `json:"nodeType"`
	TagName       string             `json:"tagName"`
	TextValue     string             `json:"textValue"`
	BackendNodeID int                `json:"backendNodeId"`
	Attributes    map[string]string  `json:"attributes"`
	ViewportBounds jsRect            `json:"viewportBounds"`
	ClientRect     jsRect            `json:"clientRect"`
	ScrollRect     jsRect            `json:"scrollRect"`
	ComputedStyles map[string]string `json:"computedStyles"`
	PaintOrder     int               `json:"paintOrder"`
	IsClickable    bool              `json:"isClickable"`
	IsVisible      bool              `json:"isVisible"`
	AXRole         string            `json:"axRole"`
	AXName         string            `json:"axName"`
	Children       []jsNode          `json:"children"`
}

type jsRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Session is one incognito browser context: a single tab's worth of
// navigation, interaction, and DOM capture, backed by go-rod.
type Session struct {
	mu sync.Mutex

	profile   Profile
	id        string
	browser   *rod.Browser
	launcherC *launcher.Launcher
	page      *rod.Page

	lastState   *state.SerializedDOMState
	selectorMap state.SelectorMap
	startedAt   time.Time
}

// NewSession launches a fresh Chromium process and opens one incognito
// page. The caller owns the returned Session's lifetime and must call
// Close.
func NewSession(ctx context.Context, profile Profile) (*Session, error) {
	l := launcher.New().
		Headless(profile.Headless).
		Set("window-size", fmt.Sprintf("%d,%d", profile.ViewportWidth, profile.ViewportHeight))
	if profile.ProxyURL != "" {
		l = l.Set("proxy-server", profile.ProxyURL)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch chromium: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect to devtools: %w", err)
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("browser: open incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("browser: open page: %w", err)
	}

	if err := proto.EmulationSetDeviceMetricsOverride{
		Width:             profile.ViewportWidth,
		Height:            profile.ViewportHeight,
		DeviceScaleFactor: profile.DeviceScaleFactor,
		Mobile:            false,
	}.Call(page); err != nil {
		return nil, fmt.Errorf("browser: set viewport: %w", err)
	}

	s := &Session{
		profile:   profile,
		id:        uuid.NewString(),
		browser:   b,
		launcherC: l,
		page:      page,
		startedAt: time.Now(),
	}

	if profile.StorageStatePath != "" {
		if err := s.restoreStorage(profile.StorageStatePath); err != nil {
			// a missing or corrupt storage snapshot is not fatal; the
			// session just starts logged out.
			_ = err
		}
	}

	return s, nil
}

func (s *Session) ID() string { return s.id }

// Close tears down the page and the underlying Chromium process.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.StorageStatePath != "" {
		_ = s.snapshotStorage(s.profile.StorageStatePath)
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcherC != nil {
		s.launcherC.Cleanup()
	}
	return nil
}

func (s *Session) ctxPage(ctx context.Context) *rod.Page {
	return s.page.Context(ctx)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	timeout := s.profile.navigationTimeout()
	return s.ctxPage(ctx).Timeout(timeout).Navigate(url)
}

func (s *Session) GoBack(ctx context.Context) error {
	return s.ctxPage(ctx).NavigateBack()
}

func (s *Session) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (s *Session) Wait(ctx context.Context, seconds float64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return nil
	}
}

// elementFor resolves an interactive-index into a live *rod.Element via the
// data-agent-idx stamp applied by GetBrowserStateSummary's snapshot walk.
func (s *Session) elementFor(ctx context.Context, index int) (*rod.Element, error) {
	sel := fmt.Sprintf(`[data-agent-idx="%d"]`, index)
	el, err := s.ctxPage(ctx).Timeout(s.profile.ActionTimeout).Element(sel)
	if err != nil {
		return nil, ErrElementNotFound
	}
	return el, nil
}

func (s *Session) Click(ctx context.Context, index int) error {
	el, err := s.elementFor(ctx, index)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *Session) ClickCoordinate(ctx context.Context, x, y float64) error {
	mouse := s.ctxPage(ctx).Mouse
	if err := mouse.MoveTo(rodPoint(x, y)); err != nil {
		return err
	}
	return mouse.Click(proto.InputMouseButtonLeft, 1)
}

func (s *Session) Input(ctx context.Context, index int, text string, clear bool) error {
	el, err := s.elementFor(ctx, index)
	if err != nil {
		return err
	}
	if clear {
		if err := el.SelectAllText(); err != nil {
			return err
		}
		if err := el.Input(""); err != nil {
			return err
		}
	}
	return el.Input(text)
}

func (s *Session) SendKeys(ctx context.Context, keys string) error {
	return s.ctxPage(ctx).Keyboard.Type(keyInputFor(keys)...)
}

func (s *Session) Scroll(ctx context.Context, down bool, pages float64, index *int) error {
	delta := pages * float64(s.profile.ViewportHeight)
	if !down {
		delta = -delta
	}
	if index != nil {
		el, err := s.elementFor(ctx, *index)
		if err == nil {
			return el.ScrollBy(0, delta, 0)
		}
	}
	return s.ctxPage(ctx).Mouse.Scroll(0, delta, 1)
}

func (s *Session) FindText(ctx context.Context, text string) error {
	el, err := s.ctxPage(ctx).Timeout(s.profile.ActionTimeout).ElementR("*", text)
	if err != nil {
		return ErrElementNotFound
	}
	return el.ScrollIntoView()
}

func (s *Session) ClickText(ctx context.Context, text string, exact bool) error {
	el, err := s.ctxPage(ctx).Timeout(s.profile.ActionTimeout).ElementR("*", text)
	if err != nil {
		return ErrElementNotFound
	}
	if result, isHoneypot := IsHoneypot(el); isHoneypot {
		logging.BrowserDebug("refusing to click %q, looks like a honeypot: %v", text, result.Reasons)
		return ErrElementNotFound
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *Session) ClickRole(ctx context.Context, role, name string, exact bool) error {
	sel := fmt.Sprintf(`[role="%s"]`, role)
	el, err := s.ctxPage(ctx).Timeout(s.profile.ActionTimeout).Element(sel)
	if err != nil {
		return ErrElementNotFound
	}
	if result, isHoneypot := IsHoneypot(el); isHoneypot {
		logging.BrowserDebug("refusing to click role %q, looks like a honeypot: %v", role, result.Reasons)
		return ErrElementNotFound
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// SafeLinks returns every on-page link that doesn't look like a
// honeypot trap, for the extract action's link-harvesting mode.
func (s *Session) SafeLinks(ctx context.Context) ([]Link, error) {
	return GetSafeLinks(s.ctxPage(ctx))
}

func (s *Session) DropdownOptions(ctx context.Context, index int) ([]string, error) {
	el, err := s.elementFor(ctx, index)
	if err != nil {
		return nil, err
	}
	val, err := el.Eval(`() => Array.from(this.options || []).map(o => o.text)`)
	if err != nil {
		return nil, err
	}
	var opts []string
	if err := val.Value.Unmarshal(&opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (s *Session) SelectDropdown(ctx context.Context, index int, text string) error {
	el, err := s.elementFor(ctx, index)
	if err != nil {
		return err
	}
	_, err = el.Eval(fmt.Sprintf(`() => {
		const opts = Array.from(this.options || []);
		const match = opts.find(o => o.text === %q);
		if (!match) return false;
		this.value = match.value;
		this.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	}`, text))
	return err
}

func (s *Session) Screenshot(ctx context.Context) (string, error) {
	data, err := s.ctxPage(ctx).Screenshot(true, nil)
	if err != nil {
		return "", err
	}
	return base64Encode(data), nil
}

func (s *Session) ExtractPageText(ctx context.Context) (string, error) {
	val, err := s.ctxPage(ctx).Evaluate(&rod.EvalOptions{
		JS: `() => document.body ? document.body.innerText : ''`,
	})
	if err != nil {
		return "", err
	}
	return val.Value.String(), nil
}

func (s *Session) GetElementByIndex(index int) (*state.EnhancedDOMNode, error) {
	if s.selectorMap == nil {
		return nil, state.ErrStaleIndex
	}
	n, ok := s.selectorMap[index]
	if !ok {
		return nil, state.ErrStaleIndex
	}
	return n, nil
}

// BuildStateFunc matches internal/dom.BuildSerializedDOMState's signature,
// passed in rather than imported directly to keep internal/browser free of
// a dependency on internal/dom.
type BuildStateFunc func(root *state.EnhancedDOMNode, mode state.RenderMode) (state.SerializedDOMState, string)

// GetBrowserStateSummary walks the live DOM via snapshotScript, runs it
// through the serializer pipeline, and returns the resulting summary plus
// the rendered text the message manager embeds in the prompt.
func (s *Session) GetBrowserStateSummary(ctx context.Context, mode state.RenderMode, build BuildStateFunc) (*state.BrowserStateSummary, string, error) {
	val, err := s.ctxPage(ctx).Evaluate(&rod.EvalOptions{JS: snapshotScript})
	if err != nil {
		return nil, "", fmt.Errorf("browser: capture dom snapshot: %w", err)
	}

	var root jsNode
	if err := json.Unmarshal([]byte(val.Value.String()), &root); err != nil {
		return nil, "", fmt.Errorf("browser: decode dom snapshot: %w", err)
	}

	enhanced := toEnhancedNode(&root, nil)
	serialized, text := build(enhanced, mode)

	s.mu.Lock()
	s.lastState = &serialized
	s.selectorMap = serialized.SelectorMap
	s.mu.Unlock()

	info, _ := s.page.Info()
	url, title := "", ""
	if info != nil {
		url, title = info.URL, info.Title
	}

	// A failed capture leaves the screenshot empty rather than failing the step.
	shot, _ := s.Screenshot(ctx)

	return &state.BrowserStateSummary{
		URL:                 url,
		Title:               title,
		Tabs:                []state.TabInfo{{TargetID: string(s.page.TargetID), URL: url, Title: title}},
		DOMState:            serialized,
		ScreenshotPNGBase64: shot,
	}, text, nil
}

func toEnhancedNode(n *jsNode, parent *state.EnhancedDOMNode) *state.EnhancedDOMNode {
	if n == nil {
		return nil
	}
	if n.NodeType == 1 {
		return &state.EnhancedDOMNode{
			NodeType:  state.NodeTypeText,
			TextValue: n.TextValue,
			Parent:    parent,
		}
	}

	out := &state.EnhancedDOMNode{
		NodeType:       state.NodeTypeElement,
		TagName:        n.TagName,
		BackendNodeID:  n.BackendNodeID,
		Attributes:     n.Attributes,
		ViewportBounds: state.Bounds{X: n.ViewportBounds.X, Y: n.ViewportBounds.Y, Width: n.ViewportBounds.Width, Height: n.ViewportBounds.Height},
		ClientRect:     state.Bounds{X: n.ClientRect.X, Y: n.ClientRect.Y, Width: n.ClientRect.Width, Height: n.ClientRect.Height},
		ScrollRect:     state.Bounds{X: n.ScrollRect.X, Y: n.ScrollRect.Y, Width: n.ScrollRect.Width, Height: n.ScrollRect.Height},
		ComputedStyles: n.ComputedStyles,
		PaintOrder:     n.PaintOrder,
		HasPaintOrder:  true,
		IsClickable:    n.IsClickable,
		IsVisible:      n.IsVisible,
		AX:             &state.AXInfo{Role: n.AXRole, Name: n.AXName},
		Parent:         parent,
	}
	for _, c := range n.Children {
		child := toEnhancedNode(&c, out)
		if child != nil {
			out.Children = append(out.Children, child)
		}
	}
	return out
}

func (s *Session) snapshotStorage(path string) error {
	cookies, err := proto.NetworkGetCookies{}.Call(s.page)
	if err != nil {
		return err
	}
	local, err := s.page.Eval(`() => JSON.stringify(localStorage)`)
	localJSON := "{}"
	if err == nil {
		localJSON = local.Value.String()
	}

	snapshot := storageSnapshot{
		Cookies:      cookies.Cookies,
		LocalStorage: json.RawMessage(localJSON),
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(path, data)
}

func (s *Session) restoreStorage(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap storageSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	params := make([]*proto.NetworkCookieParam, 0, len(snap.Cookies))
	for _, c := range snap.Cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
		})
	}
	if len(params) > 0 {
		if err := proto.NetworkSetCookies{Cookies: params}.Call(s.page); err != nil {
			return err
		}
	}
	if len(snap.LocalStorage) > 0 {
		_, _ = s.page.Eval(fmt.Sprintf(`() => {
			const obj = %s;
			for (const k in obj) localStorage.setItem(k, obj[k]);
		}`, string(snap.LocalStorage)))
	}
	return nil
}

type storageSnapshot struct {
	Cookies      []*proto.NetworkCookie `json:"cookies"`
	LocalStorage json.RawMessage        `json:"localStorage"`
}
