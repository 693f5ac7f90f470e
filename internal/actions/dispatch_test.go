package actions

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanUsername777/browseragent/internal/browser"
	"github.com/RomanUsername777/browseragent/internal/state"
)

type fakeSession struct {
	nodes           map[int]*state.EnhancedDOMNode
	clickedIndex    int
	typedText       string
	typedSensitive  bool
	currentURL      string
	dropdownOptions []string
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error { return nil }
func (f *fakeSession) GoBack(ctx context.Context) error               { return nil }
func (f *fakeSession) Click(ctx context.Context, index int) error {
	f.clickedIndex = index
	return nil
}
func (f *fakeSession) ClickCoordinate(ctx context.Context, x, y float64) error { return nil }
func (f *fakeSession) Input(ctx context.Context, index int, text string, clear bool) error {
	f.typedText = text
	return nil
}
func (f *fakeSession) SendKeys(ctx context.Context, keys string) error { return nil }
func (f *fakeSession) Scroll(ctx context.Context, down bool, pages float64, index *int) error {
	return nil
}
func (f *fakeSession) FindText(ctx context.Context, text string) error              { return nil }
func (f *fakeSession) ClickText(ctx context.Context, text string, exact bool) error { return nil }
func (f *fakeSession) ClickRole(ctx context.Context, role, name string, exact bool) error {
	return nil
}
func (f *fakeSession) DropdownOptions(ctx context.Context, index int) ([]string, error) {
	return f.dropdownOptions, nil
}
func (f *fakeSession) SelectDropdown(ctx context.Context, index int, text string) error { return nil }
func (f *fakeSession) Screenshot(ctx context.Context) (string, error)                   { return "", nil }
func (f *fakeSession) ExtractPageText(ctx context.Context) (string, error)              { return "", nil }
func (f *fakeSession) GetElementByIndex(index int) (*state.EnhancedDOMNode, error) {
	if n, ok := f.nodes[index]; ok {
		return n, nil
	}
	return nil, state.ErrStaleIndex
}
func (f *fakeSession) CurrentURL() string                        { return f.currentURL }
func (f *fakeSession) Wait(ctx context.Context, seconds float64) error { return nil }
func (f *fakeSession) SafeLinks(ctx context.Context) ([]browser.Link, error) {
	return nil, nil
}

func TestDispatch_ClickOnSelectShortcutsToDropdownOptions(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterCanonical(reg))

	session := &fakeSession{
		nodes:           map[int]*state.EnhancedDOMNode{7: {TagName: "select"}},
		dropdownOptions: []string{"Red", "Green", "Blue"},
	}
	d := NewDispatcher(reg, Deps{BrowserSession: session})

	result := d.Dispatch(context.Background(), state.ActionInvocation{
		Name:   "click",
		Params: json.RawMessage(`{"index": 7}`),
	})

	assert.False(t, result.IsError())
	assert.Contains(t, result.ExtractedContent, "Red")
}

func TestDispatch_StaleIndexBecomesErrorResultNotFailure(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterCanonical(reg))

	session := &fakeSession{nodes: map[int]*state.EnhancedDOMNode{}}
	d := NewDispatcher(reg, Deps{BrowserSession: session})

	result := d.Dispatch(context.Background(), state.ActionInvocation{
		Name:   "click",
		Params: json.RawMessage(`{"index": 42}`),
	})

	assert.True(t, result.IsError())
	assert.Contains(t, result.Error, "element with index 42 is not available")
}

func TestDispatch_SensitiveDataSubstitutionScopedToDomain(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterCanonical(reg))

	session := &fakeSession{
		nodes:      map[int]*state.EnhancedDOMNode{3: {TagName: "input"}},
		currentURL: "https://www.example.com/login",
	}
	sensitive := state.SensitiveData{ByDomain: map[string]map[string]string{
		"https://*.example.com": {"x_password": "hunter2"},
	}}
	d := NewDispatcher(reg, Deps{
		BrowserSession: session,
		PageURL:        "https://www.example.com/login",
		SensitiveData:  sensitive,
	})

	result := d.Dispatch(context.Background(), state.ActionInvocation{
		Name:   "input",
		Params: json.RawMessage(`{"index": 3, "text": "<secret>x_password</secret>"}`),
	})

	assert.False(t, result.IsError())
	assert.Equal(t, "hunter2", session.typedText)
}

func TestDispatch_SensitiveDataKeptAsPlaceholderOffDomain(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterCanonical(reg))

	session := &fakeSession{nodes: map[int]*state.EnhancedDOMNode{3: {TagName: "input"}}}
	sensitive := state.SensitiveData{ByDomain: map[string]map[string]string{
		"https://*.example.com": {"x_password": "hunter2"},
	}}
	d := NewDispatcher(reg, Deps{
		BrowserSession: session,
		PageURL:        "https://unrelated.test/",
		SensitiveData:  sensitive,
	})

	result := d.Dispatch(context.Background(), state.ActionInvocation{
		Name:   "input",
		Params: json.RawMessage(`{"index": 3, "text": "<secret>x_password</secret>"}`),
	})

	assert.False(t, result.IsError())
	assert.Equal(t, "<secret>x_password</secret>", session.typedText)
}

func TestDispatch_DoneRequiresSuccessImpliesIsDone(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterCanonical(reg))
	d := NewDispatcher(reg, Deps{})

	result := d.Dispatch(context.Background(), state.ActionInvocation{
		Name:   "done",
		Params: json.RawMessage(`{"success": true, "text": "finished"}`),
	})

	require.NotNil(t, result.Success)
	assert.True(t, *result.Success)
	assert.True(t, result.IsDone)
	assert.True(t, result.Valid())
}
