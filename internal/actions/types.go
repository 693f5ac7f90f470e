// Package actions implements the typed action registry and dispatcher:
// action schemas, URL-pattern domain filtering, special-parameter
// dependency injection, sensitive-data placeholder substitution, and
// result normalization.
package actions

import (
	"context"
	"encoding/json"

	"github.com/RomanUsername777/browseragent/internal/browser"
	"github.com/RomanUsername777/browseragent/internal/state"
)

// Deps is the fixed set of special parameters the dispatcher hands to a
// handler. Every handler receives the whole Deps value (see Handler); there
// is no per-handler declaration that limits which fields it is given.
type Deps struct {
	BrowserSession     BrowserSession
	PageURL            string
	PageExtractionLLM  Extractor
	AvailableFilePaths []string
	HasSensitiveData   bool
	FileSystem         FileSystem
	SensitiveData      state.SensitiveData
	UserInput          UserInputCallback
}

// BrowserSession is the narrow capability surface the dispatcher executes
// actions against; it mirrors the browser session facade's capability
// surface. Kept minimal here — the concrete implementation lives in
// internal/browser.
type BrowserSession interface {
	Navigate(ctx context.Context, url string) error
	GoBack(ctx context.Context) error
	Click(ctx context.Context, index int) error
	ClickCoordinate(ctx context.Context, x, y float64) error
	Input(ctx context.Context, index int, text string, clear bool) error
	SendKeys(ctx context.Context, keys string) error
	Scroll(ctx context.Context, down bool, pages float64, index *int) error
	FindText(ctx context.Context, text string) error
	ClickText(ctx context.Context, text string, exact bool) error
	ClickRole(ctx context.Context, role, name string, exact bool) error
	DropdownOptions(ctx context.Context, index int) ([]string, error)
	SelectDropdown(ctx context.Context, index int, text string) error
	Screenshot(ctx context.Context) (string, error)
	ExtractPageText(ctx context.Context) (string, error)
	GetElementByIndex(index int) (*state.EnhancedDOMNode, error)
	CurrentURL() string
	Wait(ctx context.Context, seconds float64) error
	SafeLinks(ctx context.Context) ([]browser.Link, error)
}

// Extractor is the page_extraction_llm special parameter: a narrow
// capability used only by the `extract` action.
type Extractor interface {
	Extract(ctx context.Context, query, pageText string) (string, error)
}

// FileSystem is the external filesystem collaborator.
type FileSystem interface {
	Describe() string
	GetTodoContents() string
	SaveExtractedContent(content string) (filename string, err error)
}

// UserInputCallback models the operator round-trip used by
// request_user_input / wait_for_user_input.
type UserInputCallback func(ctx context.Context, prompt string) (string, error)

// Handler executes one action given its raw parameters and the
// dispatcher's full Deps value.
type Handler func(ctx context.Context, params json.RawMessage, deps Deps) (state.ActionResult, error)

// Action pairs an ActionSpec with its handler, mirroring a Tool/Execute
// pairing, generalized from a flat string-keyed tool catalog to a typed
// action union with per-action parameter schemas.
type Action struct {
	Spec     state.ActionSpec
	Handler  Handler
	Priority int
}
