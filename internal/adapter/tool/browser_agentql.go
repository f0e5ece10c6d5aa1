package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

var (
	_ output.ToolPort = (*ExtractWebDataFromBrowserTool)(nil)
	_ output.ToolPort = (*GetWebElementFromBrowserTool)(nil)
)

const (
	extractFromBrowserDescription = `Extracts structured data as JSON from the web page currently open in the browser using either an AgentQL query or a Natural Language description of the data.

Provide exactly one of 'query' or 'prompt'.`

	getElementDescription = `Finds a web element on the page currently open in the browser using a Natural Language description of the element and returns its CSS selector for further interaction, like clicking or filling a form field.`
)

// BrowserOptions controls how a browser-bound tool queries the page.
type BrowserOptions struct {
	Timeout            time.Duration
	WaitForNetworkIdle bool
	IncludeHidden      bool
	Mode               entity.ResponseMode
	RequestOrigin      string
}

func DefaultDataOptions() BrowserOptions {
	return BrowserOptions{
		Timeout:            entity.DefaultExtractDataTimeout,
		WaitForNetworkIdle: entity.DefaultWaitForNetworkIdle,
		IncludeHidden:      entity.DefaultIncludeHiddenData,
		Mode:               entity.DefaultResponseMode,
	}
}

func DefaultElementOptions() BrowserOptions {
	return BrowserOptions{
		Timeout:            entity.DefaultExtractElementsTimeout,
		WaitForNetworkIdle: entity.DefaultWaitForNetworkIdle,
		IncludeHidden:      entity.DefaultIncludeHiddenElements,
		Mode:               entity.DefaultResponseMode,
	}
}

func (o BrowserOptions) QueryOptions() output.QueryOptions {
	return output.QueryOptions{
		Timeout:            o.Timeout,
		WaitForNetworkIdle: o.WaitForNetworkIdle,
		IncludeHidden:      o.IncludeHidden,
		Mode:               o.Mode,
		RequestOrigin:      o.RequestOrigin,
	}
}

func currentPage(ctx context.Context, provider output.PageProvider) (output.AgentQLPage, error) {
	if provider == nil {
		return nil, entity.NewConfigurationError(entity.MsgBrowserNotProvided)
	}
	return provider.CurrentPage(ctx)
}

// ExtractWebDataFromBrowserTool extracts data from the page the browser is on.
type ExtractWebDataFromBrowserTool struct {
	provider output.PageProvider
	opts     BrowserOptions
}

func NewExtractWebDataFromBrowserTool(provider output.PageProvider, opts BrowserOptions) *ExtractWebDataFromBrowserTool {
	return &ExtractWebDataFromBrowserTool{provider: provider, opts: opts}
}

func (t *ExtractWebDataFromBrowserTool) Name() entity.ToolName {
	return entity.ToolExtractWebDataFromBrowser
}
func (t *ExtractWebDataFromBrowserTool) Description() string { return extractFromBrowserDescription }
func (t *ExtractWebDataFromBrowserTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query":  stringProperty("AgentQL query used to extract the data. Mutually exclusive with 'prompt'."),
		"prompt": stringProperty("Natural language description of the data to extract. Mutually exclusive with 'query'."),
	})
}

func (t *ExtractWebDataFromBrowserTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Query  string `json:"query"`
		Prompt string `json:"prompt"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	input.Query = strings.TrimSpace(input.Query)
	input.Prompt = strings.TrimSpace(input.Prompt)
	if err := entity.ValidateQueryPrompt(input.Query, input.Prompt); err != nil {
		return "", err
	}

	page, err := currentPage(ctx, t.provider)
	if err != nil {
		return "", err
	}

	var data map[string]any
	if input.Query != "" {
		data, err = page.QueryData(ctx, input.Query, t.opts.QueryOptions())
	} else {
		data, err = page.GetDataByPrompt(ctx, input.Prompt, t.opts.QueryOptions())
	}
	if err != nil {
		return "", err
	}
	return encodeResult(data)
}

// GetWebElementFromBrowserTool locates an element by description and returns
// a CSS selector for it.
type GetWebElementFromBrowserTool struct {
	provider output.PageProvider
	opts     BrowserOptions
}

func NewGetWebElementFromBrowserTool(provider output.PageProvider, opts BrowserOptions) *GetWebElementFromBrowserTool {
	return &GetWebElementFromBrowserTool{provider: provider, opts: opts}
}

func (t *GetWebElementFromBrowserTool) Name() entity.ToolName {
	return entity.ToolGetWebElementFromBrowser
}
func (t *GetWebElementFromBrowserTool) Description() string { return getElementDescription }
func (t *GetWebElementFromBrowserTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"prompt": stringProperty("Natural language description of the element to find."),
	}, "prompt")
}

func (t *GetWebElementFromBrowserTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	if err := entity.ValidateQueryPrompt("", input.Prompt); err != nil {
		return "", err
	}

	page, err := currentPage(ctx, t.provider)
	if err != nil {
		return "", err
	}

	el, err := page.GetByPrompt(ctx, input.Prompt, t.opts.QueryOptions())
	if err != nil {
		return "", err
	}
	id, err := el.Attribute(ctx, elementIDAttr)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("element for %q has no %s attribute", input.Prompt, elementIDAttr)
	}
	return fmt.Sprintf("[%s='%s']", elementIDAttr, id), nil
}

const elementIDAttr = "tf623_id"

// NewBrowserToolkit returns the browser-bound AgentQL tools with their
// default options.
func NewBrowserToolkit(provider output.PageProvider, requestOrigin string) []output.ToolPort {
	data := DefaultDataOptions()
	data.RequestOrigin = requestOrigin
	element := DefaultElementOptions()
	element.RequestOrigin = requestOrigin

	return []output.ToolPort{
		NewExtractWebDataFromBrowserTool(provider, data),
		NewGetWebElementFromBrowserTool(provider, element),
	}
}
