package rod

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/browser/rodwrapper"

	"github.com/go-rod/rod"
)

var (
	_ output.AgentQLPage  = (*AgentQLPage)(nil)
	_ output.Element      = (*Element)(nil)
	_ output.PageProvider = (*PageProvider)(nil)
)

var ErrElementNotFound = errors.New("no element matched the prompt")

const (
	elementField    = "element_tf623_id"
	networkIdleWait = 10 * time.Second
)

// stampScript gives every element a stable tf623_id so the snapshot sent to
// the service can be mapped back to live nodes.
const stampScript = `() => {
	let next = window.__tf623_next || 0;
	for (const el of document.querySelectorAll('*')) {
		if (!el.hasAttribute('tf623_id')) {
			el.setAttribute('tf623_id', String(next++));
		}
	}
	window.__tf623_next = next;
	return next;
}`

// AgentQLPage runs extraction against a page the caller already controls.
// The page's rendered HTML is snapshotted and sent to the extraction service.
type AgentQLPage struct {
	page      *rod.Page
	extractor output.ExtractionPort
}

func NewAgentQLPage(page *rod.Page, extractor output.ExtractionPort) *AgentQLPage {
	return &AgentQLPage{page: page, extractor: extractor}
}

func (p *AgentQLPage) QueryData(ctx context.Context, query string, opts output.QueryOptions) (map[string]any, error) {
	if err := entity.ValidateQueryPrompt(query, ""); err != nil {
		return nil, err
	}
	res, err := p.extract(ctx, query, "", opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (p *AgentQLPage) GetDataByPrompt(ctx context.Context, prompt string, opts output.QueryOptions) (map[string]any, error) {
	if err := entity.ValidateQueryPrompt("", prompt); err != nil {
		return nil, err
	}
	res, err := p.extract(ctx, "", prompt, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// GetByPrompt asks the service which stamped element matches prompt and
// resolves it on the live page.
func (p *AgentQLPage) GetByPrompt(ctx context.Context, prompt string, opts output.QueryOptions) (output.Element, error) {
	if err := entity.ValidateQueryPrompt("", prompt); err != nil {
		return nil, err
	}

	res, err := p.extract(ctx, elementQuery(prompt), "", opts)
	if err != nil {
		return nil, err
	}

	id := elementID(res.Data)
	if id == "" {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, prompt)
	}

	el, err := p.page.Context(ctx).Timeout(defaultTimeout).Element(fmt.Sprintf(`[%s="%s"]`, rodwrapper.ElementIDAttr, id))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrElementNotFound, prompt, err)
	}
	return &Element{el: el}, nil
}

func (p *AgentQLPage) extract(ctx context.Context, query, prompt string, opts output.QueryOptions) (*entity.ExtractionResult, error) {
	if p.page == nil {
		return nil, entity.NewConfigurationError(entity.MsgBrowserNotProvided)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	snapshot, err := p.snapshot(ctx, opts)
	if err != nil {
		return nil, err
	}

	params := entity.DefaultParams()
	if opts.Mode != "" {
		params.Mode = opts.Mode
	}
	params.WaitForNetworkIdle = opts.WaitForNetworkIdle
	params.IncludeHidden = opts.IncludeHidden

	return p.extractor.Extract(ctx, entity.ExtractionRequest{
		HTML:          snapshot,
		Query:         query,
		Prompt:        prompt,
		Params:        params,
		Timeout:       opts.Timeout,
		RequestOrigin: opts.RequestOrigin,
	})
}

func (p *AgentQLPage) snapshot(ctx context.Context, opts output.QueryOptions) (string, error) {
	page := p.page.Context(ctx)

	if opts.WaitForNetworkIdle {
		if err := page.WaitIdle(networkIdleWait); err != nil && ctx.Err() != nil {
			return "", &entity.TransportError{Op: "wait for network idle", Err: ctx.Err()}
		}
	}

	if _, err := page.Eval(stampScript); err != nil {
		return "", fmt.Errorf("stamp elements: %w", err)
	}

	raw, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	return rodwrapper.CleanHTML(raw, rodwrapper.SnapshotConfig(opts.IncludeHidden))
}

// Element is a node located by GetByPrompt.
type Element struct {
	el *rod.Element
}

func NewElement(el *rod.Element) *Element {
	return &Element{el: el}
}

// Attribute returns "" when the attribute is absent.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", fmt.Errorf("read attribute %s: %w", name, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (e *Element) Rod() *rod.Element {
	return e.el
}

// PageProvider hands out a binding for the browser's current page.
type PageProvider struct {
	browser   *BrowserAdapter
	extractor output.ExtractionPort
}

func NewPageProvider(browser *BrowserAdapter, extractor output.ExtractionPort) *PageProvider {
	return &PageProvider{browser: browser, extractor: extractor}
}

func (p *PageProvider) CurrentPage(ctx context.Context) (output.AgentQLPage, error) {
	if p == nil || p.browser == nil {
		return nil, entity.NewConfigurationError(entity.MsgBrowserNotProvided)
	}
	page, err := p.browser.Page()
	if err != nil {
		return nil, entity.NewConfigurationError(entity.MsgBrowserNotProvided)
	}
	return NewAgentQLPage(page, p.extractor), nil
}

// elementQuery builds the single-field query that asks the service for the
// tf623_id of the element described by prompt.
func elementQuery(prompt string) string {
	description := strings.NewReplacer("(", " ", ")", " ", "\n", " ").Replace(prompt)
	description = strings.Join(strings.Fields(description), " ")
	return fmt.Sprintf("{ %s(the %s attribute value of the element described as: %s) }",
		elementField, rodwrapper.ElementIDAttr, description)
}

// elementID returns "" unless the service answered with one of the numeric
// ids produced by stampScript.
func elementID(data map[string]any) string {
	var id string
	switch v := data[elementField].(type) {
	case string:
		id = strings.TrimSpace(v)
	case float64:
		id = strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return ""
	}
	return id
}
