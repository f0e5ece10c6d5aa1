package tool

import (
	"context"
	"sync"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

type fakeClient struct {
	mu       sync.Mutex
	requests []entity.ExtractionRequest
	result   *entity.ExtractionResult
	err      error
}

func (f *fakeClient) Extract(_ context.Context, req entity.ExtractionRequest) (*entity.ExtractionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeClient) ExtractAsync(ctx context.Context, req entity.ExtractionRequest) <-chan entity.ExtractionOutcome {
	out := make(chan entity.ExtractionOutcome, 1)
	res, err := f.Extract(ctx, req)
	out <- entity.ExtractionOutcome{Result: res, Err: err}
	close(out)
	return out
}

type pageCall struct {
	method string
	input  string
	opts   output.QueryOptions
}

type fakePage struct {
	calls []pageCall
	data  map[string]any
	attrs map[string]string
	err   error
}

func (p *fakePage) QueryData(_ context.Context, query string, opts output.QueryOptions) (map[string]any, error) {
	p.calls = append(p.calls, pageCall{"QueryData", query, opts})
	return p.data, p.err
}

func (p *fakePage) GetDataByPrompt(_ context.Context, prompt string, opts output.QueryOptions) (map[string]any, error) {
	p.calls = append(p.calls, pageCall{"GetDataByPrompt", prompt, opts})
	return p.data, p.err
}

func (p *fakePage) GetByPrompt(_ context.Context, prompt string, opts output.QueryOptions) (output.Element, error) {
	p.calls = append(p.calls, pageCall{"GetByPrompt", prompt, opts})
	if p.err != nil {
		return nil, p.err
	}
	return fakeElement(p.attrs), nil
}

type fakeElement map[string]string

func (e fakeElement) Attribute(_ context.Context, name string) (string, error) {
	return e[name], nil
}

type fakeProvider struct {
	page     *fakePage
	accessed int
}

func (p *fakeProvider) CurrentPage(context.Context) (output.AgentQLPage, error) {
	p.accessed++
	return p.page, nil
}

type fakeBrowser struct {
	url        string
	clicked    []string
	screenshot *entity.Screenshot
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.url = url
	return nil
}

func (b *fakeBrowser) Click(_ context.Context, selector string) error {
	b.clicked = append(b.clicked, selector)
	return nil
}

func (b *fakeBrowser) Snapshot(context.Context) (*entity.PageSnapshot, error) {
	return &entity.PageSnapshot{URL: b.url}, nil
}

func (b *fakeBrowser) Screenshot(context.Context) (*entity.Screenshot, error) {
	return b.screenshot, nil
}

func (b *fakeBrowser) CurrentURL() string { return b.url }
func (b *fakeBrowser) Close()             {}
