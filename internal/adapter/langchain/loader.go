package langchain

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

var _ documentloaders.Loader = (*Loader)(nil)

// Loader turns one extraction call into one document. Construction does no
// I/O; every Load re-issues the request.
type Loader struct {
	client   output.ExtractionPort
	url      string
	query    string
	prompt   string
	params   entity.Params
	metadata entity.RequestMetadata
	timeout  time.Duration
}

type LoaderOption func(*Loader)

func WithQuery(query string) LoaderOption {
	return func(l *Loader) { l.query = query }
}

func WithPrompt(prompt string) LoaderOption {
	return func(l *Loader) { l.prompt = prompt }
}

func WithLoaderParams(p entity.Params) LoaderOption {
	return func(l *Loader) { l.params = p }
}

func WithLoaderMetadata(m entity.RequestMetadata) LoaderOption {
	return func(l *Loader) { l.metadata = m }
}

func WithLoaderTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.timeout = d }
}

func NewLoader(client output.ExtractionPort, url string, opts ...LoaderOption) *Loader {
	l := &Loader{
		client: client,
		url:    url,
		params: entity.DefaultParams(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) request() entity.ExtractionRequest {
	return entity.ExtractionRequest{
		URL:      l.url,
		Query:    l.query,
		Prompt:   l.prompt,
		Params:   l.params,
		Metadata: l.metadata,
		Timeout:  l.timeout,
	}
}

func (l *Loader) Load(ctx context.Context) ([]schema.Document, error) {
	res, err := l.client.Extract(ctx, l.request())
	if err != nil {
		return nil, err
	}
	doc, err := toDocument(res)
	if err != nil {
		return nil, err
	}
	return []schema.Document{doc}, nil
}

func (l *Loader) LoadAndSplit(ctx context.Context, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	docs, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	if splitter == nil {
		return docs, nil
	}
	return textsplitter.SplitDocuments(splitter, docs)
}

// LazyLoad yields the single document produced by a fresh call each time the
// sequence is ranged over.
func (l *Loader) LazyLoad(ctx context.Context) iter.Seq2[schema.Document, error] {
	return func(yield func(schema.Document, error) bool) {
		docs, err := l.Load(ctx)
		if err != nil {
			yield(schema.Document{}, err)
			return
		}
		for _, doc := range docs {
			if !yield(doc, nil) {
				return
			}
		}
	}
}

func toDocument(res *entity.ExtractionResult) (schema.Document, error) {
	content, err := json.Marshal(res.Data)
	if err != nil {
		return schema.Document{}, fmt.Errorf("encode document content: %w", err)
	}
	metadata := res.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return schema.Document{PageContent: string(content), Metadata: metadata}, nil
}
