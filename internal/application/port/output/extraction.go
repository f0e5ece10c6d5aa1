package output

import (
	"context"
	"time"

	"agentql-tools/internal/domain/entity"
)

// ExtractionPort is the REST extraction client. Extract blocks; ExtractAsync
// returns immediately and delivers exactly one outcome on the channel.
type ExtractionPort interface {
	Extract(ctx context.Context, req entity.ExtractionRequest) (*entity.ExtractionResult, error)
	ExtractAsync(ctx context.Context, req entity.ExtractionRequest) <-chan entity.ExtractionOutcome
}

type QueryOptions struct {
	Timeout            time.Duration
	WaitForNetworkIdle bool
	IncludeHidden      bool
	Mode               entity.ResponseMode
	RequestOrigin      string
}

// AgentQLPage runs extraction queries against a page the caller has already
// navigated. Concurrent calls against the same page are not serialised.
type AgentQLPage interface {
	QueryData(ctx context.Context, query string, opts QueryOptions) (map[string]any, error)
	GetDataByPrompt(ctx context.Context, prompt string, opts QueryOptions) (map[string]any, error)
	GetByPrompt(ctx context.Context, prompt string, opts QueryOptions) (Element, error)
}

type Element interface {
	Attribute(ctx context.Context, name string) (string, error)
}

type PageProvider interface {
	CurrentPage(ctx context.Context) (AgentQLPage, error)
}

// CredentialValidator checks an API key against the service.
type CredentialValidator interface {
	ValidateAPIKey(ctx context.Context) error
}
