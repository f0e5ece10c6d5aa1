package tool

import (
	"context"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

var _ output.ToolPort = (*ExtractWebDataTool)(nil)

const extractWebDataDescription = `Extracts structured data as JSON from a web page given a URL using either an AgentQL query or a Natural Language description of the data.

Provide exactly one of 'query' or 'prompt'. Use 'query' for a precise AgentQL query such as { products[] { name price } } and 'prompt' for a plain description of the data you want.`

// ExtractWebDataTool extracts data from a public URL through the REST API.
type ExtractWebDataTool struct {
	client   output.ExtractionPort
	params   entity.Params
	metadata entity.RequestMetadata
	logger   output.LoggerPort
}

type RESTOption func(*ExtractWebDataTool)

// WithParams sets the extraction flags sent with every call.
func WithParams(p entity.Params) RESTOption {
	return func(t *ExtractWebDataTool) { t.params = p }
}

func WithStealthMode(enabled bool) RESTOption {
	return func(t *ExtractWebDataTool) { t.metadata.ExperimentalStealthModeEnabled = enabled }
}

func NewExtractWebDataTool(client output.ExtractionPort, logger output.LoggerPort, opts ...RESTOption) *ExtractWebDataTool {
	t := &ExtractWebDataTool{
		client: client,
		params: entity.DefaultParams(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *ExtractWebDataTool) Name() entity.ToolName { return entity.ToolExtractWebData }
func (t *ExtractWebDataTool) Description() string   { return extractWebDataDescription }
func (t *ExtractWebDataTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"url":    stringProperty("The URL of the public web page you want to extract data from."),
		"query":  stringProperty("AgentQL query used to extract the data. Mutually exclusive with 'prompt'."),
		"prompt": stringProperty("Natural language description of the data to extract. Mutually exclusive with 'query'."),
	}, "url")
}

func (t *ExtractWebDataTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL    string `json:"url"`
		Query  string `json:"query"`
		Prompt string `json:"prompt"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	if t.client == nil {
		return "", entity.NewConfigurationError(entity.MsgAPIKeyNotSet)
	}

	res, err := t.client.Extract(ctx, entity.ExtractionRequest{
		URL:      input.URL,
		Query:    input.Query,
		Prompt:   input.Prompt,
		Params:   t.params,
		Metadata: t.metadata,
	})
	if err != nil {
		return "", err
	}
	if t.logger != nil {
		t.logger.Debug("rest extraction finished", "url", input.URL, "request_id", res.RequestID())
	}
	return encodeResult(res)
}
