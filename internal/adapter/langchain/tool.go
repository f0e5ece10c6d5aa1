package langchain

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tmc/langchaingo/tools"

	"agentql-tools/internal/application/port/output"
)

var _ tools.Tool = (*Tool)(nil)

// Tool exposes a ToolPort to langchaingo agents. langchaingo passes a single
// string input; JSON objects are forwarded as-is and anything else is wrapped
// as the tool's primary argument.
type Tool struct {
	inner   output.ToolPort
	primary string
}

func WrapTool(t output.ToolPort) *Tool {
	return &Tool{inner: t, primary: primaryArgument(t.Parameters())}
}

// WrapTools wraps every tool in order.
func WrapTools(ts []output.ToolPort) []tools.Tool {
	wrapped := make([]tools.Tool, 0, len(ts))
	for _, t := range ts {
		wrapped = append(wrapped, WrapTool(t))
	}
	return wrapped
}

func (t *Tool) Name() string {
	return t.inner.Name().String()
}

func (t *Tool) Description() string {
	schema, err := json.Marshal(t.inner.Parameters())
	if err != nil {
		return t.inner.Description()
	}
	return t.inner.Description() + "\n\nInput is a JSON object matching this schema: " + string(schema)
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return t.inner.Execute(ctx, t.arguments(input))
}

func (t *Tool) arguments(input string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") || trimmed == "" || t.primary == "" {
		return trimmed
	}
	data, err := json.Marshal(map[string]string{t.primary: trimmed})
	if err != nil {
		return trimmed
	}
	return string(data)
}

// primaryArgument is the single required property, if there is exactly one.
func primaryArgument(params map[string]any) string {
	switch required := params["required"].(type) {
	case []string:
		if len(required) == 1 {
			return required[0]
		}
	case []any:
		if len(required) == 1 {
			s, _ := required[0].(string)
			return s
		}
	}
	return ""
}
