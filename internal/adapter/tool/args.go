package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

// decodeArgs unmarshals a tool's JSON arguments. Empty input is treated as {}.
func decodeArgs(args string, v any) error {
	args = strings.TrimSpace(args)
	if args == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return entity.NewInvalidInputError(fmt.Sprintf("invalid tool arguments: %v", err))
	}
	return nil
}

func encodeResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProperty(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
	}
}

// Outcome is delivered by ExecuteAsync.
type Outcome struct {
	Output string
	Err    error
}

// ExecuteAsync runs t.Execute on its own goroutine. The channel receives one
// outcome and is then closed; cancelling ctx aborts the underlying call.
func ExecuteAsync(ctx context.Context, t output.ToolPort, args string) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := t.Execute(ctx, args)
		out <- Outcome{Output: res, Err: err}
	}()
	return out
}
