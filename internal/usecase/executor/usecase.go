package executor

import (
	"context"
	"fmt"

	"agentql-tools/internal/application/port/input"
	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

var _ input.TaskExecutor = (*UseCase)(nil)

const (
	defaultMaxIterations = 50
	maxObservationLen    = 20000
)

type UseCase struct {
	llm           output.LLMPort
	tools         output.ToolRegistry
	logger        output.LoggerPort
	systemPrompt  string
	maxIterations int
	progress      output.ProgressPort
}

type Option func(*UseCase)

func WithMaxIterations(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.maxIterations = n
		}
	}
}

// WithProgress reports iterations and tool calls as they happen.
func WithProgress(p output.ProgressPort) Option {
	return func(uc *UseCase) { uc.progress = p }
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
	systemPrompt string,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		llm:           llm,
		tools:         tools,
		logger:        logger,
		systemPrompt:  systemPrompt,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs the tool-calling loop until the model answers without
// requesting a tool. Tool failures are fed back to the model as observations.
func (uc *UseCase) Execute(ctx context.Context, task string) (*input.ExecuteResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: uc.systemPrompt},
		{Role: entity.RoleUser, Content: task},
	}

	toolDefs := uc.tools.Definitions()
	toolCalls := 0

	for iteration := 1; iteration <= uc.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		uc.logger.Debug("Starting iteration", "iteration", iteration)
		if uc.progress != nil {
			uc.progress.ShowIteration(ctx, iteration, uc.maxIterations)
		}

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: 0.0,
		})
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			return &input.ExecuteResult{
				FinalAnswer: resp.Message.Content,
				Iterations:  iteration,
				ToolCalls:   toolCalls,
			}, nil
		}

		if uc.progress != nil {
			uc.progress.ShowThinking(ctx, resp.Message.Content)
		}

		for _, tc := range resp.Message.ToolCalls {
			toolCalls++
			observation := uc.executeTool(ctx, tc)

			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    observation,
			})
		}
	}

	return nil, fmt.Errorf("max iterations (%d) exceeded", uc.maxIterations)
}

func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) string {
	if uc.progress != nil {
		uc.progress.ShowToolStart(ctx, tc.Name, tc.Arguments)
	}

	tool, ok := uc.tools.Get(entity.ToolName(tc.Name))
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		observation := fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
		uc.report(ctx, tc.Name, observation, true)
		return observation
	}

	uc.logger.Info("Executing tool", "name", tc.Name)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		uc.report(ctx, tc.Name, err.Error(), true)
		return "Error: " + err.Error()
	}
	uc.report(ctx, tc.Name, result, false)

	if len(result) > maxObservationLen {
		result = result[:maxObservationLen] + "\n... (truncated)"
	}

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	return result
}

func (uc *UseCase) report(ctx context.Context, name, result string, isError bool) {
	if uc.progress != nil {
		uc.progress.ShowToolResult(ctx, name, result, isError)
	}
}
