package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/application/service"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/logger"
)

type scriptedLLM struct {
	replies  []entity.Message
	requests []output.ChatRequest
}

func (s *scriptedLLM) Chat(_ context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	msg := s.replies[0]
	s.replies = s.replies[1:]
	return &output.ChatResponse{Message: msg}, nil
}

type fnTool struct {
	name entity.ToolName
	fn   func(args string) (string, error)
}

func (f fnTool) Name() entity.ToolName      { return f.name }
func (f fnTool) Description() string        { return string(f.name) }
func (f fnTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (f fnTool) Execute(_ context.Context, args string) (string, error) {
	return f.fn(args)
}

func call(id string, name entity.ToolName, args string) entity.Message {
	return entity.Message{
		Role:      entity.RoleAssistant,
		ToolCalls: []entity.ToolCall{{ID: id, Name: name.String(), Arguments: args}},
	}
}

func TestExecute_ToolLoop(t *testing.T) {
	llm := &scriptedLLM{replies: []entity.Message{
		call("1", entity.ToolExtractWebData, `{"url":"https://example.com","prompt":"jobs"}`),
		{Role: entity.RoleAssistant, Content: "Found 2 jobs"},
	}}
	var gotArgs string
	registry := service.NewToolRegistry(fnTool{name: entity.ToolExtractWebData, fn: func(args string) (string, error) {
		gotArgs = args
		return `{"data":{"jobs":["a","b"]}}`, nil
	}})

	uc := New(llm, registry, logger.NewNopLogger(), "system")
	res, err := uc.Execute(context.Background(), "find jobs")
	require.NoError(t, err)

	assert.Equal(t, "Found 2 jobs", res.FinalAnswer)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 1, res.ToolCalls)
	assert.JSONEq(t, `{"url":"https://example.com","prompt":"jobs"}`, gotArgs)

	require.Len(t, llm.requests, 2)
	second := llm.requests[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, entity.RoleSystem, second[0].Role)
	assert.Equal(t, entity.RoleTool, second[3].Role)
	assert.Equal(t, "1", second[3].ToolCallID)
	assert.Contains(t, second[3].Content, "jobs")
	assert.Len(t, llm.requests[0].Tools, 1)
}

func TestExecute_ToolErrorsBecomeObservations(t *testing.T) {
	llm := &scriptedLLM{replies: []entity.Message{
		call("1", "missing_tool", `{}`),
		call("2", entity.ToolExtractWebData, `{}`),
		{Role: entity.RoleAssistant, Content: "gave up"},
	}}
	registry := service.NewToolRegistry(fnTool{name: entity.ToolExtractWebData, fn: func(string) (string, error) {
		return "", entity.NewInvalidInputError(entity.MsgQueryOrPromptRequired)
	}})

	res, err := New(llm, registry, logger.NewNopLogger(), "").Execute(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "gave up", res.FinalAnswer)

	msgs := llm.requests[2].Messages
	assert.Equal(t, "Error: unknown tool 'missing_tool'", msgs[3].Content)
	assert.Equal(t, "Error: "+entity.MsgQueryOrPromptRequired, msgs[5].Content)
}

func TestExecute_TruncatesObservations(t *testing.T) {
	llm := &scriptedLLM{replies: []entity.Message{
		call("1", entity.ToolBrowserScreenshot, `{}`),
		{Role: entity.RoleAssistant, Content: "ok"},
	}}
	registry := service.NewToolRegistry(fnTool{name: entity.ToolBrowserScreenshot, fn: func(string) (string, error) {
		return strings.Repeat("x", maxObservationLen+100), nil
	}})

	_, err := New(llm, registry, logger.NewNopLogger(), "").Execute(context.Background(), "task")
	require.NoError(t, err)

	obs := llm.requests[1].Messages[3].Content
	assert.True(t, strings.HasSuffix(obs, "... (truncated)"))
	assert.Less(t, len(obs), maxObservationLen+100)
}

func TestExecute_MaxIterations(t *testing.T) {
	var replies []entity.Message
	for i := 0; i < 3; i++ {
		replies = append(replies, call("x", entity.ToolBrowserScreenshot, `{}`))
	}
	llm := &scriptedLLM{replies: replies}
	registry := service.NewToolRegistry(fnTool{name: entity.ToolBrowserScreenshot, fn: func(string) (string, error) { return "ok", nil }})

	_, err := New(llm, registry, logger.NewNopLogger(), "", WithMaxIterations(3)).Execute(context.Background(), "task")
	assert.ErrorContains(t, err, "max iterations (3) exceeded")
}

func TestExecute_LLMError(t *testing.T) {
	llm := &scriptedLLM{}
	_, err := New(llm, service.NewToolRegistry(), logger.NewNopLogger(), "").Execute(context.Background(), "task")
	assert.ErrorContains(t, err, "llm request failed")
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{}
	_, err := New(llm, service.NewToolRegistry(), logger.NewNopLogger(), "").Execute(ctx, "task")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, llm.requests)
}

type recordingProgress struct {
	events []string
}

func (r *recordingProgress) ShowIteration(_ context.Context, iteration, max int) {
	r.events = append(r.events, "iteration")
}
func (r *recordingProgress) ShowThinking(_ context.Context, content string) {
	r.events = append(r.events, "thinking:"+content)
}
func (r *recordingProgress) ShowToolStart(_ context.Context, name, _ string) {
	r.events = append(r.events, "start:"+name)
}
func (r *recordingProgress) ShowToolResult(_ context.Context, name, _ string, isError bool) {
	if isError {
		r.events = append(r.events, "error:"+name)
		return
	}
	r.events = append(r.events, "result:"+name)
}

func TestExecute_ReportsProgress(t *testing.T) {
	first := call("1", entity.ToolBrowserScreenshot, `{}`)
	first.Content = "taking a look"
	llm := &scriptedLLM{replies: []entity.Message{
		first,
		call("2", "missing_tool", `{}`),
		{Role: entity.RoleAssistant, Content: "done"},
	}}
	registry := service.NewToolRegistry(fnTool{name: entity.ToolBrowserScreenshot, fn: func(string) (string, error) { return "ok", nil }})
	progress := &recordingProgress{}

	_, err := New(llm, registry, logger.NewNopLogger(), "", WithProgress(progress)).Execute(context.Background(), "task")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"iteration",
		"thinking:taking a look",
		"start:take_screenshot",
		"result:take_screenshot",
		"iteration",
		"thinking:",
		"start:missing_tool",
		"error:missing_tool",
		"iteration",
	}, progress.events)
}
