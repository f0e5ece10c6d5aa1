package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentql-tools/internal/domain/entity"
)

func TestExtractWebDataTool_Execute(t *testing.T) {
	client := &fakeClient{result: &entity.ExtractionResult{
		Data:     map[string]any{"posts": []any{map[string]any{"title": "A"}}},
		Metadata: map[string]any{"request_id": "r1"},
	}}
	params := entity.DefaultParams()
	params.Mode = entity.ModeStandard
	tool := NewExtractWebDataTool(client, nil, WithParams(params), WithStealthMode(true))

	out, err := tool.Execute(context.Background(), `{"url": "https://example.com", "prompt": "the posts"}`)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "r1", decoded["metadata"].(map[string]any)["request_id"])
	assert.Len(t, decoded["data"].(map[string]any)["posts"], 1)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "https://example.com", req.URL)
	assert.Equal(t, "the posts", req.Prompt)
	assert.Empty(t, req.Query)
	assert.Equal(t, entity.ModeStandard, req.Params.Mode)
	assert.True(t, req.Metadata.ExperimentalStealthModeEnabled)
}

func TestExtractWebDataTool_InvalidInput(t *testing.T) {
	client := &fakeClient{}
	tool := NewExtractWebDataTool(client, nil)

	tests := []struct {
		name string
		args string
	}{
		{"malformed json", `{"url":`},
		{"neither", `{"url": "https://example.com"}`},
		{"both", `{"url": "https://example.com", "query": "{ a }", "prompt": "a"}`},
		{"ftp", `{"url": "ftp://example.com", "query": "{ a }"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Execute(context.Background(), tt.args)
			assert.True(t, entity.IsInvalidInputError(err), "got %v", err)
		})
	}
	assert.Empty(t, client.requests)
}

func TestExtractWebDataTool_Metadata(t *testing.T) {
	tool := NewExtractWebDataTool(&fakeClient{}, nil)

	assert.Equal(t, "extract_web_data_with_rest_api", tool.Name().String())
	assert.NotEmpty(t, tool.Description())
	params := tool.Parameters()
	assert.Equal(t, []string{"url"}, params["required"])
	assert.Contains(t, params["properties"], "query")
	assert.Contains(t, params["properties"], "prompt")
}

func TestExtractWebDataFromBrowserTool(t *testing.T) {
	page := &fakePage{data: map[string]any{"price": "$12"}}
	provider := &fakeProvider{page: page}
	tool := NewExtractWebDataFromBrowserTool(provider, DefaultDataOptions())

	out, err := tool.Execute(context.Background(), `{"query": "{ price }"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": "$12"}`, out)

	out, err = tool.Execute(context.Background(), `{"prompt": "the price"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": "$12"}`, out)

	require.Len(t, page.calls, 2)
	assert.Equal(t, "QueryData", page.calls[0].method)
	assert.Equal(t, "GetDataByPrompt", page.calls[1].method)

	opts := page.calls[0].opts
	assert.Equal(t, entity.DefaultExtractDataTimeout, opts.Timeout)
	assert.True(t, opts.WaitForNetworkIdle)
	assert.True(t, opts.IncludeHidden)
	assert.Equal(t, entity.ModeFast, opts.Mode)
}

func TestExtractWebDataFromBrowserTool_BlankQueryFallsBackToPrompt(t *testing.T) {
	page := &fakePage{data: map[string]any{"price": "$12"}}
	tool := NewExtractWebDataFromBrowserTool(&fakeProvider{page: page}, DefaultDataOptions())

	out, err := tool.Execute(context.Background(), `{"query": "  ", "prompt": " the price "}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": "$12"}`, out)

	require.Len(t, page.calls, 1)
	assert.Equal(t, "GetDataByPrompt", page.calls[0].method)
	assert.Equal(t, "the price", page.calls[0].input)
}

func TestExtractWebDataFromBrowserTool_ValidationBeforePageAccess(t *testing.T) {
	provider := &fakeProvider{page: &fakePage{}}
	tool := NewExtractWebDataFromBrowserTool(provider, DefaultDataOptions())

	_, err := tool.Execute(context.Background(), `{}`)
	assert.True(t, entity.IsInvalidInputError(err))
	assert.Equal(t, entity.MsgQueryOrPromptRequired, err.Error())

	_, err = tool.Execute(context.Background(), `{"query": "{ a }", "prompt": "a"}`)
	assert.Equal(t, entity.MsgQueryPromptExclusive, err.Error())

	assert.Zero(t, provider.accessed)
}

func TestBrowserTools_MissingProvider(t *testing.T) {
	for _, tool := range NewBrowserToolkit(nil, "") {
		t.Run(tool.Name().String(), func(t *testing.T) {
			_, err := tool.Execute(context.Background(), `{"prompt": "the buy button"}`)
			require.Error(t, err)
			assert.True(t, entity.IsConfigurationError(err))
			assert.Equal(t, entity.MsgBrowserNotProvided, err.Error())
		})
	}
}

func TestGetWebElementFromBrowserTool(t *testing.T) {
	page := &fakePage{attrs: map[string]string{"tf623_id": "17"}}
	tool := NewGetWebElementFromBrowserTool(&fakeProvider{page: page}, DefaultElementOptions())

	out, err := tool.Execute(context.Background(), `{"prompt": "the buy button"}`)
	require.NoError(t, err)
	assert.Equal(t, "[tf623_id='17']", out)

	require.Len(t, page.calls, 1)
	opts := page.calls[0].opts
	assert.Equal(t, entity.DefaultExtractElementsTimeout, opts.Timeout)
	assert.True(t, opts.WaitForNetworkIdle)
	assert.False(t, opts.IncludeHidden)
}

func TestGetWebElementFromBrowserTool_Errors(t *testing.T) {
	tool := NewGetWebElementFromBrowserTool(&fakeProvider{page: &fakePage{attrs: map[string]string{}}}, DefaultElementOptions())

	_, err := tool.Execute(context.Background(), `{"prompt": " "}`)
	assert.True(t, entity.IsInvalidInputError(err))

	_, err = tool.Execute(context.Background(), `{"prompt": "ghost"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tf623_id attribute")

	boom := errors.New("boom")
	failing := NewGetWebElementFromBrowserTool(&fakeProvider{page: &fakePage{err: boom}}, DefaultElementOptions())
	_, err = failing.Execute(context.Background(), `{"prompt": "x"}`)
	assert.ErrorIs(t, err, boom)
}

func TestNewBrowserToolkit(t *testing.T) {
	page := &fakePage{data: map[string]any{}, attrs: map[string]string{"tf623_id": "1"}}
	tools := NewBrowserToolkit(&fakeProvider{page: page}, "langchain")

	require.Len(t, tools, 2)
	assert.Equal(t, entity.ToolExtractWebDataFromBrowser, tools[0].Name())
	assert.Equal(t, entity.ToolGetWebElementFromBrowser, tools[1].Name())

	_, err := tools[0].Execute(context.Background(), `{"prompt": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, "langchain", page.calls[0].opts.RequestOrigin)
}

func TestHelperTools(t *testing.T) {
	browser := &fakeBrowser{screenshot: &entity.Screenshot{Data: []byte{1, 2, 3}, Format: "jpeg"}}
	tools := NewBrowserHelperTools(browser, nil)
	require.Len(t, tools, 3)
	ctx := context.Background()

	out, err := tools[0].Execute(ctx, `{"url": "https://example.com"}`)
	require.NoError(t, err)
	assert.Equal(t, "Navigated to https://example.com", out)

	_, err = tools[0].Execute(ctx, `{"url": "ftp://example.com"}`)
	assert.True(t, entity.IsInvalidInputError(err))

	out, err = tools[1].Execute(ctx, `{"selector": "[tf623_id='3']"}`)
	require.NoError(t, err)
	assert.Equal(t, "Click successful", out)
	assert.Equal(t, []string{"[tf623_id='3']"}, browser.clicked)

	_, err = tools[1].Execute(ctx, `{}`)
	assert.True(t, entity.IsInvalidInputError(err))

	out, err = tools[2].Execute(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,AQID", out)
}

func TestExecuteAsync(t *testing.T) {
	client := &fakeClient{result: &entity.ExtractionResult{Data: map[string]any{"a": "b"}}}
	tool := NewExtractWebDataTool(client, nil)

	outcome := <-ExecuteAsync(context.Background(), tool, `{"url": "https://example.com", "query": "{ a }"}`)
	require.NoError(t, outcome.Err)
	assert.Contains(t, outcome.Output, `"a":"b"`)

	ch := ExecuteAsync(context.Background(), tool, `{"url": "https://example.com"}`)
	outcome = <-ch
	assert.True(t, entity.IsInvalidInputError(outcome.Err))
	_, open := <-ch
	assert.False(t, open)
}
