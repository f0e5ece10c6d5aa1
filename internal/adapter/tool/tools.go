package tool

import (
	"context"
	"encoding/base64"
	"fmt"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

var (
	_ output.ToolPort = (*NavigateTool)(nil)
	_ output.ToolPort = (*ClickTool)(nil)
	_ output.ToolPort = (*ScreenshotTool)(nil)
)

type NavigateTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewNavigateTool(browser output.BrowserPort, logger output.LoggerPort) *NavigateTool {
	return &NavigateTool{browser: browser, logger: logger}
}

func (t *NavigateTool) Name() entity.ToolName { return entity.ToolBrowserNavigate }
func (t *NavigateTool) Description() string   { return "Navigates the browser to a URL" }
func (t *NavigateTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"url": stringProperty("Absolute http or https URL to navigate to"),
	}, "url")
}

func (t *NavigateTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	if err := entity.ValidateURL(input.URL); err != nil {
		return "", err
	}
	if t.browser == nil {
		return "", entity.NewConfigurationError(entity.MsgBrowserNotProvided)
	}
	if err := t.browser.Navigate(ctx, input.URL); err != nil {
		return "", err
	}
	return fmt.Sprintf("Navigated to %s", t.browser.CurrentURL()), nil
}

type ClickTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewClickTool(browser output.BrowserPort, logger output.LoggerPort) *ClickTool {
	return &ClickTool{browser: browser, logger: logger}
}

func (t *ClickTool) Name() entity.ToolName { return entity.ToolBrowserClick }
func (t *ClickTool) Description() string {
	return "Clicks an element by CSS or XPath selector, for example one returned by get_web_element_from_browser"
}
func (t *ClickTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"selector": stringProperty("CSS or XPath selector"),
	}, "selector")
}

func (t *ClickTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string `json:"selector"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	if input.Selector == "" {
		return "", entity.NewInvalidInputError("selector required")
	}
	if t.browser == nil {
		return "", entity.NewConfigurationError(entity.MsgBrowserNotProvided)
	}
	if err := t.browser.Click(ctx, input.Selector); err != nil {
		return "", err
	}
	return "Click successful", nil
}

type ScreenshotTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewScreenshotTool(browser output.BrowserPort, logger output.LoggerPort) *ScreenshotTool {
	return &ScreenshotTool{browser: browser, logger: logger}
}

func (t *ScreenshotTool) Name() entity.ToolName { return entity.ToolBrowserScreenshot }
func (t *ScreenshotTool) Description() string   { return "Takes a screenshot of the current page" }
func (t *ScreenshotTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t *ScreenshotTool) Execute(ctx context.Context, args string) (string, error) {
	if t.browser == nil {
		return "", entity.NewConfigurationError(entity.MsgBrowserNotProvided)
	}
	screenshot, err := t.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	b64 := base64.StdEncoding.EncodeToString(screenshot.Data)
	return fmt.Sprintf("data:image/%s;base64,%s", screenshot.Format, b64), nil
}

// NewBrowserHelperTools returns the plain browser tools an agent needs to
// move between pages and act on located elements.
func NewBrowserHelperTools(browser output.BrowserPort, logger output.LoggerPort) []output.ToolPort {
	return []output.ToolPort{
		NewNavigateTool(browser, logger),
		NewClickTool(browser, logger),
		NewScreenshotTool(browser, logger),
	}
}
