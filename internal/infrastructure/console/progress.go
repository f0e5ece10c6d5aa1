package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*Progress)(nil)

// Progress prints agent activity to a terminal. Colour is dropped
// automatically when the writer is not a TTY.
type Progress struct {
	w io.Writer
}

func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

func (p *Progress) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	color.New(color.FgCyan, color.Bold).Fprintf(p.w, "\n━━━ Iteration %d/%d ━━━\n", iteration, maxIterations)
}

func (p *Progress) ShowThinking(ctx context.Context, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	color.New(color.FgBlue).Fprint(p.w, "\n💭 ")
	color.New(color.Faint).Fprintln(p.w, truncate(content, 500))
}

func (p *Progress) ShowToolStart(ctx context.Context, toolName, arguments string) {
	icon, name := toolDisplay(toolName)
	color.New(color.FgYellow, color.Bold).Fprintf(p.w, "\n%s %s\n", icon, name)

	if summary := formatArguments(toolName, arguments); summary != "" {
		color.New(color.Faint).Fprintf(p.w, "   %s\n", summary)
	}
}

func (p *Progress) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		color.New(color.FgRed).Fprint(p.w, "❌ Error: ")
		color.New(color.Faint).Fprintln(p.w, truncate(result, 300))
		return
	}
	color.New(color.FgGreen).Fprintf(p.w, "✓ %s\n", formatResult(toolName, result))
}

func toolDisplay(toolName string) (string, string) {
	switch entity.ToolName(toolName) {
	case entity.ToolExtractWebData:
		return "🔎", "Extract (REST)"
	case entity.ToolExtractWebDataFromBrowser:
		return "🔍", "Extract (browser)"
	case entity.ToolGetWebElementFromBrowser:
		return "🎯", "Find element"
	case entity.ToolBrowserNavigate:
		return "🌐", "Navigate"
	case entity.ToolBrowserClick:
		return "🖱️", "Click"
	case entity.ToolBrowserScreenshot:
		return "📸", "Screenshot"
	case entity.ToolWriteFile:
		return "💾", "Write file"
	}
	return "🔧", toolName
}

func formatArguments(toolName, arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}
	str := func(key string) string {
		s, _ := args[key].(string)
		return s
	}

	var parts []string
	switch entity.ToolName(toolName) {
	case entity.ToolExtractWebData, entity.ToolBrowserNavigate:
		if url := str("url"); url != "" {
			parts = append(parts, "URL: "+url)
		}
	case entity.ToolBrowserClick:
		if sel := str("selector"); sel != "" {
			parts = append(parts, "Selector: "+truncate(sel, 60))
		}
	case entity.ToolWriteFile:
		if path := str("file_path"); path != "" {
			parts = append(parts, "File: "+path)
		}
	}
	if q := str("query"); q != "" {
		parts = append(parts, "Query: "+truncate(strings.Join(strings.Fields(q), " "), 80))
	}
	if pr := str("prompt"); pr != "" {
		parts = append(parts, "Prompt: "+truncate(pr, 80))
	}
	return strings.Join(parts, " | ")
}

func formatResult(toolName, result string) string {
	switch entity.ToolName(toolName) {
	case entity.ToolBrowserScreenshot:
		return "Screenshot taken"
	case entity.ToolExtractWebData, entity.ToolExtractWebDataFromBrowser:
		return fmt.Sprintf("%d bytes of JSON", len(result))
	}
	return truncate(result, 120)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}
