package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

var _ output.ToolPort = (*WriteFileTool)(nil)

// WriteFileTool lets an agent persist its results. Paths are resolved inside
// root and may not escape it.
type WriteFileTool struct {
	root   string
	logger output.LoggerPort
}

func NewWriteFileTool(root string, logger output.LoggerPort) *WriteFileTool {
	if root == "" {
		root = "."
	}
	return &WriteFileTool{root: root, logger: logger}
}

func (t *WriteFileTool) Name() entity.ToolName { return entity.ToolWriteFile }
func (t *WriteFileTool) Description() string {
	return "Writes text to a file in the output directory, replacing it unless append is true"
}
func (t *WriteFileTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"file_path": stringProperty("Relative file name, for example results.json"),
		"text":      stringProperty("Content to write"),
		"append": map[string]any{
			"type":        "boolean",
			"description": "Append instead of overwriting",
		},
	}, "file_path", "text")
}

func (t *WriteFileTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		FilePath string `json:"file_path"`
		Text     string `json:"text"`
		Append   bool   `json:"append"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return "", err
	}
	path, err := t.resolve(input.FilePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if input.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", input.FilePath, err)
	}
	defer f.Close()

	if _, err := f.WriteString(input.Text); err != nil {
		return "", fmt.Errorf("write %s: %w", input.FilePath, err)
	}
	if t.logger != nil {
		t.logger.Info("File written", "path", path, "bytes", len(input.Text))
	}
	return fmt.Sprintf("File written successfully to %s.", input.FilePath), nil
}

func (t *WriteFileTool) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", entity.NewInvalidInputError("file_path required")
	}
	if filepath.IsAbs(name) {
		return "", entity.NewInvalidInputError("file_path must be relative")
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", entity.NewInvalidInputError("file_path escapes the output directory")
	}
	return filepath.Join(t.root, clean), nil
}
