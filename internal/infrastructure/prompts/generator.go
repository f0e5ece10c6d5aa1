package prompts

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

type ToolInfo struct {
	Name        string
	Description string
}

type SystemPromptData struct {
	Tools []ToolInfo
	// Browser is set when the browser-bound tools are registered.
	Browser bool
}

func GenerateSystemPrompt(baseTemplate string, registry output.ToolRegistry) (string, error) {
	tools := registry.All()
	data := SystemPromptData{Tools: make([]ToolInfo, 0, len(tools))}

	for _, t := range tools {
		data.Tools = append(data.Tools, ToolInfo{
			Name:        t.Name().String(),
			Description: t.Description(),
		})
		if t.Name() == entity.ToolExtractWebDataFromBrowser {
			data.Browser = true
		}
	}

	sort.Slice(data.Tools, func(i, j int) bool {
		return data.Tools[i].Name < data.Tools[j].Name
	})

	tmpl, err := template.New("system").Parse(baseTemplate)
	if err != nil {
		return "", fmt.Errorf("parse system prompt: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}

	return buf.String(), nil
}
