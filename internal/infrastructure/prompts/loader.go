package prompts

import (
	_ "embed"
)

// DefaultSystemPrompt is a text/template rendered by GenerateSystemPrompt.
//
//go:embed system.txt
var DefaultSystemPrompt string
