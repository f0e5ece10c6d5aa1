package entity

import (
	"net/url"
	"strings"
)

// ValidateQueryPrompt enforces that exactly one of query and prompt is set.
// Whitespace-only values count as absent.
func ValidateQueryPrompt(query, prompt string) error {
	hasQuery := strings.TrimSpace(query) != ""
	hasPrompt := strings.TrimSpace(prompt) != ""

	switch {
	case !hasQuery && !hasPrompt:
		return NewInvalidInputError(MsgQueryOrPromptRequired)
	case hasQuery && hasPrompt:
		return NewInvalidInputError(MsgQueryPromptExclusive)
	}
	return nil
}

// ValidateURL accepts only absolute http and https URLs.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return NewInvalidInputError(MsgURLRequired)
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return NewInvalidInputError(MsgInvalidURLScheme)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return NewInvalidInputError(MsgInvalidURLScheme)
	}
	return nil
}

// Validate checks a REST request. A request carrying an HTML snapshot does
// not need a URL, but a URL that is present must still be http or https.
func (r ExtractionRequest) Validate() error {
	if r.HTML == "" || strings.TrimSpace(r.URL) != "" {
		if err := ValidateURL(r.URL); err != nil {
			return err
		}
	}
	if err := ValidateQueryPrompt(r.Query, r.Prompt); err != nil {
		return err
	}
	if r.Params.Mode != "" && !r.Params.Mode.Valid() {
		return NewInvalidInputError("mode must be 'fast' or 'standard'")
	}
	if r.Params.WaitFor < 0 || r.Params.WaitFor > MaxWaitForPageLoadSeconds {
		return NewInvalidInputError("wait_for must be between 0 and 10 seconds")
	}
	return nil
}
