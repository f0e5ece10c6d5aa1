package entity

import "time"

type ResponseMode string

const (
	ModeFast     ResponseMode = "fast"
	ModeStandard ResponseMode = "standard"
)

func (m ResponseMode) Valid() bool {
	return m == ModeFast || m == ModeStandard
}

const (
	DefaultExtractElementsTimeout = 300 * time.Second
	DefaultExtractDataTimeout     = 900 * time.Second
	DefaultAPITimeout             = 900 * time.Second

	DefaultWaitForNetworkIdle    = true
	DefaultIncludeHiddenData     = true
	DefaultIncludeHiddenElements = false
	DefaultResponseMode          = ModeFast

	DefaultWaitForPageLoadSeconds  = 0
	DefaultIsScrollToBottomEnabled = false
	DefaultIsScreenshotEnabled     = false
	DefaultIsStealthModeEnabled    = false

	// MaxWaitForPageLoadSeconds is the service-side cap on Params.WaitFor.
	MaxWaitForPageLoadSeconds = 10

	DefaultRequestOrigin = "go"
)

// Params are the extraction behaviour flags. WaitForNetworkIdle and
// IncludeHidden only apply to the browser-bound path and never go on the wire.
type Params struct {
	WaitFor                 int          `json:"wait_for"`
	IsScrollToBottomEnabled bool         `json:"is_scroll_to_bottom_enabled"`
	Mode                    ResponseMode `json:"mode"`
	IsScreenshotEnabled     bool         `json:"is_screenshot_enabled"`

	WaitForNetworkIdle bool `json:"-"`
	IncludeHidden      bool `json:"-"`
}

func DefaultParams() Params {
	return Params{
		WaitFor:                 DefaultWaitForPageLoadSeconds,
		IsScrollToBottomEnabled: DefaultIsScrollToBottomEnabled,
		Mode:                    DefaultResponseMode,
		IsScreenshotEnabled:     DefaultIsScreenshotEnabled,
		WaitForNetworkIdle:      DefaultWaitForNetworkIdle,
		IncludeHidden:           DefaultIncludeHiddenData,
	}
}

type RequestMetadata struct {
	ExperimentalStealthModeEnabled bool `json:"experimental_stealth_mode_enabled"`
}

// ExtractionRequest is one outbound unit of work. Exactly one of Query and
// Prompt is set. URL is required on the REST path unless HTML carries a page
// snapshot.
type ExtractionRequest struct {
	URL      string
	HTML     string
	Query    string
	Prompt   string
	Params   Params
	Metadata RequestMetadata

	Timeout       time.Duration
	RequestOrigin string
}

type ExtractionResult struct {
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata"`
}

func (r *ExtractionResult) RequestID() string {
	return r.metadataString("request_id")
}

// Screenshot returns the base64 encoded screenshot, if one was requested.
func (r *ExtractionResult) Screenshot() string {
	return r.metadataString("screenshot")
}

func (r *ExtractionResult) metadataString(key string) string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata[key].(string)
	return s
}

// ExtractionOutcome is delivered by asynchronous extraction calls.
type ExtractionOutcome struct {
	Result *ExtractionResult
	Err    error
}
