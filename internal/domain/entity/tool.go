package entity

type ToolName string

const (
	ToolExtractWebData            ToolName = "extract_web_data_with_rest_api"
	ToolExtractWebDataFromBrowser ToolName = "extract_web_data_from_browser"
	ToolGetWebElementFromBrowser  ToolName = "get_web_element_from_browser"

	ToolBrowserNavigate   ToolName = "navigate_browser"
	ToolBrowserClick      ToolName = "click_element"
	ToolBrowserScreenshot ToolName = "take_screenshot"

	ToolWriteFile ToolName = "write_file"
)

func (t ToolName) String() string {
	return string(t)
}
