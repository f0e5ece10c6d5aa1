package agentql

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"agentql-tools/internal/domain/entity"
)

// mapResponse turns a status code and raw body into a result or one of the
// error taxonomy types. It never returns a JSON parsing error in place of the
// HTTP error it is describing.
func mapResponse(status int, body []byte) (*entity.ExtractionResult, error) {
	switch {
	case status >= 200 && status < 300:
		var result entity.ExtractionResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, &entity.ServiceError{
				Message:    fmt.Sprintf("unexpected response body: %s", fallbackText(status, body)),
				StatusCode: status,
			}
		}
		return &result, nil
	case status == http.StatusUnauthorized:
		return nil, entity.NewAuthenticationError()
	default:
		msg, requestID := errorMessage(status, body)
		return nil, &entity.ServiceError{
			Message:    msg,
			StatusCode: status,
			RequestID:  requestID,
		}
	}
}

// errorMessage prefers error_info, then the whole JSON document, then the raw text.
func errorMessage(status int, body []byte) (string, string) {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fallbackText(status, body), ""
	}

	var requestID string
	if obj, ok := parsed.(map[string]any); ok {
		if meta, ok := obj["metadata"].(map[string]any); ok {
			requestID, _ = meta["request_id"].(string)
		}
		if info, ok := obj["error_info"]; ok && info != nil {
			if s, ok := info.(string); ok {
				return s, requestID
			}
			return compactJSON(info, body), requestID
		}
	}
	return compactJSON(parsed, body), requestID
}

func compactJSON(v any, raw []byte) string {
	data, err := json.Marshal(v)
	if err != nil {
		return strings.TrimSpace(string(raw))
	}
	return string(data)
}

func fallbackText(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}
	return text
}
