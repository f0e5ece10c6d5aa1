package agentql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"agentql-tools/internal/domain/entity"
)

const (
	headerAPIKey        = "X-API-Key"
	headerContentType   = "Content-Type"
	headerRequestOrigin = "X-TF-Request-Origin"
)

type requestBody struct {
	URL      string                 `json:"url,omitempty"`
	HTML     string                 `json:"html,omitempty"`
	Query    *string                `json:"query"`
	Prompt   *string                `json:"prompt"`
	Params   entity.Params          `json:"params"`
	Metadata entity.RequestMetadata `json:"metadata"`
}

func buildBody(req entity.ExtractionRequest) requestBody {
	params := req.Params
	if params.Mode == "" {
		params.Mode = entity.DefaultResponseMode
	}
	return requestBody{
		URL:      strings.TrimSpace(req.URL),
		HTML:     req.HTML,
		Query:    optional(req.Query),
		Prompt:   optional(req.Prompt),
		Params:   params,
		Metadata: req.Metadata,
	}
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func (c *Client) newQueryRequest(ctx context.Context, req entity.ExtractionRequest) (*http.Request, error) {
	payload, err := json.Marshal(buildBody(req))
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	origin := req.RequestOrigin
	if origin == "" {
		origin = c.requestOrigin
	}
	httpReq.Header.Set(headerAPIKey, c.apiKey)
	httpReq.Header.Set(headerContentType, "application/json")
	httpReq.Header.Set(headerRequestOrigin, origin)
	return httpReq, nil
}
