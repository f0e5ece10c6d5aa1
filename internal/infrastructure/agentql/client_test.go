package agentql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentql-tools/internal/domain/entity"
)

type countingDoer struct {
	calls atomic.Int32
}

func (d *countingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return nil, errors.New("unexpected network call")
}

func noEnv(string) (string, bool) { return "", false }

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := DefaultConfig("test-key")
	cfg.Endpoint = srv.URL + "/v1/query-data"
	cfg.ValidateEndpoint = srv.URL + "/v1/validate-api-key"
	c, err := NewClient(cfg, WithHTTPClient(srv.Client()), WithEnvLookup(noEnv))
	require.NoError(t, err)
	return c
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func queryRequest() entity.ExtractionRequest {
	return entity.ExtractionRequest{
		URL:    "https://example.com",
		Query:  "{ posts[] { title } }",
		Params: entity.DefaultParams(),
	}
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	c, err := NewClient(DefaultConfig(""), WithEnvLookup(noEnv))

	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, entity.IsConfigurationError(err))
	assert.Equal(t, entity.MsgAPIKeyNotSet, err.Error())
}

func TestNewClient_KeyFromEnvironment(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == APIKeyEnvVar {
			return "env-key", true
		}
		return "", false
	}

	c, err := NewClient(DefaultConfig(""), WithEnvLookup(lookup))
	require.NoError(t, err)
	assert.Equal(t, "env-key", c.apiKey)

	c, err = NewClient(DefaultConfig("explicit"), WithEnvLookup(lookup))
	require.NoError(t, err)
	assert.Equal(t, "explicit", c.apiKey)
}

func TestExtract_InvalidInputMakesNoCalls(t *testing.T) {
	doer := &countingDoer{}
	c, err := NewClient(DefaultConfig("k"), WithHTTPClient(doer))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  entity.ExtractionRequest
		msg  string
	}{
		{"neither", entity.ExtractionRequest{URL: "https://example.com"}, entity.MsgQueryOrPromptRequired},
		{"both", entity.ExtractionRequest{URL: "https://example.com", Query: "{ a }", Prompt: "a"}, entity.MsgQueryPromptExclusive},
		{"ftp scheme", entity.ExtractionRequest{URL: "ftp://example.com", Query: "{ a }"}, entity.MsgInvalidURLScheme},
		{"missing url", entity.ExtractionRequest{Prompt: "a"}, entity.MsgURLRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Extract(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, entity.IsInvalidInputError(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
	assert.Equal(t, int32(0), doer.calls.Load())
}

func TestExtract_Success(t *testing.T) {
	var captured map[string]any
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data": {"posts": [{"title": "A"}]}, "metadata": {"request_id": "r1"}}`)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv).Extract(context.Background(), queryRequest())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"posts": []any{map[string]any{"title": "A"}}}, res.Data)
	assert.Equal(t, "r1", res.Metadata["request_id"])
	assert.Equal(t, "r1", res.RequestID())

	assert.Equal(t, "test-key", headers.Get("X-API-Key"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, entity.DefaultRequestOrigin, headers.Get("X-TF-Request-Origin"))

	assert.Equal(t, "https://example.com", captured["url"])
	assert.Equal(t, "{ posts[] { title } }", captured["query"])
	assert.Contains(t, captured, "prompt")
	assert.Nil(t, captured["prompt"])
	assert.NotContains(t, captured, "html")

	params := captured["params"].(map[string]any)
	assert.Equal(t, "fast", params["mode"])
	assert.Equal(t, float64(0), params["wait_for"])
	assert.Equal(t, false, params["is_scroll_to_bottom_enabled"])
	assert.Equal(t, false, params["is_screenshot_enabled"])
	assert.NotContains(t, params, "WaitForNetworkIdle")

	metadata := captured["metadata"].(map[string]any)
	assert.Equal(t, false, metadata["experimental_stealth_mode_enabled"])
}

func TestExtract_RequestOriginOverride(t *testing.T) {
	var origin string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin = r.Header.Get("X-TF-Request-Origin")
		_, _ = io.WriteString(w, `{"data": {}, "metadata": {}}`)
	}))
	defer srv.Close()

	req := queryRequest()
	req.RequestOrigin = "langchain"
	_, err := newTestClient(t, srv).Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "langchain", origin)
}

func TestExtract_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 ignores body",
			status: http.StatusUnauthorized,
			body:   `{"error_info": "something else"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, entity.IsAuthenticationError(err))
				assert.Equal(t, entity.MsgUnauthorized, err.Error())
			},
		},
		{
			name:   "error_info",
			status: http.StatusInternalServerError,
			body:   `{"error_info": "boom"}`,
			check: func(t *testing.T, err error) {
				var se *entity.ServiceError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "boom", se.Message)
				assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
			},
		},
		{
			name:   "raw text fallback",
			status: http.StatusInternalServerError,
			body:   "oops",
			check: func(t *testing.T, err error) {
				var se *entity.ServiceError
				require.ErrorAs(t, err, &se)
				assert.Contains(t, se.Message, "oops")
			},
		},
		{
			name:   "whole json without error_info",
			status: http.StatusBadRequest,
			body:   `{"detail": "bad query", "metadata": {"request_id": "r9"}}`,
			check: func(t *testing.T, err error) {
				var se *entity.ServiceError
				require.ErrorAs(t, err, &se)
				assert.Contains(t, se.Message, "bad query")
				assert.Equal(t, "r9", se.RequestID)
			},
		},
		{
			name:   "empty body",
			status: http.StatusBadGateway,
			body:   "",
			check: func(t *testing.T, err error) {
				var se *entity.ServiceError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "HTTP 502: Bad Gateway", se.Message)
			},
		},
		{
			name:   "non json success",
			status: http.StatusOK,
			body:   "<html>",
			check: func(t *testing.T, err error) {
				var se *entity.ServiceError
				require.ErrorAs(t, err, &se)
				assert.Contains(t, se.Message, "<html>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(respond(tt.status, tt.body))
			defer srv.Close()

			res, err := newTestClient(t, srv).Extract(context.Background(), queryRequest())
			require.Error(t, err)
			assert.Nil(t, res)
			tt.check(t, err)
		})
	}
}

func TestExtract_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	req := queryRequest()
	req.Timeout = 50 * time.Millisecond

	_, err := newTestClient(t, srv).Extract(context.Background(), req)
	require.Error(t, err)
	assert.True(t, entity.IsTransportError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtract_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusOK, `{"data": {}}`))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv).Extract(ctx, queryRequest())
	require.Error(t, err)
	assert.True(t, entity.IsTransportError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractAsync(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusOK, `{"data": {"title": "A"}, "metadata": {"request_id": "r2"}}`))
	defer srv.Close()

	out := newTestClient(t, srv).ExtractAsync(context.Background(), queryRequest())

	outcome, ok := <-out
	require.True(t, ok)
	require.NoError(t, outcome.Err)
	assert.Equal(t, "A", outcome.Result.Data["title"])

	_, ok = <-out
	assert.False(t, ok, "channel should be closed after one outcome")
}

func TestExtractAsync_ValidationError(t *testing.T) {
	doer := &countingDoer{}
	c, err := NewClient(DefaultConfig("k"), WithHTTPClient(doer))
	require.NoError(t, err)

	outcome := <-c.ExtractAsync(context.Background(), entity.ExtractionRequest{URL: "https://example.com"})
	assert.True(t, entity.IsInvalidInputError(outcome.Err))
	assert.Equal(t, int32(0), doer.calls.Load())
}

func TestExtract_HTMLSnapshot(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = io.WriteString(w, `{"data": {"ok": true}}`)
	}))
	defer srv.Close()

	req := entity.ExtractionRequest{
		HTML:   "<html><body>hi</body></html>",
		Prompt: "the greeting",
		Params: entity.DefaultParams(),
	}
	_, err := newTestClient(t, srv).Extract(context.Background(), req)
	require.NoError(t, err)

	assert.NotContains(t, captured, "url")
	assert.Equal(t, "<html><body>hi</body></html>", captured["html"])
	assert.Nil(t, captured["query"])
	assert.Equal(t, "the greeting", captured["prompt"])
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		status int
		check  func(t *testing.T, err error)
	}{
		{http.StatusOK, func(t *testing.T, err error) { assert.NoError(t, err) }},
		{http.StatusUnauthorized, func(t *testing.T, err error) { assert.True(t, entity.IsAuthenticationError(err)) }},
		{http.StatusInternalServerError, func(t *testing.T, err error) {
			assert.True(t, entity.IsServiceError(err))
			assert.Equal(t, entity.MsgInternalServerError, err.Error())
		}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var key, path string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				key = r.Header.Get("X-API-Key")
				path = r.URL.Path
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			tt.check(t, newTestClient(t, srv).ValidateAPIKey(context.Background()))
			assert.Equal(t, "test-key", key)
			assert.True(t, strings.HasSuffix(path, "/validate-api-key"))
		})
	}
}

type deadlineDoer struct {
	deadline time.Time
	ok       bool
}

func (d *deadlineDoer) Do(req *http.Request) (*http.Response, error) {
	d.deadline, d.ok = req.Context().Deadline()
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func TestValidateAPIKey_DoesNotUseExtractionTimeout(t *testing.T) {
	doer := &deadlineDoer{}
	c, err := NewClient(DefaultConfig("test-key"), WithHTTPClient(doer), WithEnvLookup(noEnv))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, c.ValidateAPIKey(context.Background()))
	require.True(t, doer.ok)
	assert.WithinDuration(t, start.Add(DefaultValidateTimeout), doer.deadline, 5*time.Second)
	assert.Less(t, doer.deadline.Sub(start), entity.DefaultAPITimeout)
}

func TestValidateAPIKey_TimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := DefaultConfig("test-key")
	cfg.ValidateEndpoint = srv.URL + "/validate-api-key"
	cfg.ValidateTimeout = 50 * time.Millisecond
	c, err := NewClient(cfg, WithHTTPClient(srv.Client()), WithEnvLookup(noEnv))
	require.NoError(t, err)

	err = c.ValidateAPIKey(context.Background())
	assert.True(t, entity.IsTransportError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
