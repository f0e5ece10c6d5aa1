package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/google/uuid"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
)

const maxBodyBytes = 1 << 20

// ValidatorFactory builds a credential validator for the supplied key.
type ValidatorFactory func(apiKey string) (output.CredentialValidator, error)

// SampleFunc returns sample output for an AgentQL query.
type SampleFunc func(query string) (map[string]any, error)

type Deps struct {
	Registry  output.ToolRegistry
	Validator ValidatorFactory
	Sampler   SampleFunc
	Logger    output.LoggerPort
}

type Config struct {
	ServiceName string
	LogLevel    string
	JSONLogs    bool
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "agentql-tools",
		LogLevel:    "info",
		JSONLogs:    true,
	}
}

type handler struct {
	deps Deps
}

// NewRouter builds the plugin endpoint:
//
//	GET  /healthz
//	GET  /tools
//	POST /tools/{name}/invoke
//	POST /credentials/validate
//	POST /query/sample
func NewRouter(cfg Config, deps Deps) http.Handler {
	h := &handler{deps: deps}

	accessLog := httplog.NewLogger(cfg.ServiceName, httplog.Options{
		LogLevel: cfg.LogLevel,
		JSON:     cfg.JSONLogs,
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/tools", h.listTools)
	r.Post("/tools/{name}/invoke", h.invokeTool)
	r.Post("/credentials/validate", h.validateCredentials)
	r.Post("/query/sample", h.sampleQuery)
	return r
}

// Serve runs the router on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, router http.Handler, log output.LoggerPort) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("plugin endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": h.deps.Registry.Definitions()})
}

func (h *handler) invokeTool(w http.ResponseWriter, r *http.Request) {
	name := entity.ToolName(chi.URLParam(r, "name"))
	tool, ok := h.deps.Registry.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown tool: " + name.String(), Type: "not_found"})
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	invocationID := uuid.NewString()
	log := h.deps.Logger.WithFields(map[string]any{
		"invocation_id": invocationID,
		"tool":          name.String(),
	})

	start := time.Now()
	out, err := tool.Execute(r.Context(), body)
	if err != nil {
		log.Warn("tool invocation failed", "error", err, "elapsed", time.Since(start).String())
		writeError(w, err)
		return
	}
	log.Info("tool invocation finished", "elapsed", time.Since(start).String())

	writeJSON(w, http.StatusOK, map[string]any{
		"invocation_id": invocationID,
		"result":        resultValue(out),
	})
}

func (h *handler) validateCredentials(w http.ResponseWriter, r *http.Request) {
	var input struct {
		APIKey string `json:"api_key"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(input.APIKey) == "" {
		writeError(w, entity.NewInvalidInputError("api_key required"))
		return
	}

	validator, err := h.deps.Validator(input.APIKey)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validator.ValidateAPIKey(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *handler) sampleQuery(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Query string `json:"query"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	sample, err := h.deps.Sampler(input.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sample": sample})
}

func readBody(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", entity.NewInvalidInputError("read request body: " + err.Error())
	}
	return string(data), nil
}

func decodeBody(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		body = "{}"
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return entity.NewInvalidInputError("invalid JSON body: " + err.Error())
	}
	return nil
}

// resultValue embeds JSON tool output as-is and everything else as a string.
func resultValue(out string) any {
	if json.Valid([]byte(out)) {
		return json.RawMessage(out)
	}
	return out
}
