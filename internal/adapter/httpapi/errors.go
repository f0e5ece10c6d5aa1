package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"agentql-tools/internal/domain/entity"
)

type errorBody struct {
	Error     string `json:"error"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}

	var (
		invalid *entity.InvalidInputError
		auth    *entity.AuthenticationError
		service *entity.ServiceError
		trans   *entity.TransportError
		conf    *entity.ConfigurationError
	)
	switch {
	case errors.As(err, &invalid):
		body.Type = "invalid_input"
		return http.StatusBadRequest, body
	case errors.As(err, &auth):
		body.Type = "authentication"
		return http.StatusUnauthorized, body
	case errors.As(err, &service):
		body.Type = "service"
		body.RequestID = service.RequestID
		return http.StatusBadGateway, body
	case errors.As(err, &trans):
		body.Type = "transport"
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, body
		}
		return http.StatusBadGateway, body
	case errors.As(err, &conf):
		body.Type = "configuration"
		return http.StatusInternalServerError, body
	default:
		body.Type = "internal"
		return http.StatusInternalServerError, body
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := statusFor(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
