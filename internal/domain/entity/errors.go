package entity

import (
	"errors"
	"fmt"
)

const (
	MsgQueryOrPromptRequired = "query or prompt required"
	MsgQueryPromptExclusive  = "query and prompt are mutually exclusive"
	MsgInvalidURLScheme      = "invalid URL scheme"
	MsgURLRequired           = "url required"
	MsgAPIKeyNotSet          = "API key not set"
	MsgBrowserNotProvided    = "browser not provided"
	MsgInternalServerError   = "Internal server error"
	MsgUnauthorized          = "The API Key you supplied is invalid. Please check your API key and whether it has hit its usage limit at https://dev.agentql.com."
)

// ConfigurationError reports missing or invalid setup. It is raised before any I/O.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// InvalidInputError reports a caller-side violation of the request rules.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// AuthenticationError is returned for HTTP 401. Message is always MsgUnauthorized.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// ServiceError is any other non-success answer from the extraction service.
type ServiceError struct {
	Message    string
	StatusCode int
	RequestID  string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// TransportError wraps network failures and timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewConfigurationError(msg string) error {
	return &ConfigurationError{Message: msg}
}

func NewInvalidInputError(msg string) error {
	return &InvalidInputError{Message: msg}
}

func NewAuthenticationError() error {
	return &AuthenticationError{Message: MsgUnauthorized}
}

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsInvalidInputError(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

func IsAuthenticationError(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

func IsServiceError(err error) bool {
	var target *ServiceError
	return errors.As(err, &target)
}

func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
