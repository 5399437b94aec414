package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// APIError represents a non-2xx response returned by the API.
// Message is empty when the server sent no usable body.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code,omitempty"`
	Message    string      `json:"message,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	// Body is the raw response body, kept for diagnostics.
	Body string `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	switch {
	case e.Message == "":
		return fmt.Sprintf("API error (status: %d)", e.StatusCode)
	case e.Code != "":
		return fmt.Sprintf("API error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	default:
		return fmt.Sprintf("API error: %s (status: %d)", e.Message, e.StatusCode)
	}
}

// IsNotFound returns true if the error is a 404 not found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized returns true if the error is a 401 unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsConflict returns true if the error is a 409 conflict error
func (e *APIError) IsConflict() bool {
	return e.StatusCode == 409
}

// IsValidationError returns true if the error is a 400 validation error
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == 400
}

// IsRateLimited returns true if the error is a 429 error
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if the error is a 5xx server error
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// errorBody covers the shapes servers use for failures: a top level
// "message", or an "error" field holding either a string or an object.
type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details interface{}     `json:"details"`
	Error   json.RawMessage `json:"error"`
}

type nestedError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       string(body),
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apiErr
	}

	var eb errorBody
	if err := json.Unmarshal(trimmed, &eb); err != nil {
		return apiErr
	}

	apiErr.Code = eb.Code
	apiErr.Message = strings.TrimSpace(eb.Message)
	apiErr.Details = eb.Details

	if apiErr.Message == "" && len(eb.Error) > 0 {
		var s string
		if err := json.Unmarshal(eb.Error, &s); err == nil {
			apiErr.Message = strings.TrimSpace(s)
		} else {
			var ne nestedError
			if err := json.Unmarshal(eb.Error, &ne); err == nil {
				apiErr.Message = strings.TrimSpace(ne.Message)
				if apiErr.Code == "" {
					apiErr.Code = ne.Code
				}
				if apiErr.Details == nil {
					apiErr.Details = ne.Details
				}
			}
		}
	}

	return apiErr
}
