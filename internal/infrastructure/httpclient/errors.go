package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Remote error codes recognized by the transport. Any other code surfaces as
// a plain APIError carrying the code verbatim.
const (
	codePermissionDenied = "PERMISSION_DENIED"
	codeProcessingError  = "DOCUMENT_PROCESSING_ERROR"
	codeVirusDetected    = "RESOURCE_VIRUS_DETECTED"
)

// APIError is returned for any non-2xx response that does not map to a more
// specific error, and for 2xx responses whose body fails to parse as the
// expected JSON.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("echosign api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("echosign api error: status=%d message=%s", e.StatusCode, e.Message)
}

// AuthError is returned on HTTP 401: the access token is invalid or lacks the
// required scope. There is no refresh flow, the caller must supply a new token.
type AuthError struct {
	APIError
}

func (e *AuthError) Unwrap() error { return &e.APIError }

// PermissionError is returned when the remote reports a permission-code
// failure distinct from a generic 401.
type PermissionError struct {
	APIError
}

func (e *PermissionError) Unwrap() error { return &e.APIError }

// ProcessingError is returned when the remote service deleted an uploaded
// file because it could not process its content (scripts, macros, embedded
// code).
type ProcessingError struct {
	APIError
}

func (e *ProcessingError) Unwrap() error { return &e.APIError }

// VirusDetectedError is the content-scanning specialization of
// ProcessingError: the uploaded file was deleted because a virus was found.
type VirusDetectedError struct {
	ProcessingError
}

func (e *VirusDetectedError) Unwrap() error { return &e.ProcessingError }

// classifyError maps a non-2xx response onto the error taxonomy. A body that
// is not valid JSON still produces an APIError with the raw body as the
// message, truncated; the error path itself never fails.
func classifyError(statusCode int, body []byte) error {
	var remote struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &remote); err != nil {
		remote.Message = truncateString(string(body), maxBodyLogLength)
	}
	if remote.Message == "" {
		remote.Message = "received an error response from the Echosign API"
	}

	base := APIError{
		StatusCode: statusCode,
		Code:       remote.Code,
		Message:    remote.Message,
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		return &AuthError{base}
	case remote.Code == codeVirusDetected:
		return &VirusDetectedError{ProcessingError{base}}
	case remote.Code == codeProcessingError:
		return &ProcessingError{base}
	case strings.Contains(remote.Code, codePermissionDenied):
		return &PermissionError{base}
	default:
		return &base
	}
}

// decodeError wraps a JSON decoding failure on a successful response.
func decodeError(statusCode int, err error) error {
	return &APIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("failed to unmarshal response: %v", err),
	}
}
