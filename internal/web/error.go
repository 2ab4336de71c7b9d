package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
)

const maxErrorBodyBytes = 2048

// ExternalAPIError is a response with an unexpected status code. URL is always redacted.
type ExternalAPIError struct {
	URL        string
	StatusCode int
	// Message is the "error" field of a json error body, or the trimmed body itself.
	Message string
}

func newAPIError(redactedURL string, resp *http.Response) error {
	e := &ExternalAPIError{URL: redactedURL, StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		e.Message = fmt.Sprintf("unreadable response body: %v", err)

		return e
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		e.Message = payload.Error
	} else {
		e.Message = strings.TrimSpace(string(body))
	}

	return e
}

func (e *ExternalAPIError) Error() string {
	status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message == "" {
		return fmt.Sprintf("%s returned %s", e.URL, status)
	}

	return fmt.Sprintf("%s returned %s: %s", e.URL, status, e.Message)
}

// Is matches any ExternalAPIError with the same status code.
func (e *ExternalAPIError) Is(target error) bool {
	t, ok := target.(*ExternalAPIError)
	if !ok {
		return false
	}

	return e.StatusCode == t.StatusCode
}

func IsStatusCode(err error, statusCode ...int) bool {
	var apiErr *ExternalAPIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return slices.Contains(statusCode, apiErr.StatusCode)
}
