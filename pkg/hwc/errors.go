package hwc

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidRequest = errors.New("invalid request")

// APIError is returned by typed calls when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Method     string
	Host       string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s https://%s%s failed with status %d: %s",
		e.Method, e.Host, e.Path, e.StatusCode, e.Body)
}

// HasStatus reports whether err wraps an APIError with one of the given codes.
func HasStatus(err error, codes ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}

// isVersionMismatch identifies the statuses that trigger the v1 EIP fallback.
func isVersionMismatch(status int) bool {
	return status == http.StatusNotFound || status == http.StatusMethodNotAllowed
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
}
