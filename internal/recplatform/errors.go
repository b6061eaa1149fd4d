package recplatform

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is any non-2xx platform response, carrying enough for logs and
// for callers to branch on.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recplatform: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is the platform telling us a resource or
// user is unknown to it.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// isConflict reports whether the platform rejected a create because the
// resource already exists. Some deployments answer 409, older ones 422 with
// an "already exists" message.
func isConflict(statusCode int, message string) bool {
	if statusCode == http.StatusConflict {
		return true
	}
	return statusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(message), "already exists")
}
