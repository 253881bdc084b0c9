package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes the server attaches to GraphQL errors. UNAUTHENTICATED and
// FORBIDDEN are intercepted by the error link to tear down the session.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
)

// Extensions is the extensions object attached to a GraphQL error.
type Extensions struct {
	Code string `json:"code"`
}

// Error is a single GraphQL application error from the response envelope.
type Error struct {
	Message    string     `json:"message"`
	Extensions Extensions `json:"extensions"`
}

func (e Error) Error() string {
	if e.Extensions.Code != "" {
		return fmt.Sprintf("%s: %s", e.Extensions.Code, e.Message)
	}
	return e.Message
}

// ErrorList aggregates the errors array of a response.
type ErrorList []Error

func (el ErrorList) Error() string {
	msgs := make([]string, len(el))
	for i, e := range el {
		msgs[i] = e.Error()
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// HTTPError is a non-2xx transport-level response.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("graphql transport: %s", e.Status)
}

// IsAuthError reports whether err represents an authentication failure:
// either an HTTP 401 or a GraphQL error carrying UNAUTHENTICATED/FORBIDDEN.
func IsAuthError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 401
	}
	var list ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			if e.Extensions.Code == CodeUnauthenticated || e.Extensions.Code == CodeForbidden {
				return true
			}
		}
	}
	var single Error
	if errors.As(err, &single) {
		return single.Extensions.Code == CodeUnauthenticated || single.Extensions.Code == CodeForbidden
	}
	return false
}
