package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/go-github/v57/github"
)

var (
	// ErrAuthentication is returned when the API rejects the credential (HTTP 401).
	ErrAuthentication = errors.New("authentication failed: check the GitHub token")

	// ErrUserNotFound is returned when the listed account does not exist (HTTP 404).
	ErrUserNotFound = errors.New("user not found")
)

// TransportError describes a failed exchange with the API: an unexpected
// status, a timeout, a network failure or an undecodable payload.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Temporary reports whether repeating the request could succeed:
// timeouts, network failures and 5xx responses.
func (e *TransportError) Temporary() bool {
	if e.StatusCode >= http.StatusInternalServerError {
		return true
	}
	if e.StatusCode != 0 {
		return false
	}
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) || errors.Is(e.Err, context.DeadlineExceeded)
}

// statusOf extracts the HTTP status from a go-github response, or 0.
func statusOf(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
