package ai

import (
	"errors"
	"fmt"
)

// ErrEntitlement is returned when the resolved plan does not include AI
// writing. No backend is contacted in that case.
var ErrEntitlement = errors.New("current plan does not include AI writing")

// ProxyError is a failure reported by, or on the way to, the remote
// generation proxy. The message is safe to show to the user so they can
// decide whether to retry.
type ProxyError struct {
	StatusCode int
	Message    string
}

func (e *ProxyError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("proxy error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("proxy error: %s", e.Message)
}

// LocalError wraps a failure from the in-process generation backend.
type LocalError struct {
	Err error
}

func (e *LocalError) Error() string {
	return fmt.Sprintf("local generation failed: %s", e.Err.Error())
}

func (e *LocalError) Unwrap() error {
	return e.Err
}
