package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds for errors.Is matching against the concrete error types below.
var (
	ErrTransport     = errors.New("transport error")
	ErrMissingLength = errors.New("missing content length")
	ErrWrite         = errors.New("write error")
	ErrConfiguration = errors.New("configuration error")
)

// TransportError covers failed requests, non-success statuses and broken
// or mis-sized response bodies.
type TransportError struct {
	URL        string
	Range      string // Range header value, empty for HEAD and unranged GET
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("transport error: ")
	b.WriteString(e.URL)
	if e.Range != "" {
		fmt.Fprintf(&b, " (%s)", e.Range)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": unexpected status code %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Kind() string { return "TransportError" }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

type MissingLengthError struct {
	URL   string
	Value string // raw Content-Length value, empty when absent
}

func (e *MissingLengthError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("missing content length: %s did not provide Content-Length", e.URL)
	}
	return fmt.Sprintf("missing content length: %s reported unusable Content-Length %q", e.URL, e.Value)
}

func (e *MissingLengthError) Kind() string { return "MissingLengthError" }

func (e *MissingLengthError) Is(target error) bool { return target == ErrMissingLength }

// WriteError covers local file creation, truncation and positioned writes.
type WriteError struct {
	Path   string
	Op     string
	Offset int64
	Err    error
}

func (e *WriteError) Error() string {
	if e.Op == "write" {
		return fmt.Sprintf("write error: %s at offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("write error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Kind() string { return "WriteError" }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }

type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Kind() string { return "ConfigurationError" }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ErrorKind names the taxonomy entry of err for user-facing messages.
func ErrorKind(err error) string {
	var k interface{ Kind() string }
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, ErrTransport):
		return "TransportError"
	case errors.Is(err, ErrMissingLength):
		return "MissingLengthError"
	case errors.Is(err, ErrWrite):
		return "WriteError"
	case errors.Is(err, ErrConfiguration):
		return "ConfigurationError"
	default:
		return "Error"
	}
}
