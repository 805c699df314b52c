package analysis

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoFile is returned when an analysis is requested without a selected file.
var ErrNoFile = errors.New("no file selected")

// TransportError wraps a request that never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError reports a non-2xx response from the analysis endpoint.
type ServerError struct {
	StatusCode int
	// Message is the body's "error" field, empty when the body had none.
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error: %d", e.StatusCode)
}

// ParseError reports a success response whose body was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "unexpected response from server"
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsCanceled reports whether err stems from a cancelled request context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage maps any analysis error to the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		serverErr    *ServerError
		transportErr *TransportError
		parseErr     *ParseError
	)
	switch {
	case errors.As(err, &serverErr):
		return serverErr.Error()
	case errors.As(err, &parseErr):
		return parseErr.Error()
	case errors.As(err, &transportErr):
		return transportErr.Error()
	default:
		return err.Error()
	}
}
