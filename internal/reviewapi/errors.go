package reviewapi

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrBodyTooLarge is wrapped by MalformedResponseError when a success body
// exceeds the read limit.
var ErrBodyTooLarge = errors.New("response body too large")

// StatusError is returned for any non-success HTTP status. Detail holds at
// most the first 200 characters of the response body.
type StatusError struct {
	StatusCode int
	Detail     string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}

	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode,
		e.Detail)
}

// newStatusError builds a StatusError, truncating body on a rune boundary.
func newStatusError(code int, body []byte) *StatusError {
	detail := string(body)
	if utf8.RuneCountInString(detail) > maxDetailLen {
		runes := []rune(detail)
		detail = string(runes[:maxDetailLen])
	}

	return &StatusError{StatusCode: code, Detail: detail}
}

// MalformedResponseError is returned when a success response cannot be
// decoded.
type MalformedResponseError struct {
	Path string
	Err  error
}

// Error returns the error message.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Path, e.Err)
}

// Unwrap returns the decoding error.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsCanceled reports whether err is the outcome of a cancelled request
// rather than a genuine failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
