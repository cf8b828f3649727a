package domain

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an Error for the transport layer
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindExternalTool
)

// Status maps the kind to an HTTP status code
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure that is safe to show to a client. Messages come from the
// catalog in messages.go; Err keeps the underlying cause for logging only.
type Error struct {
	Kind     Kind
	Messages []string
	// List marks the result of a collect-all check. Clients always get it
	// as an errors array, even with a single entry.
	List bool
	Err  error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msgs ...string) *Error {
	return &Error{Kind: KindValidation, Messages: msgs}
}

// ValidationList reports the failures of a check that collects every problem
func ValidationList(msgs ...string) *Error {
	return &Error{Kind: KindValidation, Messages: msgs, List: true}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{msg}}
}

func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Messages: []string{MsgUnauthorized}}
}

func ExternalTool(msg string, err error) *Error {
	return &Error{Kind: KindExternalTool, Messages: []string{msg}, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Messages: []string{MsgInternalServerError}, Err: err}
}

// AsError extracts a *Error from err, if there is one in the chain
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries a domain error of the given kind
func IsKind(err error, kind Kind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}
