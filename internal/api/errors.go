package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind categorizes API failures for programmatic handling.
type ErrorKind int

const (
	// KindNetwork covers transport failures and unexpected server statuses.
	KindNetwork ErrorKind = iota

	// KindNotFound means the requested resource does not exist.
	KindNotFound

	// KindValidation means the server rejected the request body.
	KindValidation

	// KindDecode means the server answered 2xx with a body we could not parse.
	KindDecode
)

// String returns the kind as a string for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by (*Error).Is.
var (
	ErrNotFound   = errors.New("api: not found")
	ErrValidation = errors.New("api: validation failed")
	ErrNetwork    = errors.New("api: network failure")
)

// Error is returned by every Client method.
type Error struct {
	Kind ErrorKind

	// Op is the client operation, e.g. "get interview".
	Op string

	// Status is the HTTP status code, zero for transport failures.
	Status int

	// Detail is the human-readable message supplied by the server, if any.
	Detail string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	switch {
	case e.Detail != "":
		b.WriteString(e.Detail)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

// DetailOf returns the server-supplied detail carried by err, or "".
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// DetailOrError returns the server-supplied detail of err, or err's own text.
func DetailOrError(err error) string {
	if d := DetailOf(err); d != "" {
		return d
	}
	return err.Error()
}

// errorBody is the error envelope the server uses: {"detail": ...}.
// detail is a string for HTTP errors and a list of objects for request validation.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// parseDetail extracts a readable message from an error response body.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}

	var items []validationItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

// statusError maps a non-2xx response to an *Error.
func statusError(op string, status int, body []byte) *Error {
	e := &Error{
		Op:     op,
		Status: status,
		Detail: parseDetail(body),
	}
	switch status {
	case http.StatusNotFound:
		e.Kind = KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	default:
		e.Kind = KindNetwork
	}
	return e
}
