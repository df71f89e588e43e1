package common

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	ErrAuthFailure       = errors.New("authentication failed")
	ErrProtocol          = errors.New("protocol error")
	ErrNotFound          = errors.New("not found")
	ErrTimeout           = errors.New("timeout")
	ErrFanOut            = errors.New("concurrent batch failed")
	ErrMissingCredential = errors.New("missing credentials")
)

// Error is the single typed failure returned by remote operations. Kind is
// one of the sentinels above; Err is the underlying cause, if any.
type Error struct {
	Kind       error
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewProtocolError(op, message string) error {
	return &Error{Kind: ErrProtocol, Op: op, Message: message}
}

// StatusError classifies an unexpected response status. body may be nil.
func StatusError(op string, resp *http.Response, body []byte) error {
	kind := ErrProtocol
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrAuthFailure
	case http.StatusNotFound:
		kind = ErrNotFound
	}

	message := ExtractErrorMessage(body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &Error{
		Kind:       kind,
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// TransportError wraps a failure that happened before a response arrived.
// Caller cancellation is returned unclassified so it is never mistaken for a
// backend fault.
func TransportError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: ErrTimeout, Op: op, Err: err}
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return &Error{Kind: ErrProtocol, Op: op, Err: err}
}

// FanOutError reports the first failure of a concurrent batch. The cause stays
// reachable through errors.Is and errors.As.
func FanOutError(op string, first error) error {
	if first == nil {
		return nil
	}
	return &Error{Kind: ErrFanOut, Op: op, Err: first}
}

type ocsJSON struct {
	OCS struct {
		Meta struct {
			Message string `json:"message"`
		} `json:"meta"`
	} `json:"ocs"`
}

type ocsXML struct {
	Meta struct {
		Message string `xml:"message"`
	} `xml:"meta"`
}

// ExtractErrorMessage pulls the human readable message out of an OCS
// envelope, JSON or XML. It returns "" when the body carries none.
func ExtractErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	switch trimmed[0] {
	case '{':
		var env ocsJSON
		if err := json.Unmarshal([]byte(trimmed), &env); err == nil {
			return strings.TrimSpace(env.OCS.Meta.Message)
		}
	case '<':
		var env ocsXML
		if err := xml.Unmarshal([]byte(trimmed), &env); err == nil {
			return strings.TrimSpace(env.Meta.Message)
		}
	}

	return ""
}
