package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrorKind classifies a failed API call.
type ErrorKind int

const (
	// KindServerRejection means the server answered with a non-success status
	KindServerRejection ErrorKind = iota
	// KindNotFound means the server answered 404 for the addressed resource
	KindNotFound
	// KindTransportUnavailable means no response was received at all
	KindTransportUnavailable
)

// String implements fmt.Stringer
func (k ErrorKind) String() string {
	switch k {
	case KindServerRejection:
		return "server_rejection"
	case KindNotFound:
		return "not_found"
	case KindTransportUnavailable:
		return "transport_unavailable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// networkErrorMessage is shown when the request never produced a response
const networkErrorMessage = "Network error"

// APIError is the normalized form of every failed API call.
type APIError struct {
	Kind        ErrorKind
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
	Err         error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Kind == KindTransportUnavailable && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying transport error, if any
func (e *APIError) Unwrap() error {
	return e.Err
}

func kindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindNotFound
}

// IsTransportUnavailable reports whether err means the API could not be reached
func IsTransportUnavailable(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindTransportUnavailable
}

// IsServerRejection reports whether the server answered and refused the request.
// Not-found answers count as rejections.
func IsServerRejection(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind != KindTransportUnavailable
}

// Message returns the user-facing message carried by err, or fallback when err
// is not an API error.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func newTransportError(err error) *APIError {
	return &APIError{
		Kind:    KindTransportUnavailable,
		Message: networkErrorMessage,
		Err:     err,
	}
}

func newResponseError(status int, body []byte, fallback string) *APIError {
	message, fields := ExtractMessage(body, fallback)
	kind := KindServerRejection
	if status == 404 {
		kind = KindNotFound
	}
	return &APIError{
		Kind:        kind,
		StatusCode:  status,
		Message:     message,
		FieldErrors: fields,
	}
}

// reservedErrorKeys are the top-level keys that carry a single message
var reservedErrorKeys = []string{"error", "message", "detail"}

// ExtractMessage pulls a user-facing message out of an error response body.
//
// Precedence: "error", then "message", then "detail", then per-field validation
// messages rendered as "field: message" (fields sorted, joined by ", "), then
// fallback. List values contribute their first element. A body that is a bare
// JSON string is used as is. The per-field map is returned whenever present.
func ExtractMessage(body []byte, fallback string) (string, map[string][]string) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fallback, nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fallback, nil
	}

	switch v := decoded.(type) {
	case string:
		if v == "" {
			return fallback, nil
		}
		return v, nil
	case []any:
		if msg := firstMessage(v); msg != "" {
			return msg, nil
		}
		return fallback, nil
	case map[string]any:
		fields := fieldErrors(v)
		for _, key := range reservedErrorKeys {
			if raw, ok := v[key]; ok {
				if msg := firstMessage(raw); msg != "" {
					return msg, fields
				}
			}
		}
		if len(fields) == 0 {
			return fallback, nil
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		slices.Sort(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+fields[name][0])
		}
		return strings.Join(parts, ", "), fields
	default:
		return fallback, nil
	}
}

func fieldErrors(body map[string]any) map[string][]string {
	var fields map[string][]string
	for key, raw := range body {
		if slices.Contains(reservedErrorKeys, key) {
			continue
		}
		messages := messagesOf(raw)
		if len(messages) == 0 {
			continue
		}
		if fields == nil {
			fields = make(map[string][]string)
		}
		fields[key] = messages
	}
	return fields
}

func messagesOf(raw any) []string {
	switch v := raw.(type) {
	case []any:
		var out []string
		for _, elem := range v {
			if msg := firstMessage(elem); msg != "" {
				out = append(out, msg)
			}
		}
		return out
	default:
		if msg := firstMessage(v); msg != "" {
			return []string{msg}
		}
		return nil
	}
}

// firstMessage renders a JSON value as a message, descending into the first
// element of lists.
func firstMessage(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		if len(v) == 0 {
			return ""
		}
		return firstMessage(v[0])
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
