// Package apperr classifies console failures and turns them into messages
// fit for a notification.
package apperr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNetwork       Kind = "network"
	KindBadRequest    Kind = "bad_request"
	KindUnauthorized  Kind = "unauthorized"
	KindForbidden     Kind = "forbidden"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindUnprocessable Kind = "unprocessable"
	KindServer        Kind = "server"
	KindUnknown       Kind = "unknown"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when there is nothing to report.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// APIError is a failure reported by, or on the way to, the backend.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Details string
	Fields  FieldErrors
	cause   error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "" && e.Details != "":
		return fmt.Sprintf("%s (%d): %s: %s", e.Kind, e.Status, e.Message, e.Details)
	case e.Message != "":
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	default:
		return fmt.Sprintf("%s (%d)", e.Kind, e.Status)
	}
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func KindForStatus(status int) Kind {
	switch {
	case status == 0:
		return KindNetwork
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusUnprocessableEntity:
		return KindUnprocessable
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnknown
	}
}

func New(status int, message string) *APIError {
	return &APIError{Kind: KindForStatus(status), Status: status, Message: message}
}

// Network wraps a transport failure; the backend was never reached.
func Network(err error) *APIError {
	return &APIError{Kind: KindNetwork, cause: err}
}

// FromBody builds an error from a non-2xx backend response body. The body
// may carry `message`, `error` and `details`; `details` is a string, a list
// or a field→messages object.
func FromBody(status int, body []byte) *APIError {
	e := New(status, "")

	var payload struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		e.Message = strings.TrimSpace(string(body))
		return e
	}

	e.Message = payload.Message
	if e.Message == "" {
		e.Message = payload.Error
	}
	e.Details, e.Fields = flattenDetails(payload.Details)
	return e
}

func flattenDetails(raw json.RawMessage) (string, FieldErrors) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", "), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return string(raw), nil
	}

	fields := FieldErrors{}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var msgs []string
		if err := json.Unmarshal(obj[k], &msgs); err != nil {
			var one string
			if err = json.Unmarshal(obj[k], &one); err != nil {
				one = string(obj[k])
			}
			msgs = []string{one}
		}
		if len(msgs) > 0 {
			fields[k] = msgs[0]
		}
		parts = append(parts, k+": "+strings.Join(msgs, ", "))
	}
	return strings.Join(parts, "; "), fields
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var fe FieldErrors
	if errors.As(err, &fe) {
		return KindValidation
	}

	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// InUse reports a delete/update rejected because the record is still
// referenced elsewhere. Those get a dedicated dialog instead of a toast.
func InUse(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	text := strings.ToLower(ae.Message + " " + ae.Details)
	return strings.Contains(text, "associated") || strings.Contains(text, "assigned")
}

// RequiresLogin is true for failures that should send the user to the login page.
func RequiresLogin(err error) bool {
	k := KindOf(err)
	return k == KindUnauthorized || k == KindForbidden
}

var defaultMessages = map[Kind]string{
	KindNetwork:      "Network error: Please check your internet connection",
	KindBadRequest:   "Bad request: Please check your input data",
	KindUnauthorized: "Unauthorized: Please login again",
	KindForbidden:    "Forbidden: You do not have permission to perform this action",
	KindNotFound:     "Resource not found",
	KindConflict:     "Conflict: The record already exists or is still in use",
	KindServer:       "Server error: Please try again later",
}

// Describe picks the text for a notification: the backend message when there
// is one, otherwise a default for the kind, otherwise fallback.
func Describe(err error, fallback string) string {
	return DescribeWith(err, fallback, nil)
}

// DescribeWith is Describe with per-kind overrides of the default messages.
func DescribeWith(err error, fallback string, overrides map[Kind]string) string {
	if err == nil {
		return ""
	}

	var fe FieldErrors
	if errors.As(err, &fe) {
		return "Please fix the validation errors before submitting"
	}

	var ae *APIError
	if !errors.As(err, &ae) {
		return fallback
	}

	if ae.Message != "" {
		if ae.Details != "" && ae.Kind == KindUnprocessable {
			return ae.Message + ": " + ae.Details
		}
		return ae.Message
	}
	if ae.Details != "" {
		return ae.Details
	}
	if msg, ok := overrides[ae.Kind]; ok {
		return msg
	}
	if msg, ok := defaultMessages[ae.Kind]; ok {
		return msg
	}
	return fallback
}

// HTTPStatus is the status the console answers with for err.
func HTTPStatus(err error) int {
	var ae *APIError
	switch {
	case KindOf(err) == KindValidation:
		return http.StatusUnprocessableEntity
	case errors.As(err, &ae) && ae.Kind == KindNetwork:
		return http.StatusBadGateway
	case errors.As(err, &ae) && ae.Status >= 400:
		return ae.Status
	default:
		return http.StatusInternalServerError
	}
}
