// Package apierr defines the closed error taxonomy shared by every layer of
// the API. All failures that cross a component boundary are expressed as an
// *Error carrying a Kind, a stable machine-readable code, and a human-readable
// message. The taxonomy is flat and closed: there are exactly five kinds and
// the kind (together with the code, for authentication) fully determines the
// HTTP status written at the response boundary.
//
// Components never hand ad-hoc error strings to the transport layer. Anything
// unanticipated (a driver fault, a library panic surfaced as an error) is
// wrapped with Internal before it escapes.
//
// Example wire shape, identical for every failure:
//
//	{
//	  "error": {
//	    "type": "not_found",
//	    "code": "resource_not_found",
//	    "message": "Ride with ID 42 not found"
//	  }
//	}
package apierr

import (
	"fmt"
	"net/http"
)

// Kind is the closed classification of an API failure.
type Kind string

// The complete set of error kinds. No dynamic extension: handlers and the
// response writer switch exhaustively over these values.
const (
	KindValidation     Kind = "validation_error"
	KindAuthentication Kind = "authentication_error"
	KindAuthorization  Kind = "authorization_error"
	KindNotFound       Kind = "not_found"
	KindInternal       Kind = "internal_error"
)

// Stable machine-readable codes. Authentication carries caller-supplied codes
// (see the auth package); the remaining kinds each have a single default.
const (
	CodeValidationFailed = "validation_failed"
	CodeAccessDenied     = "access_denied"
	CodeNotFound         = "resource_not_found"
	CodeInternal         = "internal_error"

	// Authentication sub-reasons produced by the token verification state
	// machine and the credential endpoints.
	CodeMissingAuthHeader  = "missing_auth_header"
	CodeInvalidTokenFormat = "invalid_token_format"
	CodeTokenExpired       = "token_expired"
	CodeInvalidToken       = "invalid_token"
	CodeMalformedToken     = "malformed_token"
	CodeServiceUnavailable = "service_unavailable"
	CodeInvalidCredentials = "invalid_credentials"
)

// Error is the single failure value exchanged between pipeline stages.
// Exactly one Error is attached to any failed request.
type Error struct {
	Kind    Kind   `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface. The format is
// "<kind>/<code>: <message>", which keeps log lines grep-able.
func (e *Error) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Kind, e.Code, e.Message)
}

// Status maps the error onto its HTTP status code. The mapping is a fixed
// function of Kind, except for authentication where the code distinguishes
// an absent/garbled credential (401) from a credential that was presented and
// rejected (403), and an unconfigured verification key (503).
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		switch e.Code {
		case CodeTokenExpired, CodeInvalidToken, CodeMalformedToken:
			return http.StatusForbidden
		case CodeServiceUnavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusUnauthorized
		}
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the wire-visible body for a failed request.
type Envelope struct {
	Error *Error `json:"error"`
}

// Wrap returns the envelope for e, ready for JSON serialization.
func (e *Error) Wrap() Envelope { return Envelope{Error: e} }

// Validation constructs a validation failure (400). The message should
// enumerate every violated field so clients can fix all of them at once.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Message: message}
}

// Authentication constructs an authentication failure with a caller-supplied
// sub-reason code. The code decides between 401, 403 and 503.
func Authentication(code, message string) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: message}
}

// Authorization constructs an access-denied failure (403).
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Code: CodeAccessDenied, Message: message}
}

// NotFound constructs a missing-resource failure (404) for the named resource.
func NotFound(resource string, id any) *Error {
	msg := fmt.Sprintf("%s not found", resource)
	if id != nil {
		msg = fmt.Sprintf("%s with ID %v not found", resource, id)
	}
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

// Internal constructs the catch-all failure (500). Pass an empty message to
// use the generic one; detailed messages are for logs, not responses.
func Internal(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message}
}

// From coerces any error into a taxonomy value. Errors that already carry a
// kind pass through unchanged; everything else becomes Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return ae
	}
	return Internal("")
}
