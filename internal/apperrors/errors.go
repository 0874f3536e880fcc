// Package apperrors defines the closed error taxonomy every feature of the
// client consumes. Nothing past the gateway boundary is allowed to surface
// a bare string or an unclassified error: it is always an *Error with a
// machine stable Kind and a ready to display message.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies exactly one leaf of the taxonomy.
// The set is closed: adding a kind means updating the message table and
// every exhaustive switch over it.
type Kind string

const (
	// Network failures.
	KindConnection Kind = "network.connection"
	KindTimeout    Kind = "network.timeout"
	KindServer     Kind = "network.server"
	KindClient     Kind = "network.client"

	// Auth failures.
	KindInvalidCredentials Kind = "auth.invalid_credentials"
	KindUserNotFound       Kind = "auth.user_not_found"
	KindEmailAlreadyExists Kind = "auth.email_already_exists"
	KindWeakPassword       Kind = "auth.weak_password"
	KindTokenExpired       Kind = "auth.token_expired"
	KindUnauthorized       Kind = "auth.unauthorized"

	// Data failures.
	KindParse      Kind = "data.parse"
	KindNotFound   Kind = "data.not_found"
	KindValidation Kind = "data.validation"

	// Location failures.
	KindLocationPermission  Kind = "location.permission_denied"
	KindLocationUnavailable Kind = "location.unavailable"
	KindGeocoding           Kind = "location.geocoding"

	// Everything else.
	KindUnknown            Kind = "general.unknown"
	KindFeatureUnavailable Kind = "general.feature_unavailable"
)

// messages holds the default user facing message per leaf.
// UI renders these verbatim; it never sees a status code or a stack trace.
var messages = map[Kind]string{
	KindConnection: "Unable to connect. Please check your internet connection.",
	KindTimeout:    "The request timed out. Please try again.",
	KindServer:     "Something went wrong on our side. Please try again later.",
	KindClient:     "The request could not be completed. Please try again.",

	KindInvalidCredentials: "Invalid email or password. Please try again.",
	KindUserNotFound:       "We couldn't find an account with that email.",
	KindEmailAlreadyExists: "An account with this email already exists.",
	KindWeakPassword:       "Password is too weak. Use at least 8 characters.",
	KindTokenExpired:       "Your session has expired. Please sign in again.",
	KindUnauthorized:       "You need to sign in to continue.",

	KindParse:      "We couldn't read the server response. Please try again.",
	KindNotFound:   "The requested item could not be found.",
	KindValidation: "Some fields are invalid. Please check and try again.",

	KindLocationPermission:  "Location permission is required for this feature.",
	KindLocationUnavailable: "Your location is currently unavailable.",
	KindGeocoding:           "We couldn't resolve that address.",

	KindUnknown:            "Something went wrong. Please try again.",
	KindFeatureUnavailable: "This feature is not available right now.",
}

// Error is the single error type crossing component boundaries.
type Error struct {
	Kind Kind

	// Message is user friendly and safe to display as is.
	Message string

	// Status is the HTTP status code for server/client kinds, zero otherwise.
	Status int

	// Field names the offending field for validation kind, empty otherwise.
	Field string

	// Err is the wrapped cause, may be nil.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Kind, so
// errors.Is(err, apperrors.New(apperrors.KindTimeout)) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New returns an error of the given kind with its default message.
func New(kind Kind) *Error {
	return &Error{Kind: kind, Message: messages[kind]}
}

// Wrap attaches a cause to an error of the given kind.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: messages[kind], Err: err}
}

// ServerError returns the server kind carrying the status code.
func ServerError(status int) *Error {
	e := New(KindServer)
	e.Status = status
	return e
}

// ClientError returns the client kind carrying the status code.
func ClientError(status int) *Error {
	e := New(KindClient)
	e.Status = status
	return e
}

// Validation returns the validation kind naming the offending field.
// An empty field is fine when nothing more specific is known.
func Validation(field string, message string) *Error {
	e := New(KindValidation)
	e.Field = field
	if message != "" {
		e.Message = message
	}
	return e
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns a message safe to display for any error.
// Non taxonomy errors collapse to the unknown kind default.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return messages[KindUnknown]
}
