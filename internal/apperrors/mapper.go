package apperrors

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
)

// Endpoint tells the mapper which call a response belongs to; the same
// status code classifies differently on sign-in than on a profile lookup.
type Endpoint int

const (
	EndpointGeneric Endpoint = iota
	EndpointSignIn
	EndpointRegister
	EndpointRefresh
	EndpointUserLookup
)

// authEndpoint reports whether unrecognized server codes should fall back
// to the invalid credentials kind instead of the unknown kind.
func authEndpoint(ep Endpoint) bool {
	switch ep {
	case EndpointSignIn, EndpointRegister, EndpointRefresh:
		return true
	default:
		return false
	}
}

// serverCodes maps server declared error codes onto taxonomy leaves.
// An exact string match here beats any status code default.
var serverCodes = map[string]Kind{
	"INVALID_CREDENTIALS":  KindInvalidCredentials,
	"USER_NOT_FOUND":       KindUserNotFound,
	"EMAIL_ALREADY_EXISTS": KindEmailAlreadyExists,
	"WEAK_PASSWORD":        KindWeakPassword,
	"TOKEN_EXPIRED":        KindTokenExpired,
	"UNAUTHORIZED":         KindUnauthorized,
	"VALIDATION_ERROR":     KindValidation,
	"NOT_FOUND":            KindNotFound,
	"FEATURE_UNAVAILABLE":  KindFeatureUnavailable,
}

// FromTransport classifies a failure where no HTTP response was received.
// Timeouts (deadline exceeded, net timeouts) get their own kind; anything
// else is a connection failure.
func FromTransport(err error) *Error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded):
		return Wrap(KindTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return Wrap(KindTimeout, err)
	default:
		return Wrap(KindConnection, err)
	}
}

// FromResponse classifies an HTTP response with a non success outcome.
// A recognized server declared code wins over the status code default; an
// unrecognized code falls back to invalid credentials on auth endpoints and
// to the unknown kind elsewhere. The server supplied message is kept only
// when the result is the unknown kind, where the default says nothing useful.
//
// Pure: same input, same leaf, no side effects.
func FromResponse(ep Endpoint, status int, code string, message string) *Error {
	if code != "" {
		if kind, ok := serverCodes[code]; ok {
			return New(kind)
		}
		if authEndpoint(ep) {
			return New(KindInvalidCredentials)
		}
		e := New(KindUnknown)
		if message != "" {
			e.Message = message
		}
		return e
	}

	switch {
	case status >= 200 && status < 300:
		// Business failure inside a success status, no code to go on.
		if authEndpoint(ep) {
			return New(KindInvalidCredentials)
		}
		e := New(KindUnknown)
		if message != "" {
			e.Message = message
		}
		return e
	case status == http.StatusUnauthorized:
		if ep == EndpointSignIn {
			return New(KindInvalidCredentials)
		}
		return New(KindUnauthorized)
	case status == http.StatusNotFound:
		if ep == EndpointUserLookup {
			return New(KindUserNotFound)
		}
		return New(KindNotFound)
	case status == http.StatusConflict:
		return New(KindEmailAlreadyExists)
	case status == http.StatusBadRequest:
		if ep == EndpointRegister {
			return New(KindWeakPassword)
		}
		return Validation("", "")
	case status >= 500:
		return ServerError(status)
	default:
		return ClientError(status)
	}
}
