package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationDenied = errors.New("authentication denied: check credentials, the password expires periodically")
	ErrLoginFailed          = errors.New("login failed")
	ErrProtocol             = errors.New("unexpected portal markup")
	ErrRedirectLimit        = errors.New("login redirect limit exceeded")
	ErrAPIVersionNotFound   = errors.New("no working api version found")
	ErrUnexpectedStatus     = errors.New("unexpected response status")
	ErrMalformedResponse    = errors.New("malformed response")
	ErrAdapter              = errors.New("source adapter failed")
	ErrRefreshInProgress    = errors.New("refresh already in progress")
	ErrNotRefreshed         = errors.New("no successful refresh yet")
	ErrCredentialNotFound   = errors.New("credential not found")
	ErrChildNotFound        = errors.New("child not found")
	ErrInvalidRequest       = errors.New("invalid request")
)

// LoginError carries the context needed to diagnose a failed login chain.
// It matches ErrLoginFailed as well as its cause.
type LoginError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed at %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

func (e *LoginError) Is(target error) bool { return target == ErrLoginFailed }

type AdapterError struct {
	Widget WidgetID
	Week   Week
	Err    error
}

func (e *AdapterError) Error() string {
	if e.Week == (Week{}) {
		return fmt.Sprintf("widget %s: %v", e.Widget, e.Err)
	}
	return fmt.Sprintf("widget %s week %s: %v", e.Widget, e.Week, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

func (e *AdapterError) Is(target error) bool { return target == ErrAdapter }
