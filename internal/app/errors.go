package app

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnreachable        = errors.New("extranet unreachable")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrSessionExpired     = errors.New("session expired")

	// ErrNoSession means Fetch was called before logging in
	ErrNoSession       = errors.New("no session, login first")
	ErrNoAccounts      = errors.New("no customer numbers configured")
	ErrMissingPassword = errors.New("no password configured, run login")
)

// AuthError is returned by Authenticator.Login
type AuthError struct {
	Reason error // one of ErrInvalidCredentials, ErrUnreachable, ErrUnexpectedResponse
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("login failed: %v", e.Reason)
	}
	return fmt.Sprintf("login failed: %v: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// FetchError is returned by ScheduleClient
type FetchError struct {
	Reason error // one of ErrSessionExpired, ErrUnreachable, ErrUnexpectedResponse
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch failed: %v", e.Reason)
	}
	return fmt.Sprintf("fetch failed: %v: %v", e.Reason, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

func authError(reason error, format string, args ...any) *AuthError {
	return &AuthError{Reason: reason, Err: fmt.Errorf(format, args...)}
}

func fetchError(reason error, format string, args ...any) *FetchError {
	return &FetchError{Reason: reason, Err: fmt.Errorf(format, args...)}
}
