package client

import (
	"errors"
	"fmt"

	"attendance_ms/dtos/response"
)

var (
	ErrUnauthenticated       = errors.New("not signed in")
	ErrUserPending           = errors.New("account awaiting approval")
	ErrUserSuspended         = errors.New("account suspended")
	ErrForbidden             = errors.New("forbidden")
	ErrNoCredentialsEnrolled = errors.New("no credentials enrolled")
	ErrAuthenticationFailed  = errors.New("authentication failed")
	ErrSessionAlreadyOpen    = errors.New("session already open")
	ErrNoActiveSession       = errors.New("no active session")
	ErrOutsideWorkLocation   = errors.New("outside work location")
	ErrIdentityNotVerified   = errors.New("identity not verified")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrRateLimited           = errors.New("rate limited")
	ErrServiceUnavailable    = errors.New("service unavailable")
	ErrServer                = errors.New("server error")
	ErrMalformedResponse     = errors.New("malformed server response")
	ErrNetwork               = errors.New("network failure")
	ErrUserCancelled         = errors.New("user cancelled")
	ErrBusy                  = errors.New("another ceremony is in progress")
)

// codeErrors maps every server error code onto a client error. The four
// protocol codes collapse into ErrAuthenticationFailed.
var codeErrors = map[string]error{
	response.CodeUnauthenticated:           ErrUnauthenticated,
	response.CodeUserPending:               ErrUserPending,
	response.CodeUserSuspended:             ErrUserSuspended,
	response.CodeForbidden:                 ErrForbidden,
	response.CodeNoCredentialsEnrolled:     ErrNoCredentialsEnrolled,
	response.CodeChallengeExpiredOrMissing: ErrAuthenticationFailed,
	response.CodeVerificationFailed:        ErrAuthenticationFailed,
	response.CodeCredentialNotFound:        ErrAuthenticationFailed,
	response.CodeCounterRegressed:          ErrAuthenticationFailed,
	response.CodeSessionAlreadyOpen:        ErrSessionAlreadyOpen,
	response.CodeNoActiveSession:           ErrNoActiveSession,
	response.CodeOutsideWorkLocation:       ErrOutsideWorkLocation,
	response.CodeIdentityNotVerified:       ErrIdentityNotVerified,
	response.CodeInvalidRequest:            ErrInvalidRequest,
	response.CodeRateLimited:               ErrRateLimited,
	response.CodeStoreUnavailable:          ErrServiceUnavailable,
	response.CodeInternal:                  ErrServer,
}

// APIError is a non-2xx answer from the attendance service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("attendance api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("attendance api: status %d: %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if err, ok := codeErrors[e.Code]; ok {
		return err
	}
	if e.Status >= 500 {
		return ErrServer
	}
	return nil
}

// Message turns an error from this package into text for the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserCancelled):
		return "Biometric prompt was dismissed."
	case errors.Is(err, ErrBusy):
		return "Please wait for the current request to finish."
	case errors.Is(err, ErrAuthenticationFailed):
		return "Authentication failed. Please try again."
	case errors.Is(err, ErrNoCredentialsEnrolled):
		return "No biometric credentials registered. Please register first."
	case errors.Is(err, ErrSessionAlreadyOpen):
		return "You are already checked in. Please check out first."
	case errors.Is(err, ErrNoActiveSession):
		return "No active check-in found for today."
	case errors.Is(err, ErrOutsideWorkLocation):
		return "You are not at a registered work location."
	case errors.Is(err, ErrIdentityNotVerified):
		return "Please verify your identity again."
	case errors.Is(err, ErrUnauthenticated):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrUserPending):
		return "Your account is awaiting approval."
	case errors.Is(err, ErrUserSuspended):
		return "Your account has been suspended."
	case errors.Is(err, ErrRateLimited):
		return "Too many attempts. Please wait a moment."
	case errors.Is(err, ErrNetwork), errors.Is(err, ErrServiceUnavailable):
		return "Could not reach the server. Please retry."
	default:
		return "Something went wrong. Please reload and try again."
	}
}
