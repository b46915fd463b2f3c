package services

import (
	"errors"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
)

var (
	ErrUnauthenticated           = errors.New("unauthenticated")
	ErrStoreUnavailable          = errors.New("store unavailable")
	ErrNoCredentialsEnrolled     = errors.New("no webauthn credentials registered for this user")
	ErrChallengeExpiredOrMissing = errors.New("challenge expired or missing")
	ErrVerificationFailed        = errors.New("verification failed")
	ErrCredentialNotFound        = errors.New("credential not found")
	ErrCounterRegressed          = errors.New("signature counter regressed")
	ErrSessionAlreadyOpen        = errors.New("an attendance session is already open for today")
	ErrNoActiveSession           = errors.New("no active attendance session for today")
	ErrOutsideWorkLocation       = errors.New("location is outside every work location")
	ErrIdentityNotVerified       = errors.New("biometric verification required")
	ErrInvalidLocation           = errors.New("invalid location")
	ErrInvalidRange              = errors.New("invalid date range")
)

// CeremonyError carries the specific reason a ceremony failed. The reason is
// for logs only; callers see the wrapped sentinel.
type CeremonyError struct {
	Op     string
	Reason string
	Err    error
}

func (e *CeremonyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Reason)
}

func (e *CeremonyError) Unwrap() error {
	return e.Err
}

func ceremonyError(op string, sentinel error, reason string) error {
	return &CeremonyError{Op: op, Reason: reason, Err: sentinel}
}

// IsProtocolError reports failures that must be shown to users only as a
// generic authentication failure.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrChallengeExpiredOrMissing) ||
		errors.Is(err, ErrVerificationFailed) ||
		errors.Is(err, ErrCredentialNotFound) ||
		errors.Is(err, ErrCounterRegressed)
}

// Reason extracts the log-only detail from err.
func Reason(err error) string {
	var ce *CeremonyError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}

func storeUnavailable(what string, err error) error {
	return fmt.Errorf("%s: %w: %v", what, ErrStoreUnavailable, err)
}

// webauthnReason flattens a go-webauthn error into a single log line.
func webauthnReason(err error) string {
	var perr *protocol.Error
	if errors.As(err, &perr) {
		if perr.DevInfo != "" {
			return perr.Details + ": " + perr.DevInfo
		}
		return perr.Details
	}
	return err.Error()
}
