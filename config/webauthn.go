package config

import (
	"errors"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

// InitWebAuthn builds the relying party. The RP ID must equal the hostname the
// client is served from and every origin must match scheme, host and port exactly.
func InitWebAuthn() *webauthn.WebAuthn {
	wa, err := NewWebAuthn(Conf.Application.WebAuthn)
	if err != nil {
		panic(err)
	}
	return wa
}

// NewWebAuthn refuses an empty RP ID or origin list: go-webauthn accepts both,
// and the resulting relying party fails every verification.
func NewWebAuthn(cfg WebAuthn) (*webauthn.WebAuthn, error) {
	if cfg.RpID == "" {
		return nil, errors.New("webauthn: rp-id is required")
	}
	if len(cfg.RpOrigins) == 0 {
		return nil, errors.New("webauthn: at least one rp-origin is required")
	}
	timeout := time.Duration(cfg.CeremonyTimeoutSeconds) * time.Second
	return webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RpDisplayName,
		RPID:          cfg.RpID,
		RPOrigins:     cfg.RpOrigins,
		Timeouts: webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    timeout,
				TimeoutUVD: timeout,
			},
			Registration: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    timeout,
				TimeoutUVD: timeout,
			},
		},
	})
}
