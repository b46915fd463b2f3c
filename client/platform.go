package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/descope/virtualwebauthn"
)

// Platform is the device's credential API: navigator.credentials.create and
// get in a browser. Implementations return ErrUserCancelled when the user
// dismisses the prompt.
type Platform interface {
	Create(ctx context.Context, options json.RawMessage) ([]byte, error)
	Get(ctx context.Context, options json.RawMessage) ([]byte, error)
}

// SoftwareAuthenticator is a Platform backed by an in-process key, for kiosks
// without a platform authenticator and for tests. It holds one credential and
// advances its signature counter on every assertion.
type SoftwareAuthenticator struct {
	mu            sync.Mutex
	rp            virtualwebauthn.RelyingParty
	authenticator virtualwebauthn.Authenticator
	credential    virtualwebauthn.Credential
	registered    bool

	// Decline makes the next prompts fail as if the user dismissed them.
	Decline bool
}

func NewSoftwareAuthenticator(rpID, rpName, origin string) *SoftwareAuthenticator {
	return &SoftwareAuthenticator{
		rp:            virtualwebauthn.RelyingParty{ID: rpID, Name: rpName, Origin: origin},
		authenticator: virtualwebauthn.NewAuthenticator(),
		credential:    virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2),
	}
}

func (a *SoftwareAuthenticator) Create(ctx context.Context, options json.RawMessage) ([]byte, error) {
	if err := a.prompt(ctx); err != nil {
		return nil, err
	}
	parsed, err := virtualwebauthn.ParseAttestationOptions(string(options))
	if err != nil {
		return nil, fmt.Errorf("parse creation options: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	attestation := virtualwebauthn.CreateAttestationResponse(a.rp, a.authenticator, a.credential, *parsed)
	if !a.registered {
		a.authenticator.AddCredential(a.credential)
		a.registered = true
	}
	return []byte(attestation), nil
}

func (a *SoftwareAuthenticator) Get(ctx context.Context, options json.RawMessage) ([]byte, error) {
	if err := a.prompt(ctx); err != nil {
		return nil, err
	}
	parsed, err := virtualwebauthn.ParseAssertionOptions(string(options))
	if err != nil {
		return nil, fmt.Errorf("parse request options: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.credential.Counter++
	return []byte(virtualwebauthn.CreateAssertionResponse(a.rp, a.authenticator, a.credential, *parsed)), nil
}

// CredentialID is the raw id of the held credential.
func (a *SoftwareAuthenticator) CredentialID() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.credential.ID
}

func (a *SoftwareAuthenticator) prompt(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUserCancelled, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Decline {
		return ErrUserCancelled
	}
	return nil
}
