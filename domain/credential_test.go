package domain

import (
	"testing"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredential(t *testing.T) {
	userID := uuid.New()
	src := &webauthn.Credential{
		ID:              []byte("cred"),
		PublicKey:       []byte("cose-key"),
		AttestationType: "none",
		Transport:       []protocol.AuthenticatorTransport{protocol.Internal, protocol.Hybrid},
		Flags:           webauthn.CredentialFlags{BackupEligible: true, BackupState: true},
		Authenticator: webauthn.Authenticator{
			AAGUID:     []byte("aaguid"),
			SignCount:  0,
			Attachment: protocol.Platform,
		},
	}

	c := NewCredential(userID, src)
	assert.Equal(t, userID, c.UserID)
	assert.Equal(t, DeviceTypeMulti, c.DeviceType)
	assert.Equal(t, "internal,hybrid", c.Transports)
	assert.True(t, c.BackedUp)
	assert.Equal(t, "platform", c.Attachment)

	back := c.ToWebAuthn()
	assert.Equal(t, src.ID, back.ID)
	assert.Equal(t, src.PublicKey, back.PublicKey)
	assert.Equal(t, src.Transport, back.Transport)
	assert.True(t, back.Flags.BackupEligible)
	assert.True(t, back.Flags.UserPresent)
}

func TestNewCredential_SingleDevice(t *testing.T) {
	c := NewCredential(uuid.New(), &webauthn.Credential{ID: []byte("x")})
	assert.Equal(t, DeviceTypeSingle, c.DeviceType)
	assert.Empty(t, c.Transports)
	assert.Nil(t, c.TransportList())
}

func TestCredentialByID(t *testing.T) {
	p := &Profile{Credentials: []Credential{
		{ID: 1, CredentialID: []byte("one")},
		{ID: 2, CredentialID: []byte("two")},
	}}

	c, ok := p.CredentialByID([]byte("two"))
	require.True(t, ok)
	assert.Equal(t, uint(2), c.ID)

	_, ok = p.CredentialByID([]byte("three"))
	assert.False(t, ok)
	assert.Len(t, p.WebAuthnCredentials(), 2)
}
