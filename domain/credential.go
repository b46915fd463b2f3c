package domain

import (
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

const (
	DeviceTypeSingle = "singleDevice"
	DeviceTypeMulti  = "multiDevice"
)

// Credential is one enrolled authenticator. PublicKey never changes after
// insert; Counter only moves forward.
type Credential struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CredentialID    []byte     `gorm:"not null;uniqueIndex" json:"credential_id"`
	PublicKey       []byte     `gorm:"not null" json:"-"`
	Counter         uint32     `gorm:"type:bigint;not null;default:0" json:"counter"`
	Transports      string     `gorm:"size:128" json:"transports"`
	DeviceType      string     `gorm:"size:32;not null" json:"device_type"`
	BackedUp        bool       `gorm:"not null;default:false" json:"backed_up"`
	BackupEligible  bool       `gorm:"not null;default:false" json:"backup_eligible"`
	AttestationType string     `gorm:"size:32" json:"attestation_type"`
	AAGUID          []byte     `json:"aaguid"`
	Attachment      string     `gorm:"size:32" json:"attachment"`
	CreatedAt       time.Time  `json:"created_at"`
	LastUsedAt      *time.Time `json:"last_used_at"`
}

func (Credential) TableName() string {
	return "webauthn_credentials"
}

// NewCredential converts a verified registration result into a storable row.
func NewCredential(userID uuid.UUID, c *webauthn.Credential) *Credential {
	deviceType := DeviceTypeSingle
	if c.Flags.BackupEligible {
		deviceType = DeviceTypeMulti
	}
	return &Credential{
		UserID:          userID,
		CredentialID:    c.ID,
		PublicKey:       c.PublicKey,
		Counter:         c.Authenticator.SignCount,
		Transports:      JoinTransports(c.Transport),
		DeviceType:      deviceType,
		BackedUp:        c.Flags.BackupState,
		BackupEligible:  c.Flags.BackupEligible,
		AttestationType: c.AttestationType,
		AAGUID:          c.Authenticator.AAGUID,
		Attachment:      string(c.Authenticator.Attachment),
	}
}

func (c *Credential) TransportList() []protocol.AuthenticatorTransport {
	if c.Transports == "" {
		return nil
	}
	parts := strings.Split(c.Transports, ",")
	out := make([]protocol.AuthenticatorTransport, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, protocol.AuthenticatorTransport(p))
		}
	}
	return out
}

func (c *Credential) ToWebAuthn() webauthn.Credential {
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Transport:       c.TransportList(),
		Flags: webauthn.CredentialFlags{
			UserPresent:    true,
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackedUp,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:     c.AAGUID,
			SignCount:  c.Counter,
			Attachment: protocol.AuthenticatorAttachment(c.Attachment),
		},
	}
}

func (c *Credential) Descriptor() protocol.CredentialDescriptor {
	return protocol.CredentialDescriptor{
		Type:         protocol.PublicKeyCredentialType,
		CredentialID: c.CredentialID,
		Transport:    c.TransportList(),
	}
}

func JoinTransports(ts []protocol.AuthenticatorTransport) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}
