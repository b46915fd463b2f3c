package domain

import (
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusSuspended Status = "suspended"
)

// Profile mirrors the identity record owned by the identity service. This
// service only reads it and flips BiometricEnrolled.
type Profile struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string       `gorm:"size:255;not null" json:"email"`
	FullName          string       `gorm:"size:255" json:"full_name"`
	EmployeeID        string       `gorm:"size:64" json:"employee_id"`
	Department        string       `gorm:"size:128" json:"department"`
	Role              Role         `gorm:"size:16;not null;default:employee" json:"role"`
	Status            Status       `gorm:"size:16;not null;default:pending" json:"status"`
	BiometricEnrolled bool         `gorm:"not null;default:false" json:"biometric_enrolled"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	Credentials       []Credential `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) WebAuthnID() []byte {
	return []byte(p.ID.String())
}

func (p *Profile) WebAuthnName() string {
	return p.Email
}

func (p *Profile) WebAuthnDisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

func (p *Profile) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(p.Credentials))
	for i := range p.Credentials {
		creds = append(creds, p.Credentials[i].ToWebAuthn())
	}
	return creds
}

// CredentialByID returns the profile's credential with the given raw id.
func (p *Profile) CredentialByID(id []byte) (*Credential, bool) {
	for i := range p.Credentials {
		if string(p.Credentials[i].CredentialID) == string(id) {
			return &p.Credentials[i], true
		}
	}
	return nil, false
}
