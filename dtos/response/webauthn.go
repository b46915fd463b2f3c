package response

import (
	"time"

	"attendance_ms/domain"
)

type VerifiedResponse struct {
	Verified bool `json:"verified"`
}

// Device describes an enrolled credential without exposing key material.
type Device struct {
	DeviceType string     `json:"device_type"`
	BackedUp   bool       `json:"backed_up"`
	Transports []string   `json:"transports"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func NewDevices(creds []domain.Credential) []Device {
	out := make([]Device, 0, len(creds))
	for i := range creds {
		ts := make([]string, 0)
		for _, t := range creds[i].TransportList() {
			ts = append(ts, string(t))
		}
		out = append(out, Device{
			DeviceType: creds[i].DeviceType,
			BackedUp:   creds[i].BackedUp,
			Transports: ts,
			CreatedAt:  creds[i].CreatedAt,
			LastUsedAt: creds[i].LastUsedAt,
		})
	}
	return out
}
