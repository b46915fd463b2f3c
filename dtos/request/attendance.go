package request

import "github.com/google/uuid"

type CheckInRequest struct {
	Latitude           float64 `json:"latitude" validate:"latitude"`
	Longitude          float64 `json:"longitude" validate:"longitude"`
	Accuracy           float64 `json:"accuracy" validate:"gte=0"`
	Address            string  `json:"address" validate:"max=255"`
	VerificationMethod string  `json:"verificationMethod" validate:"omitempty,oneof=biometric"`
}

type CheckOutRequest struct {
	RecordID  uuid.UUID `json:"recordId" validate:"required"`
	Latitude  float64   `json:"latitude" validate:"latitude"`
	Longitude float64   `json:"longitude" validate:"longitude"`
	Accuracy  float64   `json:"accuracy" validate:"gte=0"`
	Address   string    `json:"address" validate:"max=255"`
	Notes     string    `json:"notes" validate:"max=2000"`
}
