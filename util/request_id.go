package util

import "github.com/hashicorp/go-uuid"

// NewRequestID returns a random id for correlating logs and events. It never
// fails; on entropy errors it returns an empty string.
func NewRequestID() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return ""
	}
	return id
}
