package query_repository

import (
	"attendance_ms/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ICredentialQueryRepository interface {
	ListByUser(db *gorm.DB, userID uuid.UUID) ([]domain.Credential, error)
}

type CredentialQueryRepository struct{}

func NewCredentialQueryRepository() ICredentialQueryRepository {
	return &CredentialQueryRepository{}
}

// ListByUser returns the user's credentials oldest first.
func (c *CredentialQueryRepository) ListByUser(db *gorm.DB, userID uuid.UUID) ([]domain.Credential, error) {
	var creds []domain.Credential
	if err := db.Where("user_id = ?", userID).Order("created_at").Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}
