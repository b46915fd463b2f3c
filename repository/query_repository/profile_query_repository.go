package query_repository

import (
	"attendance_ms/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IProfileQueryRepository interface {
	GetByID(db *gorm.DB, id uuid.UUID) (*domain.Profile, error)
	GetWithCredentials(db *gorm.DB, id uuid.UUID) (*domain.Profile, error)
}

type ProfileQueryRepository struct{}

func NewProfileQueryRepository() IProfileQueryRepository {
	return &ProfileQueryRepository{}
}

func (p *ProfileQueryRepository) GetByID(db *gorm.DB, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	if err := db.Where("id = ?", id).Take(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfileQueryRepository) GetWithCredentials(db *gorm.DB, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.Preload("Credentials", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at")
	}).Where("id = ?", id).Take(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
