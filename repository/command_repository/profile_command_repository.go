package command_repository

import (
	"attendance_ms/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IProfileCommandRepository interface {
	MarkBiometricEnrolled(db *gorm.DB, userID uuid.UUID) error
}

type ProfileCommandRepository struct{}

func NewProfileCommandRepository() IProfileCommandRepository {
	return &ProfileCommandRepository{}
}

func (p *ProfileCommandRepository) MarkBiometricEnrolled(db *gorm.DB, userID uuid.UUID) error {
	res := db.Model(&domain.Profile{}).
		Where("id = ?", userID).
		Update("biometric_enrolled", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
