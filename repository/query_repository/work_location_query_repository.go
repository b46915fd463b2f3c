package query_repository

import (
	"attendance_ms/domain"

	"gorm.io/gorm"
)

type IWorkLocationQueryRepository interface {
	ListAll(db *gorm.DB) ([]domain.WorkLocation, error)
}

type WorkLocationQueryRepository struct{}

func NewWorkLocationQueryRepository() IWorkLocationQueryRepository {
	return &WorkLocationQueryRepository{}
}

func (w *WorkLocationQueryRepository) ListAll(db *gorm.DB) ([]domain.WorkLocation, error) {
	var sites []domain.WorkLocation
	err := db.Order("name").Find(&sites).Error
	return sites, err
}
