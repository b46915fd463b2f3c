package query_repository

import (
	"time"

	"attendance_ms/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IAttendanceQueryRepository interface {
	FindOpenForDay(db *gorm.DB, userID uuid.UUID, day time.Time) (*domain.AttendanceRecord, error)
	ListForDay(db *gorm.DB, userID uuid.UUID, day time.Time) ([]domain.AttendanceRecord, error)
	ListBetween(db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]domain.AttendanceRecord, error)
}

type AttendanceQueryRepository struct{}

func NewAttendanceQueryRepository() IAttendanceQueryRepository {
	return &AttendanceQueryRepository{}
}

// FindOpenForDay returns gorm.ErrRecordNotFound when the user has no open
// session on day.
func (a *AttendanceQueryRepository) FindOpenForDay(db *gorm.DB, userID uuid.UUID, day time.Time) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	err := db.Where("user_id = ? AND check_in_date = ? AND check_out_time IS NULL", userID, day).
		Order("check_in_time desc").
		Take(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *AttendanceQueryRepository) ListForDay(db *gorm.DB, userID uuid.UUID, day time.Time) ([]domain.AttendanceRecord, error) {
	var recs []domain.AttendanceRecord
	err := db.Where("user_id = ? AND check_in_date = ?", userID, day).
		Order("check_in_time desc").
		Find(&recs).Error
	return recs, err
}

// ListBetween is inclusive on both days.
func (a *AttendanceQueryRepository) ListBetween(db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	var recs []domain.AttendanceRecord
	err := db.Where("user_id = ? AND check_in_date BETWEEN ? AND ?", userID, from, to).
		Order("check_in_time desc").
		Find(&recs).Error
	return recs, err
}
