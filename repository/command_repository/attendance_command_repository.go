package command_repository

import (
	"time"

	"attendance_ms/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IAttendanceCommandRepository interface {
	InsertIfNoOpenSession(db *gorm.DB, rec *domain.AttendanceRecord) (bool, error)
	CloseOpenSession(db *gorm.DB, id, userID uuid.UUID, checkOut time.Time, loc domain.Location, notes string) (*domain.AttendanceRecord, error)
}

type AttendanceCommandRepository struct{}

func NewAttendanceCommandRepository() IAttendanceCommandRepository {
	return &AttendanceCommandRepository{}
}

// InsertIfNoOpenSession relies on the partial unique index over
// (user_id, check_in_date) WHERE check_out_time IS NULL. It reports false when
// the user already has an open session on the record's day.
func (a *AttendanceCommandRepository) InsertIfNoOpenSession(db *gorm.DB, rec *domain.AttendanceRecord) (bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CloseOpenSession closes exactly the record id if it belongs to userID and is
// still open. It returns gorm.ErrRecordNotFound otherwise.
func (a *AttendanceCommandRepository) CloseOpenSession(db *gorm.DB, id, userID uuid.UUID, checkOut time.Time, loc domain.Location, notes string) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	res := db.Model(&rec).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ? AND check_out_time IS NULL AND check_in_time <= ?", id, userID, checkOut).
		Updates(map[string]interface{}{
			"check_out_time":      checkOut,
			"check_out_latitude":  loc.Latitude,
			"check_out_longitude": loc.Longitude,
			"check_out_accuracy":  loc.Accuracy,
			"check_out_address":   loc.Address,
			"notes":               notes,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}
