package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	VerificationBiometric = "biometric"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Address   string  `json:"address"`
}

// AttendanceRecord is created at check-in and closed once at check-out. A
// record with a nil CheckOutTime is an open session; CheckInDate is the
// calendar day of CheckInTime in the attendance timezone.
type AttendanceRecord struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CheckInTime        time.Time  `gorm:"not null" json:"check_in_time"`
	CheckInDate        time.Time  `gorm:"type:date;not null" json:"check_in_date"`
	CheckOutTime       *time.Time `json:"check_out_time"`
	LocationLatitude   float64    `json:"location_latitude"`
	LocationLongitude  float64    `json:"location_longitude"`
	LocationAddress    string     `json:"location_address"`
	LocationAccuracy   float64    `json:"location_accuracy"`
	CheckOutLatitude   *float64   `json:"check_out_latitude"`
	CheckOutLongitude  *float64   `json:"check_out_longitude"`
	CheckOutAddress    *string    `json:"check_out_address"`
	CheckOutAccuracy   *float64   `json:"check_out_accuracy"`
	Notes              string     `json:"notes"`
	VerificationMethod string     `gorm:"size:32" json:"verification_method"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

func (r *AttendanceRecord) IsOpen() bool {
	return r.CheckOutTime == nil
}

// Worked returns the session length, measured up to now while still open.
func (r *AttendanceRecord) Worked(now time.Time) time.Duration {
	end := now
	if r.CheckOutTime != nil {
		end = *r.CheckOutTime
	}
	if end.Before(r.CheckInTime) {
		return 0
	}
	return end.Sub(r.CheckInTime)
}

// Day truncates t to its calendar day in loc, expressed as midnight UTC so it
// round-trips through a DATE column unchanged.
func Day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
