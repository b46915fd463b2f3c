package response

import (
	"time"

	"attendance_ms/domain"

	"github.com/google/uuid"
)

type AttendanceRecord struct {
	ID                 uuid.UUID        `json:"id"`
	CheckInTime        time.Time        `json:"check_in_time"`
	CheckOutTime       *time.Time       `json:"check_out_time"`
	CheckInLocation    domain.Location  `json:"check_in_location"`
	CheckOutLocation   *domain.Location `json:"check_out_location,omitempty"`
	Notes              string           `json:"notes"`
	VerificationMethod string           `json:"verification_method"`
	WorkedSeconds      int64            `json:"worked_seconds"`
	Open               bool             `json:"open"`
}

func NewAttendanceRecord(r *domain.AttendanceRecord, now time.Time) AttendanceRecord {
	out := AttendanceRecord{
		ID:           r.ID,
		CheckInTime:  r.CheckInTime,
		CheckOutTime: r.CheckOutTime,
		CheckInLocation: domain.Location{
			Latitude:  r.LocationLatitude,
			Longitude: r.LocationLongitude,
			Accuracy:  r.LocationAccuracy,
			Address:   r.LocationAddress,
		},
		Notes:              r.Notes,
		VerificationMethod: r.VerificationMethod,
		WorkedSeconds:      int64(r.Worked(now).Seconds()),
		Open:               r.IsOpen(),
	}
	if r.CheckOutLatitude != nil && r.CheckOutLongitude != nil {
		loc := domain.Location{Latitude: *r.CheckOutLatitude, Longitude: *r.CheckOutLongitude}
		if r.CheckOutAccuracy != nil {
			loc.Accuracy = *r.CheckOutAccuracy
		}
		if r.CheckOutAddress != nil {
			loc.Address = *r.CheckOutAddress
		}
		out.CheckOutLocation = &loc
	}
	return out
}

func NewAttendanceRecords(recs []domain.AttendanceRecord, now time.Time) []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(recs))
	for i := range recs {
		out = append(out, NewAttendanceRecord(&recs[i], now))
	}
	return out
}

type Me struct {
	Profile *domain.Profile `json:"profile"`
	State   string          `json:"state"`
	Access  string          `json:"access"`
	Devices []Device        `json:"devices"`
}
