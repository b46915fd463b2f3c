package flow

import (
	"context"
	"errors"
	"math"
	"time"

	"attendance_ms/client"
	"attendance_ms/domain"
	"attendance_ms/dtos/request"
	"attendance_ms/dtos/response"

	"github.com/jonboulle/clockwork"
)

type CheckInState int

const (
	CheckInLocationPending CheckInState = iota
	CheckInBiometricPending
	CheckInConfirming
	CheckInCommitted
)

func (s CheckInState) String() string {
	switch s {
	case CheckInLocationPending:
		return "location_pending"
	case CheckInBiometricPending:
		return "biometric_pending"
	case CheckInConfirming:
		return "confirming"
	case CheckInCommitted:
		return "committed"
	}
	return "unknown"
}

// Summary is what the confirmation screen shows before commit.
type Summary struct {
	CheckInTime        time.Time
	CheckOutTime       time.Time
	Location           Fix
	VerificationMethod string
	Notes              string
	Worked             time.Duration
}

// WorkedHours rounds Worked to two decimals.
func (s Summary) WorkedHours() float64 {
	return math.Round(s.Worked.Hours()*100) / 100
}

// CheckIn walks one check-in from location capture to commit. Every step is
// an explicit call; a failed step leaves the state where it was.
type CheckIn struct {
	api      AttendanceAPI
	geo      Geolocator
	verifier Verifier
	clock    clockwork.Clock

	LocateTimeout time.Duration

	m        machine[CheckInState]
	fix      Fix
	verified time.Time
	record   *response.AttendanceRecord
}

func NewCheckIn(api AttendanceAPI, geo Geolocator, verifier Verifier, clock clockwork.Clock) *CheckIn {
	return &CheckIn{
		api:           api,
		geo:           geo,
		verifier:      verifier,
		clock:         clock,
		LocateTimeout: DefaultLocateTimeout,
	}
}

func (f *CheckIn) State() CheckInState {
	return f.m.current()
}

func (f *CheckIn) CaptureLocation(ctx context.Context) error {
	if err := f.m.begin(CheckInLocationPending); err != nil {
		return err
	}
	fix, err := locate(ctx, f.geo, f.LocateTimeout)
	if err != nil {
		f.m.end(CheckInLocationPending, nil)
		return err
	}
	if fix.CapturedAt.IsZero() {
		fix.CapturedAt = f.clock.Now()
	}
	f.m.end(CheckInBiometricPending, func() { f.fix = fix })
	return nil
}

func (f *CheckIn) Verify(ctx context.Context) error {
	if err := f.m.begin(CheckInBiometricPending); err != nil {
		return err
	}
	if err := verify(ctx, f.verifier); err != nil {
		f.m.end(CheckInBiometricPending, nil)
		return err
	}
	now := f.clock.Now()
	f.m.end(CheckInConfirming, func() { f.verified = now })
	return nil
}

// Summary is available once identity is verified.
func (f *CheckIn) Summary() (Summary, error) {
	var (
		out Summary
		err error
	)
	f.m.read(func(s CheckInState) {
		if s != CheckInConfirming && s != CheckInCommitted {
			err = fmtInvalid(s)
			return
		}
		out = Summary{
			CheckInTime:        f.verified,
			Location:           f.fix,
			VerificationMethod: domain.VerificationBiometric,
		}
		if f.record != nil {
			out.CheckInTime = f.record.CheckInTime
		}
	})
	return out, err
}

// Confirm inserts the record. The server refuses a second open session with
// client.ErrSessionAlreadyOpen; an expired verification sends the flow back
// to BiometricPending.
func (f *CheckIn) Confirm(ctx context.Context) (*response.AttendanceRecord, error) {
	if err := f.m.begin(CheckInConfirming); err != nil {
		return nil, err
	}
	rec, err := f.api.CheckIn(ctx, request.CheckInRequest{
		Latitude:           f.fix.Latitude,
		Longitude:          f.fix.Longitude,
		Accuracy:           f.fix.Accuracy,
		Address:            f.fix.Address,
		VerificationMethod: domain.VerificationBiometric,
	})
	if err != nil {
		next := CheckInConfirming
		if errors.Is(err, client.ErrIdentityNotVerified) {
			next = CheckInBiometricPending
		}
		f.m.end(next, nil)
		return nil, err
	}
	f.m.end(CheckInCommitted, func() { f.record = rec })
	return rec, nil
}

// Record is the committed record, nil before commit.
func (f *CheckIn) Record() *response.AttendanceRecord {
	var rec *response.AttendanceRecord
	f.m.read(func(CheckInState) { rec = f.record })
	return rec
}
