package flow

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"attendance_ms/client"
	"attendance_ms/domain"
	"attendance_ms/dtos/request"
	"attendance_ms/dtos/response"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const maxNotesLength = 2000

type CheckOutState int

const (
	CheckOutLookupOpenSession CheckOutState = iota
	CheckOutLocationPending
	CheckOutWorkSummary
	CheckOutBiometricPending
	CheckOutConfirming
	CheckOutCommitted
	CheckOutFailed
)

func (s CheckOutState) String() string {
	switch s {
	case CheckOutLookupOpenSession:
		return "lookup_open_session"
	case CheckOutLocationPending:
		return "location_pending"
	case CheckOutWorkSummary:
		return "work_summary"
	case CheckOutBiometricPending:
		return "biometric_pending"
	case CheckOutConfirming:
		return "confirming"
	case CheckOutCommitted:
		return "committed"
	case CheckOutFailed:
		return "failed"
	}
	return "unknown"
}

// CheckOut closes the session found at lookup. The record id captured there is
// the only record it will ever update.
type CheckOut struct {
	api      AttendanceAPI
	geo      Geolocator
	verifier Verifier
	clock    clockwork.Clock

	LocateTimeout time.Duration

	m      machine[CheckOutState]
	open   *response.AttendanceRecord
	fix    Fix
	notes  string
	record *response.AttendanceRecord
	err    error
}

func NewCheckOut(api AttendanceAPI, geo Geolocator, verifier Verifier, clock clockwork.Clock) *CheckOut {
	return &CheckOut{
		api:           api,
		geo:           geo,
		verifier:      verifier,
		clock:         clock,
		LocateTimeout: DefaultLocateTimeout,
	}
}

func (f *CheckOut) State() CheckOutState {
	return f.m.current()
}

// Err is the error that moved the flow to Failed.
func (f *CheckOut) Err() error {
	var err error
	f.m.read(func(CheckOutState) { err = f.err })
	return err
}

// Lookup finds today's open session. Without one the flow fails for good and
// neither location nor biometric capture is attempted.
func (f *CheckOut) Lookup(ctx context.Context) error {
	if err := f.m.begin(CheckOutLookupOpenSession); err != nil {
		return err
	}
	rec, err := f.api.OpenSession(ctx)
	switch {
	case errors.Is(err, client.ErrNoActiveSession):
		f.m.end(CheckOutFailed, func() { f.err = err })
		return err
	case err != nil:
		f.m.end(CheckOutLookupOpenSession, nil)
		return err
	case rec == nil || rec.ID == uuid.Nil || !rec.Open:
		err = fmt.Errorf("%w: open session without id", client.ErrMalformedResponse)
		f.m.end(CheckOutLookupOpenSession, nil)
		return err
	}
	f.m.end(CheckOutLocationPending, func() { f.open = rec })
	return nil
}

func (f *CheckOut) CaptureLocation(ctx context.Context) error {
	if err := f.m.begin(CheckOutLocationPending); err != nil {
		return err
	}
	fix, err := locate(ctx, f.geo, f.LocateTimeout)
	if err != nil {
		f.m.end(CheckOutLocationPending, nil)
		return err
	}
	if fix.CapturedAt.IsZero() {
		fix.CapturedAt = f.clock.Now()
	}
	f.m.end(CheckOutWorkSummary, func() { f.fix = fix })
	return nil
}

// SubmitNotes records the work summary and moves on to identity verification.
func (f *CheckOut) SubmitNotes(notes string) error {
	if err := f.m.begin(CheckOutWorkSummary); err != nil {
		return err
	}
	if utf8.RuneCountInString(notes) > maxNotesLength {
		f.m.end(CheckOutWorkSummary, nil)
		return fmt.Errorf("%w: notes longer than %d characters", client.ErrInvalidRequest, maxNotesLength)
	}
	f.m.end(CheckOutBiometricPending, func() { f.notes = notes })
	return nil
}

func (f *CheckOut) Verify(ctx context.Context) error {
	if err := f.m.begin(CheckOutBiometricPending); err != nil {
		return err
	}
	if err := verify(ctx, f.verifier); err != nil {
		f.m.end(CheckOutBiometricPending, nil)
		return err
	}
	f.m.end(CheckOutConfirming, nil)
	return nil
}

// Summary is available from the work summary step on. Worked runs to now
// until the record is committed.
func (f *CheckOut) Summary() (Summary, error) {
	var (
		out Summary
		err error
	)
	now := f.clock.Now()
	f.m.read(func(s CheckOutState) {
		switch s {
		case CheckOutWorkSummary, CheckOutBiometricPending, CheckOutConfirming, CheckOutCommitted:
		default:
			err = fmtInvalid(s)
			return
		}
		out = Summary{
			CheckInTime:        f.open.CheckInTime,
			CheckOutTime:       now,
			Location:           f.fix,
			VerificationMethod: domain.VerificationBiometric,
			Notes:              f.notes,
			Worked:             now.Sub(f.open.CheckInTime),
		}
		if f.record != nil && f.record.CheckOutTime != nil {
			out.CheckOutTime = *f.record.CheckOutTime
			out.Worked = time.Duration(f.record.WorkedSeconds) * time.Second
		}
	})
	return out, err
}

// Confirm closes the record captured at lookup. If the server no longer sees
// it open the flow fails; an expired verification returns to BiometricPending.
func (f *CheckOut) Confirm(ctx context.Context) (*response.AttendanceRecord, error) {
	if err := f.m.begin(CheckOutConfirming); err != nil {
		return nil, err
	}
	rec, err := f.api.CheckOut(ctx, request.CheckOutRequest{
		RecordID:  f.open.ID,
		Latitude:  f.fix.Latitude,
		Longitude: f.fix.Longitude,
		Accuracy:  f.fix.Accuracy,
		Address:   f.fix.Address,
		Notes:     f.notes,
	})
	switch {
	case errors.Is(err, client.ErrNoActiveSession):
		f.m.end(CheckOutFailed, func() { f.err = err })
		return nil, err
	case errors.Is(err, client.ErrIdentityNotVerified):
		f.m.end(CheckOutBiometricPending, nil)
		return nil, err
	case err != nil:
		f.m.end(CheckOutConfirming, nil)
		return nil, err
	}
	f.m.end(CheckOutCommitted, func() { f.record = rec })
	return rec, nil
}

func (f *CheckOut) Record() *response.AttendanceRecord {
	var rec *response.AttendanceRecord
	f.m.read(func(CheckOutState) { rec = f.record })
	return rec
}
