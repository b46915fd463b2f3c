package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"attendance_ms/client"
	"attendance_ms/dtos/request"
	"attendance_ms/dtos/response"

	"github.com/google/uuid"
)

var office = Fix{Latitude: 34.05, Longitude: -118.24, Accuracy: 12, Address: "Downtown HQ"}

type fakeGeo struct {
	mu       sync.Mutex
	fixes    []Fix
	errs     []error
	calls    int
	opts     []LocateOptions
	deadline time.Duration
	block    bool
}

func (g *fakeGeo) Locate(ctx context.Context, opts LocateOptions) (Fix, error) {
	g.mu.Lock()
	i := g.calls
	g.calls++
	g.opts = append(g.opts, opts)
	if d, ok := ctx.Deadline(); ok {
		g.deadline = time.Until(d)
	}
	block := g.block
	g.mu.Unlock()

	if block {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	}
	if i < len(g.errs) && g.errs[i] != nil {
		return Fix{}, g.errs[i]
	}
	if len(g.fixes) == 0 {
		return office, nil
	}
	return g.fixes[min(i, len(g.fixes)-1)], nil
}

type fakeVerifier struct {
	results []client.Result
	calls   int
}

func (v *fakeVerifier) Authenticate(context.Context) client.Result {
	i := v.calls
	v.calls++
	if i < len(v.results) {
		return v.results[i]
	}
	return client.Result{State: client.Success}
}

func failed(err error) client.Result {
	return client.Result{State: client.Failed, Err: err, Message: client.Message(err)}
}

// fakeAPI keeps at most one open record, like the server's partial index.
type fakeAPI struct {
	mu        sync.Mutex
	open      *response.AttendanceRecord
	closed    []response.AttendanceRecord
	now       func() time.Time
	checkIns  []request.CheckInRequest
	checkOuts []request.CheckOutRequest
	lookups   int

	checkInErr  error
	checkOutErr error
	lookupErr   error
}

func (a *fakeAPI) OpenSession(context.Context) (*response.AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lookups++
	if a.lookupErr != nil {
		return nil, a.lookupErr
	}
	if a.open == nil {
		return nil, &client.APIError{Status: 404, Code: "NoActiveSession"}
	}
	rec := *a.open
	return &rec, nil
}

func (a *fakeAPI) CheckIn(_ context.Context, req request.CheckInRequest) (*response.AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkIns = append(a.checkIns, req)
	if a.checkInErr != nil {
		err := a.checkInErr
		a.checkInErr = nil
		return nil, err
	}
	if a.open != nil {
		return nil, &client.APIError{Status: 409, Code: "SessionAlreadyOpen"}
	}
	a.open = &response.AttendanceRecord{ID: uuid.New(), CheckInTime: a.now(), Open: true, VerificationMethod: req.VerificationMethod}
	rec := *a.open
	return &rec, nil
}

func (a *fakeAPI) CheckOut(_ context.Context, req request.CheckOutRequest) (*response.AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkOuts = append(a.checkOuts, req)
	if a.checkOutErr != nil {
		err := a.checkOutErr
		a.checkOutErr = nil
		return nil, err
	}
	if a.open == nil || a.open.ID != req.RecordID {
		return nil, &client.APIError{Status: 404, Code: "NoActiveSession"}
	}
	now := a.now()
	rec := *a.open
	rec.CheckOutTime = &now
	rec.Notes = req.Notes
	rec.Open = false
	rec.WorkedSeconds = int64(now.Sub(rec.CheckInTime).Seconds())
	a.closed = append(a.closed, rec)
	a.open = nil
	return &rec, nil
}

var errGeoDenied = errors.New("permission denied")

func checkInAt(f Fix) request.CheckInRequest {
	return request.CheckInRequest{Latitude: f.Latitude, Longitude: f.Longitude, Accuracy: f.Accuracy, Address: f.Address, VerificationMethod: "biometric"}
}

func checkOutOf(id uuid.UUID) request.CheckOutRequest {
	return request.CheckOutRequest{RecordID: id, Latitude: office.Latitude, Longitude: office.Longitude}
}
