package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"attendance_ms/client"
	"attendance_ms/dtos/request"
	"attendance_ms/dtos/response"
	"attendance_ms/util"
)

// DefaultLocateTimeout bounds a single geolocation attempt.
const DefaultLocateTimeout = 10 * time.Second

var (
	ErrInvalidTransition   = errors.New("flow: invalid transition")
	ErrLocationUnavailable = errors.New("flow: location unavailable")
)

// Fix is one position report from the device.
type Fix struct {
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	Address    string
	CapturedAt time.Time
}

// LocateOptions mirror the browser geolocation options. MaximumAge zero means
// a cached fix is never accepted.
type LocateOptions struct {
	HighAccuracy bool
	MaximumAge   time.Duration
}

type Geolocator interface {
	Locate(ctx context.Context, opts LocateOptions) (Fix, error)
}

// Verifier is the identity gate before Confirming. *client.Orchestrator
// satisfies it.
type Verifier interface {
	Authenticate(ctx context.Context) client.Result
}

// AttendanceAPI is the slice of *client.API the flows commit through.
type AttendanceAPI interface {
	OpenSession(ctx context.Context) (*response.AttendanceRecord, error)
	CheckIn(ctx context.Context, req request.CheckInRequest) (*response.AttendanceRecord, error)
	CheckOut(ctx context.Context, req request.CheckOutRequest) (*response.AttendanceRecord, error)
}

func locate(ctx context.Context, geo Geolocator, timeout time.Duration) (Fix, error) {
	if timeout <= 0 {
		timeout = DefaultLocateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fix, err := geo.Locate(ctx, LocateOptions{HighAccuracy: true})
	if err != nil {
		return Fix{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	if !util.ValidCoordinates(fix.Latitude, fix.Longitude) || fix.Accuracy < 0 {
		return Fix{}, fmt.Errorf("%w: invalid coordinates %f,%f", ErrLocationUnavailable, fix.Latitude, fix.Longitude)
	}
	return fix, nil
}

func verify(ctx context.Context, v Verifier) error {
	res := v.Authenticate(ctx)
	if res.OK() {
		return nil
	}
	if res.Err == nil {
		return client.ErrAuthenticationFailed
	}
	return res.Err
}

type flowState interface {
	comparable
	fmt.Stringer
}

// machine serializes transitions. A call made while another is in flight
// fails with client.ErrBusy; a call from the wrong state fails with
// ErrInvalidTransition.
type machine[S flowState] struct {
	mu    sync.Mutex
	state S
	busy  bool
}

func (m *machine[S]) begin(from ...S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return client.ErrBusy
	}
	for _, s := range from {
		if m.state == s {
			m.busy = true
			return nil
		}
	}
	return fmtInvalid(m.state)
}

// end releases the machine in state next. apply, when set, runs under the
// same lock so readers never see captured data out of step with the state.
func (m *machine[S]) end(next S, apply func()) {
	m.mu.Lock()
	if apply != nil {
		apply()
	}
	m.state = next
	m.busy = false
	m.mu.Unlock()
}

func (m *machine[S]) current() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *machine[S]) read(fn func(S)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.state)
}

func fmtInvalid(s fmt.Stringer) error {
	return fmt.Errorf("%w: not allowed in %s", ErrInvalidTransition, s)
}
