package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

type State int

const (
	Idle State = iota
	RequestingOptions
	AwaitingPlatformResponse
	Verifying
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RequestingOptions:
		return "requesting_options"
	case AwaitingPlatformResponse:
		return "awaiting_platform_response"
	case Verifying:
		return "verifying"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of one ceremony. Message is ready to show the user.
type Result struct {
	State   State
	Err     error
	Message string
}

func (r Result) OK() bool {
	return r.State == Success
}

// CeremonyAPI is the server half of a ceremony. API implements it.
type CeremonyAPI interface {
	RegisterChallenge(ctx context.Context) (json.RawMessage, error)
	RegisterVerify(ctx context.Context, attestation []byte) error
	AuthenticateChallenge(ctx context.Context) (json.RawMessage, error)
	AuthenticateVerify(ctx context.Context, assertion []byte) error
}

// Orchestrator runs registration and authentication ceremonies one at a time.
// Nothing is retried; after Success or Failed the caller may start again.
type Orchestrator struct {
	api      CeremonyAPI
	platform Platform

	mu        sync.Mutex
	state     State
	busy      bool
	observers map[int]func(State)
	nextID    int
}

func NewOrchestrator(api CeremonyAPI, platform Platform) *Orchestrator {
	return &Orchestrator{api: api, platform: platform, observers: map[int]func(State){}}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy is true while a ceremony is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Subscribe reports every state transition to fn until the returned func is called.
func (o *Orchestrator) Subscribe(fn func(State)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.observers[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

func (o *Orchestrator) Register(ctx context.Context) Result {
	return o.run(ctx, o.api.RegisterChallenge, o.platform.Create, o.api.RegisterVerify)
}

func (o *Orchestrator) Authenticate(ctx context.Context) Result {
	return o.run(ctx, o.api.AuthenticateChallenge, o.platform.Get, o.api.AuthenticateVerify)
}

func (o *Orchestrator) run(
	ctx context.Context,
	options func(context.Context) (json.RawMessage, error),
	prompt func(context.Context, json.RawMessage) ([]byte, error),
	verify func(context.Context, []byte) error,
) Result {
	if !o.acquire() {
		return Result{State: o.State(), Err: ErrBusy, Message: Message(ErrBusy)}
	}
	defer o.release()

	o.transition(RequestingOptions)
	opts, err := options(ctx)
	if err != nil {
		return o.fail(err)
	}

	o.transition(AwaitingPlatformResponse)
	payload, err := prompt(ctx, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(ErrUserCancelled, err)
		}
		return o.fail(err)
	}

	o.transition(Verifying)
	if err := verify(ctx, payload); err != nil {
		return o.fail(err)
	}

	o.transition(Success)
	return Result{State: Success}
}

func (o *Orchestrator) fail(err error) Result {
	o.transition(Failed)
	return Result{State: Failed, Err: err, Message: Message(err)}
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return false
	}
	o.busy = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) transition(s State) {
	o.mu.Lock()
	o.state = s
	fns := make([]func(State), 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
